package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/subsync/internal/stripe"
)

type createCheckoutSessionRequest struct {
	UserID          string            `json:"user_id"`
	Email           string            `json:"email"`
	PriceID         string            `json:"price_id"`
	Quantity        int64             `json:"quantity"`
	SuccessURL      string            `json:"success_url"`
	CancelURL       string            `json:"cancel_url"`
	TrialPeriodDays int64             `json:"trial_period_days"`
	Metadata        map[string]string `json:"metadata"`
}

type checkoutSessionResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// CreateCheckoutSession resolves the caller's provider customer and
// opens a hosted checkout for the requested price.
func (s *Server) CreateCheckoutSession(c *gin.Context) {
	var req createCheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if strings.TrimSpace(req.UserID) == "" {
		AbortWithError(c, newValidationError("user_id", "invalid_user_id", "user_id is required"))
		return
	}
	if strings.TrimSpace(req.PriceID) == "" {
		AbortWithError(c, newValidationError("price_id", "invalid_price_id", "price_id is required"))
		return
	}
	if strings.TrimSpace(req.SuccessURL) == "" || strings.TrimSpace(req.CancelURL) == "" {
		AbortWithError(c, newValidationError("success_url", "invalid_redirect_url", "success_url and cancel_url are required"))
		return
	}

	customerID, err := s.customerSvc.CreateOrRetrieve(c.Request.Context(), req.Email, req.UserID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	session, err := s.stripe.CreateCheckoutSession(c.Request.Context(), stripe.CreateCheckoutSessionParams{
		CustomerID:      customerID,
		PriceID:         req.PriceID,
		Quantity:        req.Quantity,
		SuccessURL:      req.SuccessURL,
		CancelURL:       req.CancelURL,
		TrialPeriodDays: req.TrialPeriodDays,
		Metadata:        req.Metadata,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, checkoutSessionResponse{
		SessionID: session.ID,
		URL:       session.URL,
	})
}
