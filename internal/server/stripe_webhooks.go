package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	syncdomain "github.com/smallbiznis/subsync/internal/sync/domain"
)

// HandleProviderWebhook ingests a billing provider's webhook delivery.
// Ignored event types and redeliveries are acknowledged with 200 so the
// provider stops retrying them.
func (s *Server) HandleProviderWebhook(c *gin.Context) {
	provider := strings.TrimSpace(c.Param("provider"))
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	err = s.dispatcher.Dispatch(c.Request.Context(), provider, payload)
	if err != nil {
		if errors.Is(err, syncdomain.ErrEventIgnored) || errors.Is(err, syncdomain.ErrEventAlreadyProcessed) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
