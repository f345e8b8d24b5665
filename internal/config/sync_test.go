package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSyncConfig(t *testing.T) {
	cfg := DefaultSyncConfig()
	assert.NoError(t, validateSyncConfig(cfg))
	assert.Len(t, cfg.Events, 10)
	assert.Contains(t, cfg.Events, "checkout.session.completed")
}

func TestSubscribed(t *testing.T) {
	holder := NewStaticSyncConfigHolder(DefaultSyncConfig())

	assert.True(t, holder.Subscribed("product.created"))
	assert.True(t, holder.Subscribed("  customer.subscription.deleted "))
	assert.True(t, holder.Subscribed("Price.Updated"))
	assert.False(t, holder.Subscribed("invoice.paid"))
	assert.False(t, holder.Subscribed(""))
}

func TestValidateSyncConfig(t *testing.T) {
	assert.Error(t, validateSyncConfig(SyncConfig{}))
	assert.NoError(t, validateSyncConfig(SyncConfig{Events: []string{"product.created"}}))
}
