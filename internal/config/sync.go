package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// SyncConfig is the single place that names the provider events this
// service subscribes to. Events outside this list are acknowledged and
// ignored by the dispatcher.
type SyncConfig struct {
	Events []string `mapstructure:"events"`
}

// DefaultSyncConfig returns the canonical event subscription set.
func DefaultSyncConfig() SyncConfig {
	return SyncConfig{
		Events: []string{
			"product.created",
			"product.updated",
			"product.deleted",
			"price.created",
			"price.updated",
			"price.deleted",
			"customer.subscription.created",
			"customer.subscription.updated",
			"customer.subscription.deleted",
			"checkout.session.completed",
		},
	}
}

type SyncConfigHolder struct {
	current atomic.Value // holds SyncConfig
}

func NewSyncConfigHolder() (*SyncConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("sync")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/subsync/config") // Volume-mounted config
	v.AddConfigPath("/etc/subsync")            // System config
	v.AddConfigPath(".")                       // Current directory (dev mode)

	v.SetEnvPrefix("SUBSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		v.SetDefault("sync.events", DefaultSyncConfig().Events)
	}

	var cfg SyncConfig
	if err := v.UnmarshalKey("sync", &cfg); err != nil {
		return nil, err
	}
	if err := validateSyncConfig(cfg); err != nil {
		return nil, err
	}

	holder := &SyncConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated SyncConfig
		if err := v.UnmarshalKey("sync", &updated); err != nil {
			log.Printf("[sync-config] reload failed: %v", err)
			return
		}
		if err := validateSyncConfig(updated); err != nil {
			log.Printf("[sync-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[sync-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticSyncConfigHolder wraps a fixed config without file watching.
func NewStaticSyncConfigHolder(cfg SyncConfig) *SyncConfigHolder {
	holder := &SyncConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *SyncConfigHolder) Get() SyncConfig {
	return h.current.Load().(SyncConfig)
}

// Subscribed reports whether the given provider event name is enabled.
func (h *SyncConfigHolder) Subscribed(event string) bool {
	event = strings.TrimSpace(event)
	for _, name := range h.Get().Events {
		if strings.EqualFold(strings.TrimSpace(name), event) {
			return true
		}
	}
	return false
}

func validateSyncConfig(cfg SyncConfig) error {
	if len(cfg.Events) == 0 {
		return errors.New("sync.events cannot be empty")
	}
	return nil
}
