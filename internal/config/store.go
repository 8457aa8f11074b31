package config

import (
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// StoreSettings are the merchant-facing knobs an operator tunes without a
// redeploy: currency, WhatsApp contact and checkout redirect URLs.
type StoreSettings struct {
	StoreName       string `mapstructure:"storeName"`
	Currency        string `mapstructure:"currency"`
	WhatsAppNumber  string `mapstructure:"whatsappNumber"`
	WhatsAppGreet   string `mapstructure:"whatsappGreeting"`
	CheckoutSuccess string `mapstructure:"checkoutSuccessUrl"`
	CheckoutFailure string `mapstructure:"checkoutFailureUrl"`
	CheckoutPending string `mapstructure:"checkoutPendingUrl"`
}

func DefaultStoreSettings() StoreSettings {
	return StoreSettings{
		StoreName:     "Tienda de Recuerdos",
		Currency:      "ARS",
		WhatsAppGreet: "Hola! Quiero hacer un pedido:",
	}
}

// StoreSettingsHolder keeps the current settings and hot-reloads them when
// the config file changes on disk.
type StoreSettingsHolder struct {
	current atomic.Value // holds StoreSettings
}

func NewStoreSettingsHolder(log *zap.Logger) (*StoreSettingsHolder, error) {
	v := viper.New()

	v.SetConfigName("store")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/tienda")
	v.AddConfigPath(".")

	v.SetEnvPrefix("TIENDA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	holder := &StoreSettingsHolder{}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		holder.current.Store(DefaultStoreSettings())
		return holder, nil
	}

	settings, err := unmarshalStoreSettings(v)
	if err != nil {
		return nil, err
	}
	holder.current.Store(settings)

	v.OnConfigChange(func(_ fsnotify.Event) {
		reloaded, err := unmarshalStoreSettings(v)
		if err != nil {
			log.Warn("store settings reload failed, keeping previous", zap.Error(err))
			return
		}
		holder.current.Store(reloaded)
		log.Info("store settings reloaded")
	})
	v.WatchConfig()

	return holder, nil
}

// NewStaticStoreSettingsHolder pins the settings, without file watching.
func NewStaticStoreSettingsHolder(settings StoreSettings) *StoreSettingsHolder {
	holder := &StoreSettingsHolder{}
	holder.current.Store(settings)
	return holder
}

// Current returns the settings snapshot in effect.
func (h *StoreSettingsHolder) Current() StoreSettings {
	if h == nil {
		return DefaultStoreSettings()
	}
	if v, ok := h.current.Load().(StoreSettings); ok {
		return v
	}
	return DefaultStoreSettings()
}

func unmarshalStoreSettings(v *viper.Viper) (StoreSettings, error) {
	settings := DefaultStoreSettings()
	if err := v.UnmarshalKey("store", &settings); err != nil {
		return StoreSettings{}, err
	}
	if strings.TrimSpace(settings.Currency) == "" {
		settings.Currency = "ARS"
	}
	settings.Currency = strings.ToUpper(strings.TrimSpace(settings.Currency))
	return settings, nil
}
