package queue

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	// QueueKey is the Viper subkey under which queue configuration should
	// be stored.  FromViper *does not* assume this key.
	QueueKey = "queue"
)

// Config holds the externally configurable settings of a queue.
type Config struct {
	// Mode is the ordering class: "in-order" (the default) or "out-of-order".
	Mode string `json:"mode"`

	// Depth bounds the number of in-flight commands.  Nonpositive values
	// select DefaultDepth.
	Depth int `json:"depth"`

	// Period rate-limits dispatch.  Accepts time.ParseDuration strings.
	Period time.Duration `json:"period"`
}

// Sub returns the standard child Viper, using QueueKey, for this package.
// If passed nil, this function returns nil.
func Sub(v *viper.Viper) *viper.Viper {
	if v != nil {
		return v.Sub(QueueKey)
	}

	return nil
}

// FromViper produces a Config from a (possibly nil) Viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	c := new(Config)
	if v != nil {
		err := v.Unmarshal(c, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		)))

		if err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Options translates this configuration into queue options.  An
// unrecognized mode string is an error rather than a silent default.
func (c *Config) Options() ([]Option, error) {
	var options []Option

	switch strings.ToLower(c.Mode) {
	case "", "in-order":
		options = append(options, WithMode(InOrder))

	case "out-of-order":
		options = append(options, WithMode(OutOfOrder))

	default:
		return nil, fmt.Errorf("unrecognized queue mode: %s", c.Mode)
	}

	if c.Depth > 0 {
		options = append(options, WithDepth(c.Depth))
	}

	if c.Period > 0 {
		options = append(options, WithPeriod(c.Period))
	}

	return options, nil
}
