package config

import (
	"fmt"
	"time"
)

type TokenConfig struct {
	Secret string        `koanf:"secret"`
	Issuer string        `koanf:"issuer"`
	TTL    time.Duration `koanf:"ttl"`
}

func (c *TokenConfig) Validate() error {
	if c.Secret == "" {
		return fmt.Errorf("token secret is not configured")
	}
	if len(c.Secret) < 32 {
		return fmt.Errorf("token secret must be at least 32 bytes, got %d", len(c.Secret))
	}
	if c.Issuer == "" {
		return fmt.Errorf("token issuer is not configured")
	}
	if c.TTL <= 0 {
		return fmt.Errorf("token TTL must be greater than zero")
	}
	return nil
}
