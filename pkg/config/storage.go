package config

import "fmt"

type StorageConfig struct {
	Bucket        string `koanf:"bucket"`
	Region        string `koanf:"region"`
	Endpoint      string `koanf:"endpoint"`
	PublicBaseURL string `koanf:"publicBaseUrl"`
}

func (c *StorageConfig) Validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("storage bucket is not configured")
	}
	if c.Region == "" && c.Endpoint == "" {
		return fmt.Errorf("storage region or endpoint must be configured")
	}
	return nil
}
