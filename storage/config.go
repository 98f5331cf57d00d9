package storage

import (
	"fmt"

	"github.com/kbukum/voxnote/validation"
)

// Backends known to New. Each registers itself from its package init.
const (
	ProviderLocal = "local"
	ProviderS3    = "s3"
)

const (
	DefaultProvider = ProviderLocal
	DefaultBasePath = "~/.voxnote"
	DefaultRegion   = "us-east-1"
)

// Config selects and configures a backend. Only the fields of the selected
// provider are read.
type Config struct {
	Provider string `mapstructure:"provider" json:"provider" validate:"omitempty,oneof=local s3"`

	// BasePath is the local root. A leading "~" expands to the home directory.
	BasePath string `mapstructure:"base_path" json:"base_path" validate:"required_if=Provider local"`

	Bucket string `mapstructure:"bucket" json:"bucket" validate:"required_if=Provider s3"`
	// Prefix is prepended to every key in the bucket.
	Prefix string `mapstructure:"prefix" json:"prefix"`
	Region string `mapstructure:"region" json:"region" validate:"required_if=Provider s3"`
	// Endpoint points at an S3-compatible service such as MinIO.
	Endpoint       string `mapstructure:"endpoint" json:"endpoint" validate:"omitempty,url"`
	AccessKey      string `mapstructure:"access_key" json:"access_key"`
	SecretKey      string `mapstructure:"secret_key" json:"-"`
	ForcePathStyle bool   `mapstructure:"force_path_style" json:"force_path_style"`
}

// ApplyDefaults picks the local backend under ~/.voxnote unless told
// otherwise.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	switch c.Provider {
	case ProviderLocal:
		if c.BasePath == "" {
			c.BasePath = DefaultBasePath
		}
	case ProviderS3:
		if c.Region == "" {
			c.Region = DefaultRegion
		}
	}
}

// Validate checks the fields the selected provider needs.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("storage: provider is required")
	}
	if err := validation.Validate(c); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	return nil
}
