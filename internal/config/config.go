// Package config handles configuration loading, validation and the session
// values used to reach a storage backend.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

type ProviderType string

const (
	GCS   ProviderType = "gcs"
	AWS   ProviderType = "aws"
	AZURE ProviderType = "azure"
	MINIO ProviderType = "minio"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "dasida.json"

// Config represents the application configuration: the journal location and
// the storage providers an operator can target.
type Config struct {
	JournalPath     string           `json:"journalPath,omitempty"`
	DefaultProvider string           `json:"defaultProvider"`
	Providers       []ProviderConfig `json:"providers"`
}

// ProviderConfig holds configuration for a specific storage provider.
type ProviderConfig struct {
	ID    string       `json:"id"`
	Type  ProviderType `json:"type"`
	GCS   *GCSConfig   `json:"gcs,omitempty"`
	AWS   *AWSConfig   `json:"aws,omitempty"`
	Azure *AzureConfig `json:"azure,omitempty"`
	MinIO *MinIOConfig `json:"minio,omitempty"`
}

// GCSConfig contains settings for Google Cloud Storage provider.
type GCSConfig struct {
	ProjectID string `json:"projectId"`
	Endpoint  string `json:"endpoint,omitempty"`
}

// AWSConfig contains settings for AWS S3 provider. Empty credentials use the
// SDK default chain for the named profile.
type AWSConfig struct {
	Profile         string `json:"profile,omitempty"`
	Region          string `json:"region,omitempty"`
	AccessKeyID     string `json:"accessKeyId,omitempty"`
	SecretAccessKey string `json:"secretAccessKey,omitempty"`
	SessionToken    string `json:"sessionToken,omitempty"`
	Endpoint        string `json:"endpoint,omitempty"`
	DisableSSL      bool   `json:"disableSSL,omitempty"`
}

// AzureConfig contains settings for Azure Blob Storage provider.
type AzureConfig struct {
	AccountName string `json:"accountName"`
	AccountKey  string `json:"accountKey"`
	EndpointURL string `json:"endpointUrl,omitempty"`
}

// MinIOConfig contains settings for MinIO (S3-compatible) provider.
type MinIOConfig struct {
	Endpoint  string `json:"endpoint"`
	AccessKey string `json:"accessKey"`
	SecretKey string `json:"secretKey"`
	UseSSL     bool   `json:"useSSL"`
	Region     string `json:"region,omitempty"`
	MaxRetries int    `json:"maxRetries,omitempty"`
}

// Session is an immutable description of how to reach one backend. It is
// passed by value; the nested configs are copies, never shared pointers.
type Session struct {
	ProviderID string
	Provider   ProviderType
	AWS        AWSConfig
	MinIO      MinIOConfig
	GCS        GCSConfig
	Azure      AzureConfig
}

// WithProfile returns a copy of s using the given AWS profile. An empty
// profile leaves s unchanged.
func (s Session) WithProfile(profile string) Session {
	if profile != "" {
		s.AWS.Profile = profile
	}
	return s
}

// DefaultSession targets S3 through the AWS default credential chain.
func DefaultSession() Session {
	return Session{ProviderID: string(AWS), Provider: AWS}
}

// Session returns the session for the provider with the given id, or for
// the default provider when id is empty.
func (c *Config) Session(id string) (Session, error) {
	if id == "" {
		id = c.DefaultProvider
	}

	for _, p := range c.Providers {
		if p.ID != id {
			continue
		}
		s := Session{ProviderID: p.ID, Provider: p.Type}
		switch {
		case p.AWS != nil:
			s.AWS = *p.AWS
		case p.MinIO != nil:
			s.MinIO = *p.MinIO
		case p.GCS != nil:
			s.GCS = *p.GCS
		case p.Azure != nil:
			s.Azure = *p.Azure
		}
		return s, nil
	}

	return Session{}, fmt.Errorf("provider not found: %s", id)
}

// LoadConfig reads a JSON configuration file from the provided path,
// fills default values, and validates the resulting Config.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultPath
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", absPath, err)
	}

	if config.DefaultProvider == "" && len(config.Providers) == 1 {
		config.DefaultProvider = config.Providers[0].ID
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadOptional behaves like LoadConfig but returns nil, nil when the file
// does not exist, so the CLI can run without one.
func LoadOptional(configPath string) (*Config, error) {
	cfg, err := LoadConfig(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return cfg, err
}

// validateConfig ensures that the given Config has at least one provider,
// unique provider IDs, and an existing default provider.
func validateConfig(config *Config) error {
	if len(config.Providers) == 0 {
		return fmt.Errorf("configuration must contain at least one provider")
	}

	idMap := make(map[string]bool)
	for _, provider := range config.Providers {
		if provider.ID == "" {
			return fmt.Errorf("provider of type %s has no id", provider.Type)
		}
		if idMap[provider.ID] {
			return fmt.Errorf("duplicate provider ID: %s", provider.ID)
		}
		idMap[provider.ID] = true

		switch provider.Type {
		case GCS:
			if provider.GCS == nil {
				return fmt.Errorf("GCS provider %s has no configuration", provider.ID)
			}
		case AWS:
			if provider.AWS == nil {
				return fmt.Errorf("AWS provider %s has no configuration", provider.ID)
			}
		case AZURE:
			if provider.Azure == nil {
				return fmt.Errorf("Azure provider %s has no configuration", provider.ID)
			}
		case MINIO:
			if provider.MinIO == nil {
				return fmt.Errorf("MinIO provider %s has no configuration", provider.ID)
			}
		default:
			return fmt.Errorf("unknown provider type: %s", provider.Type)
		}
	}

	if config.DefaultProvider == "" {
		return fmt.Errorf("configuration must name a default provider")
	}
	if !idMap[config.DefaultProvider] {
		return fmt.Errorf("default provider does not exist: %s", config.DefaultProvider)
	}

	return nil
}

// SaveDefaultConfig writes a default JSON configuration file to the given path.
func SaveDefaultConfig(configPath string) error {
	config := &Config{
		JournalPath:     "dasida.db",
		DefaultProvider: "aws",
		Providers: []ProviderConfig{
			{
				ID:   "aws",
				Type: AWS,
				AWS: &AWSConfig{
					Profile: "default",
					Region:  "us-east-1",
				},
			},
			{
				ID:   "minio",
				Type: MINIO,
				MinIO: &MinIOConfig{
					Endpoint:  "localhost:9000",
					AccessKey: "minioadmin",
					SecretKey: "minioadmin",
					UseSSL:    false,
				},
			},
			{
				ID:   "gcp",
				Type: GCS,
				GCS: &GCSConfig{
					ProjectID: "your-gcp-project",
				},
			},
			{
				ID:   "azure",
				Type: AZURE,
				Azure: &AzureConfig{
					AccountName: "your-azure-account",
					AccountKey:  "your-azure-key",
				},
			},
		},
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}
