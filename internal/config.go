package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Catalog CatalogConfig     `yaml:"catalog"`
	Sources SourcesConfig     `yaml:"sources"`
	Merge   MergeConfig       `yaml:"merge"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Catalog.Validate(); err != nil {
		return err
	}
	if err := c.Merge.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// CatalogConfig holds catalog storage configuration.
type CatalogConfig struct {
	// DataDir is where the generated catalog document lives.
	DataDir string `yaml:"data_dir"`
	// SQLitePath is the catalog database file.
	SQLitePath string `yaml:"sqlite_path"`
	// OutputFile is the catalog document name, relative to DataDir.
	OutputFile string `yaml:"output_file"`
}

// Validate validates the catalog configuration.
func (c *CatalogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DataDir, validation.Required),
		validation.Field(&c.SQLitePath, validation.Required),
		validation.Field(&c.OutputFile, validation.Required),
	)
}

// SourcesConfig lists the template sources to merge, in order. The
// first source acts as the base collection.
type SourcesConfig struct {
	URLs  []string `yaml:"urls"`
	Files []string `yaml:"files"`
}

// All returns URLs followed by file paths, preserving merge order.
func (c *SourcesConfig) All() []string {
	out := make([]string, 0, len(c.URLs)+len(c.Files))
	out = append(out, c.URLs...)
	out = append(out, c.Files...)
	return out
}

// MergeConfig holds merge pipeline tuning.
type MergeConfig struct {
	// SimilarityThreshold is the minimum weighted similarity for two
	// templates to count as duplicates. Zero means the default (0.70).
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	// RequestTimeoutSeconds bounds each source fetch. Zero means the
	// default (30).
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`
}

// Validate validates the merge configuration.
func (c *MergeConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SimilarityThreshold, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&c.RequestTimeoutSeconds, validation.Min(0)),
	)
}

// Timeout returns the request timeout as a duration.
func (c *MergeConfig) Timeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Threshold returns the similarity threshold, falling back to the
// default when unset.
func (c *MergeConfig) Threshold() float64 {
	if c.SimilarityThreshold <= 0 {
		return 0.70
	}
	return c.SimilarityThreshold
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Catalog: CatalogConfig{
			DataDir:    "./data",
			SQLitePath: "./catena.db",
			OutputFile: "catalog.json",
		},
		Merge: MergeConfig{
			SimilarityThreshold:   0.70,
			RequestTimeoutSeconds: 30,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
