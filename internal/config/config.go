// Package config loads service configuration from the environment, with an
// optional .secret dotenv file for gateway credentials.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything the service and CLI need.
type Config struct {
	Gateway  GatewayConfig
	Projects ProjectsConfig
	Scratch  ScratchConfig
	Storage  StorageConfig
	MinIO    MinIOConfig
	HTTP     HTTPConfig
	Catalog  CatalogConfig
}

// GatewayConfig holds the WebGW endpoint, credentials and per-call-kind
// HTTP timeouts.
type GatewayConfig struct {
	URL    string
	APIKey string
	AppID  string

	SubmitTimeout   time.Duration
	PollTimeout     time.Duration
	DownloadTimeout time.Duration
}

// ProjectsConfig maps task kinds to gateway-side model deployments.
type ProjectsConfig struct {
	Default  string
	Instruct string
	Legacy   string
}

// ScratchConfig controls the local scratch directory for downloaded
// artifacts.
type ScratchConfig struct {
	Dir      string
	MaxFiles int
}

// StorageConfig selects the persistent result store backend.
// Supported values: "local" (default), "minio".
type StorageConfig struct {
	Backend string
	// LocalDir is the output directory of the "local" backend.
	LocalDir string
}

// MinIOConfig holds MinIO configuration for the "minio" backend.
type MinIOConfig struct {
	Endpoint       string
	PublicEndpoint string
	AccessKey      string
	SecretKey      string
	UseSSL         bool
	Bucket         string
}

// HTTPConfig holds the API server settings.
type HTTPConfig struct {
	Addr string
}

// CatalogConfig points at the optional side-loaded voice list.
type CatalogConfig struct {
	VoiceListPath string
}

// Option customizes the Loader behaviour.
type Option func(*loader)

type loader struct {
	v          *viper.Viper
	defaults   map[string]interface{}
	validators []func(*Config) error
	postLoad   []func(*Config)
}

// NewLoader creates a loader with the service defaults and optional
// overrides. Credentials in a .secret file next to the binary are loaded
// into the environment first, matching how the demo deployments ship their
// keys.
func NewLoader(opts ...Option) *loader {
	_ = godotenv.Load(".secret")

	defaults := map[string]interface{}{
		"WEBGW_URL":                "",
		"WEBGW_API_KEY":            "",
		"WEBGW_APP_ID":             "",
		"WEBGW_SUBMIT_TIMEOUT_SEC": 30,
		"WEBGW_POLL_TIMEOUT_SEC":   30,
		"WEBGW_DOWNLOAD_TIMEOUT_SEC": 60,

		"API_PROJECT_DEFAULT":  "260203-ming-uniaudio-v4-moe-lite",
		"API_PROJECT_INSTRUCT": "260113-ming-uniaudio-instruct",
		"API_PROJECT_LEGACY":   "251220-ming-uniaudio",

		"SCRATCH_DIR":       "temp_audio",
		"SCRATCH_MAX_FILES": 10,

		"STORAGE_BACKEND":  "local",
		"OUTPUT_DIR":       "output",
		"MINIO_ENDPOINT":   "localhost:9000",
		"MINIO_PUBLIC_ENDPOINT": "",
		"MINIO_ACCESS_KEY": "minioadmin",
		"MINIO_SECRET_KEY": "minioadmin123",
		"MINIO_USE_SSL":    false,
		"MINIO_BUCKET":     "uniaudio",

		"HTTP_ADDR": ":8080",

		"VOICE_LIST_PATH": "uniaudio_ip_list.txt",
	}

	l := &loader{
		v:          viper.New(),
		defaults:   defaults,
		validators: []func(*Config) error{validate},
	}

	l.v.SetEnvPrefix("")
	l.v.AutomaticEnv()

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// WithDefaults overrides or adds default values before loading.
func WithDefaults(overrides map[string]interface{}) Option {
	return func(l *loader) {
		for k, v := range overrides {
			l.defaults[k] = v
		}
	}
}

// WithValidator adds a custom validator to the loader.
func WithValidator(validator func(*Config) error) Option {
	return func(l *loader) {
		l.validators = append(l.validators, validator)
	}
}

// WithPostLoad appends a hook executed after the configuration is loaded.
func WithPostLoad(hook func(*Config)) Option {
	return func(l *loader) {
		l.postLoad = append(l.postLoad, hook)
	}
}

// WithMinIOPublicFallback sets PublicEndpoint to Endpoint when left empty.
func WithMinIOPublicFallback() Option {
	return WithPostLoad(func(cfg *Config) {
		if cfg.MinIO.PublicEndpoint == "" {
			cfg.MinIO.PublicEndpoint = cfg.MinIO.Endpoint
		}
	})
}

// Load reads configuration values, applies defaults, post-load hooks, and
// validators.
func (l *loader) Load() (*Config, error) {
	for k, v := range l.defaults {
		l.v.SetDefault(k, v)
	}

	cfg := &Config{
		Gateway: GatewayConfig{
			URL:             l.v.GetString("WEBGW_URL"),
			APIKey:          l.v.GetString("WEBGW_API_KEY"),
			AppID:           l.v.GetString("WEBGW_APP_ID"),
			SubmitTimeout:   time.Duration(l.v.GetInt("WEBGW_SUBMIT_TIMEOUT_SEC")) * time.Second,
			PollTimeout:     time.Duration(l.v.GetInt("WEBGW_POLL_TIMEOUT_SEC")) * time.Second,
			DownloadTimeout: time.Duration(l.v.GetInt("WEBGW_DOWNLOAD_TIMEOUT_SEC")) * time.Second,
		},
		Projects: ProjectsConfig{
			Default:  l.v.GetString("API_PROJECT_DEFAULT"),
			Instruct: l.v.GetString("API_PROJECT_INSTRUCT"),
			Legacy:   l.v.GetString("API_PROJECT_LEGACY"),
		},
		Scratch: ScratchConfig{
			Dir:      l.v.GetString("SCRATCH_DIR"),
			MaxFiles: l.v.GetInt("SCRATCH_MAX_FILES"),
		},
		Storage: StorageConfig{
			Backend:  l.v.GetString("STORAGE_BACKEND"),
			LocalDir: l.v.GetString("OUTPUT_DIR"),
		},
		MinIO: MinIOConfig{
			Endpoint:       l.v.GetString("MINIO_ENDPOINT"),
			PublicEndpoint: l.v.GetString("MINIO_PUBLIC_ENDPOINT"),
			AccessKey:      l.v.GetString("MINIO_ACCESS_KEY"),
			SecretKey:      l.v.GetString("MINIO_SECRET_KEY"),
			UseSSL:         l.v.GetBool("MINIO_USE_SSL"),
			Bucket:         l.v.GetString("MINIO_BUCKET"),
		},
		HTTP: HTTPConfig{
			Addr: l.v.GetString("HTTP_ADDR"),
		},
		Catalog: CatalogConfig{
			VoiceListPath: l.v.GetString("VOICE_LIST_PATH"),
		},
	}

	for _, hook := range l.postLoad {
		hook(cfg)
	}

	for _, validator := range l.validators {
		if err := validator(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Gateway.URL == "" {
		return fmt.Errorf("WEBGW_URL is required")
	}
	if cfg.Gateway.APIKey == "" {
		return fmt.Errorf("WEBGW_API_KEY is required")
	}
	if cfg.Gateway.AppID == "" {
		return fmt.Errorf("WEBGW_APP_ID is required")
	}
	switch cfg.Storage.Backend {
	case "local":
		if cfg.Storage.LocalDir == "" {
			return fmt.Errorf("OUTPUT_DIR is required")
		}
	case "minio":
		if cfg.MinIO.Endpoint == "" {
			return fmt.Errorf("MINIO_ENDPOINT is required")
		}
		if cfg.MinIO.AccessKey == "" {
			return fmt.Errorf("MINIO_ACCESS_KEY is required")
		}
		if cfg.MinIO.SecretKey == "" {
			return fmt.Errorf("MINIO_SECRET_KEY is required")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND: %s", cfg.Storage.Backend)
	}
	return nil
}
