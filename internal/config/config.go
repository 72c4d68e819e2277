package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath overrides the default config file location.
const EnvConfigPath = "BARDO_CONFIG"

const defaultConfigPath = "config.yaml"

type Config struct {
	Confluence ConfluenceConfig `yaml:"confluence"`
	Client     ClientConfig     `yaml:"client,omitempty"`
	Local      LocalConfig      `yaml:"local,omitempty"`
	Images     ImagesConfig     `yaml:"images,omitempty"`
}

type ConfluenceConfig struct {
	BaseURL    string `yaml:"base_url" validate:"required,http_url"`
	Username   string `yaml:"username" validate:"required"`
	APIToken   string `yaml:"api_token" validate:"required"`
	SpaceKey   string `yaml:"space_key,omitempty"`
	ParentPage string `yaml:"parent_page,omitempty"`
}

// ClientConfig tunes the HTTP side of the Confluence client. Zero values
// leave the client defaults in place.
type ClientConfig struct {
	Timeout   time.Duration   `yaml:"timeout,omitempty" validate:"gte=0"`
	UserAgent string          `yaml:"user_agent,omitempty"`
	RateLimit RateLimitConfig `yaml:"rate_limit,omitempty"`
}

type RateLimitConfig struct {
	RPS   int `yaml:"rps,omitempty" validate:"gte=0"`
	Burst int `yaml:"burst,omitempty" validate:"required_with=RPS,gte=0"`
}

type LocalConfig struct {
	MarkdownDir string   `yaml:"markdown_dir,omitempty"`
	Exclude     []string `yaml:"exclude,omitempty"`
}

type ImagesConfig struct {
	SupportedFormats []string `yaml:"supported_formats,omitempty" validate:"dive,required"`
	MaxFileSize      int64    `yaml:"max_file_size,omitempty" validate:"gte=0"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ResolveConfigPath returns path with a leading "~/" expanded. An empty path
// falls back to $BARDO_CONFIG, then config.yaml.
func ResolveConfigPath(path string) string {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		path = defaultConfigPath
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, rest)
		}
	}
	return path
}

func read(path string) (*Config, error) {
	data, err := os.ReadFile(ResolveConfigPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &config, nil
}

// Load reads and validates a config that must name a space.
func Load(path string) (*Config, error) {
	config, err := read(path)
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if config.Confluence.SpaceKey == "" {
		return nil, fmt.Errorf("invalid config: confluence.space_key is required")
	}

	return config, nil
}

// LoadForListPages loads config with relaxed validation (space_key not required)
func LoadForListPages(path string) (*Config, error) {
	config, err := read(path)
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// Validate checks every field constraint. The first failure is reported
// by its YAML path, e.g. "confluence.base_url is required".
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	return errors.New(describe(verrs[0]))
}

func describe(fe validator.FieldError) string {
	// Namespace is "Config.confluence.base_url".
	_, field, _ := strings.Cut(fe.Namespace(), ".")

	switch fe.Tag() {
	case "required", "required_with":
		return field + " is required"
	case "http_url":
		return field + " must be an http(s) URL"
	case "gte":
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// Save writes c as YAML to path, creating its directory. The file holds an
// API token and is written with owner-only permissions.
func Save(path string, c *Config) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}

	path = ResolveConfigPath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
