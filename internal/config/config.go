// Package config loads html2swim run settings from JSON or YAML files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Inputs          []string `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	URL             string   `json:"url,omitempty" yaml:"url,omitempty" validate:"omitempty,url"`
	Parser          string   `json:"parser,omitempty" yaml:"parser,omitempty" validate:"omitempty,oneof=xml html"`
	Tidy            *bool    `json:"tidy,omitempty" yaml:"tidy,omitempty"`
	ERB             *bool    `json:"erb,omitempty" yaml:"erb,omitempty"`
	Indent          *int     `json:"indent,omitempty" yaml:"indent,omitempty" validate:"omitempty,min=0,max=16"`
	OutputDir       string   `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	Selector        string   `json:"selector,omitempty" yaml:"selector,omitempty"`
	ExcludeSelector string   `json:"exclude_selector,omitempty" yaml:"exclude_selector,omitempty"`
	Report          bool     `json:"report,omitempty" yaml:"report,omitempty"`

	Mode               string            `json:"mode,omitempty" yaml:"mode,omitempty" validate:"omitempty,oneof=auto static dynamic"`
	TimeoutSeconds     int               `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty" validate:"min=0"`
	UserAgent          string            `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	WaitForSelector    string            `json:"wait_for,omitempty" yaml:"wait_for,omitempty"`
	Headless           *bool             `json:"headless,omitempty" yaml:"headless,omitempty"`
	RateLimitPerSecond float64           `json:"rate_limit_per_second,omitempty" yaml:"rate_limit_per_second,omitempty" validate:"min=0"`
	ProxyURL           string            `json:"proxy_url,omitempty" yaml:"proxy_url,omitempty" validate:"omitempty,url"`
	AuthHeaders        map[string]string `json:"auth_headers,omitempty" yaml:"auth_headers,omitempty"`
	AuthCookies        map[string]string `json:"auth_cookies,omitempty" yaml:"auth_cookies,omitempty"`
	Cache              bool              `json:"cache,omitempty" yaml:"cache,omitempty"`
	CacheDir           string            `json:"cache_dir,omitempty" yaml:"cache_dir,omitempty"`

	Crawl       bool   `json:"crawl,omitempty" yaml:"crawl,omitempty"`
	Resume      bool   `json:"resume,omitempty" yaml:"resume,omitempty"`
	SitemapURL  string `json:"sitemap_url,omitempty" yaml:"sitemap_url,omitempty" validate:"omitempty,url"`
	MaxPages    int    `json:"max_pages,omitempty" yaml:"max_pages,omitempty" validate:"min=0"`
	CrawlDepth  int    `json:"crawl_depth,omitempty" yaml:"crawl_depth,omitempty" validate:"min=0"`
	CrawlFilter string `json:"crawl_filter,omitempty" yaml:"crawl_filter,omitempty"`

	PipelineHooks []string `json:"pipeline_hooks,omitempty" yaml:"pipeline_hooks,omitempty"`
	PostCommands  []string `json:"post_commands,omitempty" yaml:"post_commands,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Load reads the config at path. Files ending in .yaml or .yml are decoded
// as YAML, everything else as JSON. The result is validated.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if isYAML(path) {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field values and reports every invalid field in one
// error.
func Validate(cfg Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		switch e.Tag() {
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got %q", e.Field(), e.Param(), e.Value()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", e.Field(), e.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", e.Field(), e.Param()))
		case "url":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid url", e.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", e.Field()))
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func Marshal(cfg Config) ([]byte, error) {
	return json.MarshalIndent(cfg, "", "  ")
}

// MarshalFor encodes cfg in the format implied by path's extension.
func MarshalFor(path string, cfg Config) ([]byte, error) {
	if isYAML(path) {
		return yaml.Marshal(cfg)
	}
	return Marshal(cfg)
}

// Save writes cfg to path, creating parent directories.
func Save(path string, cfg Config) error {
	data, err := MarshalFor(path, cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0600)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
