package config_test

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"html2swim/internal/config"
)

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

func TestLoadConfig(t *testing.T) {
	data := []byte(`{
  "inputs": ["templates/..."],
  "parser": "html",
  "tidy": true,
  "erb": false,
  "indent": 2,
  "output_dir": "Sources/Views",
  "selector": "main",
  "exclude_selector": ".ads",
  "mode": "dynamic",
  "timeout_seconds": 42,
  "user_agent": "test-agent",
  "wait_for": "main",
  "headless": true,
  "rate_limit_per_second": 2.5
}`)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	expected := config.Config{
		Inputs:             []string{"templates/..."},
		Parser:             "html",
		Tidy:               boolPtr(true),
		ERB:                boolPtr(false),
		Indent:             intPtr(2),
		OutputDir:          "Sources/Views",
		Selector:           "main",
		ExcludeSelector:    ".ads",
		Mode:               "dynamic",
		TimeoutSeconds:     42,
		UserAgent:          "test-agent",
		WaitForSelector:    "main",
		Headless:           boolPtr(true),
		RateLimitPerSecond: 2.5,
	}

	if !reflect.DeepEqual(cfg, expected) {
		t.Fatalf("config mismatch\nexpected: %#v\ngot:      %#v", expected, cfg)
	}
}

func TestLoadConfig_YAML(t *testing.T) {
	data := []byte(`url: https://example.com/page
parser: html
mode: static
auth_cookies:
  session: abc
`)
	path := filepath.Join(t.TempDir(), "site.yaml")
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.URL != "https://example.com/page" || cfg.Parser != "html" || cfg.Mode != "static" {
		t.Fatalf("unexpected config: %#v", cfg)
	}
	if cfg.AuthCookies["session"] != "abc" {
		t.Fatalf("expected cookies, got %#v", cfg.AuthCookies)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "parser", body: `{"parser": "sgml"}`, want: "parser must be one of"},
		{name: "mode", body: `{"mode": "browser"}`, want: "mode must be one of"},
		{name: "timeout", body: `{"timeout_seconds": -1}`, want: "timeout_seconds must be at least 0"},
		{name: "url", body: `{"url": "not a url"}`, want: "url must be a valid url"},
		{name: "syntax", body: `{"parser": `, want: "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.json")
			if err := os.WriteFile(path, []byte(tt.body), 0600); err != nil {
				t.Fatalf("write temp config: %v", err)
			}
			_, err := config.Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestSaveRoundTripFormats(t *testing.T) {
	cfg := config.Config{Parser: "xml", OutputDir: "out", ERB: boolPtr(true)}
	for _, name := range []string{"a.json", "b.yml"} {
		path := filepath.Join(t.TempDir(), "nested", name)
		if err := config.Save(path, cfg); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
		got, err := config.Load(path)
		if err != nil {
			t.Fatalf("load %s: %v", name, err)
		}
		if !reflect.DeepEqual(got, cfg) {
			t.Fatalf("%s: expected %#v, got %#v", name, cfg, got)
		}
	}
}

func TestListConfigs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.json", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0600); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.json"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	got, err := config.ListConfigs(dir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{filepath.Join(dir, "a.json"), filepath.Join(dir, "b.yaml")}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
