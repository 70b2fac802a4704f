// Package settings persists operator settings for the livestream service.
//
// The only setting today is the Mux webhook signing secret. It is stored in a
// YAML file and sanitized on every write, so values pasted from a dashboard
// with stray whitespace or markup still verify.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"gopkg.in/yaml.v3"
)

// Settings is the persisted settings object.
type Settings struct {
	WebhookSecret string `yaml:"webhook_secret"`
}

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Sanitize normalizes a single-line text value: markup is removed, control
// characters dropped, runs of whitespace collapsed to one space, and the
// result trimmed.
func Sanitize(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Sanitized returns a copy of s with every field sanitized.
func (s Settings) Sanitized() Settings {
	return Settings{WebhookSecret: Sanitize(s.WebhookSecret)}
}

// Load reads settings from path. A missing file yields zero Settings and no error.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Settings{}, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("read settings %q: %w", path, err)
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse settings %q: %w", path, err)
	}
	return s.Sanitized(), nil
}

// Save sanitizes s and writes it to path with owner-only permissions.
func Save(path string, s Settings) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings directory: %w", err)
		}
	}
	data, err := yaml.Marshal(s.Sanitized())
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}

// Source serves the webhook secret to the verifier. An override, typically
// from the environment, wins over the file value.
type Source struct {
	mu       sync.RWMutex
	path     string
	override string
	current  Settings
}

// NewSource loads path and returns a Source over it.
func NewSource(path, override string) (*Source, error) {
	s := &Source{path: path, override: Sanitize(override)}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the settings file.
func (s *Source) Reload() error {
	if s.path == "" {
		return nil
	}
	loaded, err := Load(s.path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.current = loaded
	s.mu.Unlock()
	return nil
}

// WebhookSecret returns the effective secret.
func (s *Source) WebhookSecret() string {
	if s.override != "" {
		return s.override
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.WebhookSecret
}

// FromOverride reports whether the effective secret comes from the override.
func (s *Source) FromOverride() bool { return s.override != "" }
