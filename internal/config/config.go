// Package config holds file/env configuration that is not derivable from the
// schema: upload locations and limits, the photo extension allow-list, and
// the legacy status spelling maps. Older databases carry free-text statuses
// in Portuguese; the alias maps translate them to the typed values once, at
// the read boundary.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tooltag/tooltag-backend/internal/types"
)

type Config struct {
	CatalogPhotoDir string `yaml:"catalog_photo_dir"`
	RequestPhotoDir string `yaml:"request_photo_dir"`
	MaxUploadBytes  int64  `yaml:"max_upload_bytes"`

	AllowedExtensions []string `yaml:"allowed_extensions"`

	// Alias maps: lowercased legacy spelling -> canonical status.
	RequestStatusAliases  map[string]string `yaml:"request_status_aliases"`
	IncidentStatusAliases map[string]string `yaml:"incident_status_aliases"`
}

func Default() *Config {
	return &Config{
		CatalogPhotoDir:   "photos_catalog",
		RequestPhotoDir:   "photos_requests",
		MaxUploadBytes:    16 << 20,
		AllowedExtensions: []string{"png", "jpg", "jpeg", "gif", "webp"},
		RequestStatusAliases: map[string]string{
			"pending":   string(types.RequestPending),
			"pendente":  string(types.RequestPending),
			"fulfilled": string(types.RequestFulfilled),
			"atendido":  string(types.RequestFulfilled),
			"atendida":  string(types.RequestFulfilled),
		},
		IncidentStatusAliases: map[string]string{
			"open":     string(types.IncidentOpen),
			"aberta":   string(types.IncidentOpen),
			"closed":   string(types.IncidentClosed),
			"fechada":  string(types.IncidentClosed),
			"atendida": string(types.IncidentClosed),
			"atendido": string(types.IncidentClosed),
		},
	}
}

// Load reads an optional YAML file over the defaults. An empty path returns
// the defaults unchanged; alias maps from the file are merged in, not
// swapped, so overriding one spelling keeps the built-ins.
func Load(path string) (*Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var file Config
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if file.CatalogPhotoDir != "" {
		cfg.CatalogPhotoDir = file.CatalogPhotoDir
	}
	if file.RequestPhotoDir != "" {
		cfg.RequestPhotoDir = file.RequestPhotoDir
	}
	if file.MaxUploadBytes > 0 {
		cfg.MaxUploadBytes = file.MaxUploadBytes
	}
	if len(file.AllowedExtensions) > 0 {
		cfg.AllowedExtensions = file.AllowedExtensions
	}
	for k, v := range file.RequestStatusAliases {
		cfg.RequestStatusAliases[strings.ToLower(k)] = v
	}
	for k, v := range file.IncidentStatusAliases {
		cfg.IncidentStatusAliases[strings.ToLower(k)] = v
	}
	return cfg, nil
}

// NormalizeRequestStatus maps free-text input to the canonical status.
func (c *Config) NormalizeRequestStatus(raw string) (types.RequestStatus, bool) {
	v, ok := c.RequestStatusAliases[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", false
	}
	return types.RequestStatus(v), true
}

func (c *Config) NormalizeIncidentStatus(raw string) (types.IncidentStatus, bool) {
	v, ok := c.IncidentStatusAliases[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", false
	}
	return types.IncidentStatus(v), true
}

// IncidentClosedSpellings lists every stored spelling that reads as closed,
// for use in queries against legacy rows.
func (c *Config) IncidentClosedSpellings() []string {
	var out []string
	for k, v := range c.IncidentStatusAliases {
		if types.IncidentStatus(v) == types.IncidentClosed {
			out = append(out, k)
		}
	}
	return out
}

// RequestFulfilledSpellings mirrors IncidentClosedSpellings for requests.
func (c *Config) RequestFulfilledSpellings() []string {
	var out []string
	for k, v := range c.RequestStatusAliases {
		if types.RequestStatus(v) == types.RequestFulfilled {
			out = append(out, k)
		}
	}
	return out
}

// RequestPendingSpellings lists every stored spelling that reads as pending.
func (c *Config) RequestPendingSpellings() []string {
	var out []string
	for k, v := range c.RequestStatusAliases {
		if types.RequestStatus(v) == types.RequestPending {
			out = append(out, k)
		}
	}
	return out
}
