package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tooltag/tooltag-backend/internal/types"
)

func TestNormalizeRequestStatus(t *testing.T) {
	cfg := Default()

	cases := []struct {
		raw  string
		want types.RequestStatus
		ok   bool
	}{
		{"pending", types.RequestPending, true},
		{"Pendente", types.RequestPending, true},
		{"ATENDIDO", types.RequestFulfilled, true},
		{" atendida ", types.RequestFulfilled, true},
		{"fulfilled", types.RequestFulfilled, true},
		{"sideways", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := cfg.NormalizeRequestStatus(tc.raw)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("NormalizeRequestStatus(%q) = %q, %v; want %q, %v", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}

func TestNormalizeIncidentStatus(t *testing.T) {
	cfg := Default()

	if got, ok := cfg.NormalizeIncidentStatus("fechada"); !ok || got != types.IncidentClosed {
		t.Fatalf("fechada = %q, %v", got, ok)
	}
	if got, ok := cfg.NormalizeIncidentStatus("Aberta"); !ok || got != types.IncidentOpen {
		t.Fatalf("Aberta = %q, %v", got, ok)
	}
	if _, ok := cfg.NormalizeIncidentStatus("limbo"); ok {
		t.Fatal("limbo should not normalize")
	}
}

func TestClosedSpellingsCoverLegacyForms(t *testing.T) {
	cfg := Default()

	spellings := map[string]bool{}
	for _, s := range cfg.IncidentClosedSpellings() {
		spellings[s] = true
	}
	for _, want := range []string{"closed", "fechada", "atendida"} {
		if !spellings[want] {
			t.Fatalf("missing closed spelling %q in %v", want, spellings)
		}
	}
}

func TestLoadMergesAliasesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
catalog_photo_dir: /data/photos
request_status_aliases:
  done: fulfilled
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.CatalogPhotoDir != "/data/photos" {
		t.Fatalf("catalog dir = %s", cfg.CatalogPhotoDir)
	}
	// File value merged in.
	if got, ok := cfg.NormalizeRequestStatus("done"); !ok || got != types.RequestFulfilled {
		t.Fatalf("done = %q, %v", got, ok)
	}
	// Built-ins survive the merge.
	if got, ok := cfg.NormalizeRequestStatus("pendente"); !ok || got != types.RequestPending {
		t.Fatalf("pendente = %q, %v", got, ok)
	}
	// Untouched fields keep defaults.
	if cfg.RequestPhotoDir != "photos_requests" || cfg.MaxUploadBytes != 16<<20 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.CatalogPhotoDir != "photos_catalog" {
		t.Fatalf("unexpected default: %s", cfg.CatalogPhotoDir)
	}
}
