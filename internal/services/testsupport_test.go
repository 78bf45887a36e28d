package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tooltag/tooltag-backend/internal/config"
	"github.com/tooltag/tooltag-backend/internal/logger"
	"github.com/tooltag/tooltag-backend/internal/repos"
	"github.com/tooltag/tooltag-backend/internal/storage"
	"github.com/tooltag/tooltag-backend/internal/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return '_'
	}, t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := gdb.AutoMigrate(
		&types.CatalogItem{},
		&types.CompositionEdge{},
		&types.DeletedCatalogItem{},
		&types.DeletedCompositionEdge{},
		&types.ItemCell{},
		&types.ItemMachine{},
		&types.SupplyRequest{},
		&types.Incident{},
		&types.AdminCredential{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return gdb
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func newTestPhotoStore(t *testing.T, log *logger.Logger) *storage.PhotoStore {
	t.Helper()
	store, err := storage.NewPhotoStore(t.TempDir(), []string{"png", "jpg", "jpeg", "gif", "webp"}, log)
	if err != nil {
		t.Fatalf("init photo store: %v", err)
	}
	return store
}

// captureNotifier records notifications for assertions.
type captureNotifier struct {
	mu       sync.Mutex
	payloads []any
}

func (n *captureNotifier) NotifyNewRequest(_ context.Context, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.payloads = append(n.payloads, payload)
}

func (n *captureNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.payloads)
}

type testEnv struct {
	db       *gorm.DB
	cfg      *config.Config
	log      *logger.Logger
	catalog  CatalogService
	requests RequestService
	incident IncidentService
	notifier *captureNotifier
	photos   *storage.PhotoStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gdb := newTestDB(t)
	log := newTestLogger(t)
	cfg := config.Default()
	photos := newTestPhotoStore(t, log)
	notifier := &captureNotifier{}

	itemRepo := repos.NewCatalogItemRepo(gdb, log)
	compositionRepo := repos.NewCompositionRepo(gdb, log)
	deletedRepo := repos.NewDeletedItemRepo(gdb, log)
	cellRepo := repos.NewItemCellRepo(gdb, log)
	machineRepo := repos.NewItemMachineRepo(gdb, log)
	requestRepo := repos.NewSupplyRequestRepo(gdb, log)
	incidentRepo := repos.NewIncidentRepo(gdb, log)

	return &testEnv{
		db:       gdb,
		cfg:      cfg,
		log:      log,
		catalog:  NewCatalogService(gdb, log, itemRepo, compositionRepo, deletedRepo, cellRepo, machineRepo, requestRepo, photos),
		requests: NewRequestService(gdb, log, cfg, requestRepo, itemRepo, photos, notifier),
		incident: NewIncidentService(gdb, log, cfg, incidentRepo),
		notifier: notifier,
		photos:   photos,
	}
}

func registerSupply(t *testing.T, env *testEnv, code, name string) *CatalogItemView {
	t.Helper()
	view, err := env.catalog.Register(context.Background(), CatalogItemInput{
		Kind:         types.ItemKindSupply,
		InternalCode: code,
		Name:         name,
	})
	if err != nil {
		t.Fatalf("register supply %s: %v", code, err)
	}
	return view
}
