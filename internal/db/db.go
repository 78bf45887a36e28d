package db

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tooltag/tooltag-backend/internal/logger"
	"github.com/tooltag/tooltag-backend/internal/types"
	"github.com/tooltag/tooltag-backend/internal/utils"
)

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

// New opens the database selected by DB_DRIVER: sqlite (default, file from
// DB_PATH) or postgres (DSN assembled from the usual POSTGRES_* vars).
func New(log *logger.Logger) (*Service, error) {
	serviceLog := log.With("service", "DBService")

	driver := strings.ToLower(utils.GetEnv("DB_DRIVER", "sqlite", log))
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		host := utils.GetEnv("POSTGRES_HOST", "localhost", log)
		port := utils.GetEnv("POSTGRES_PORT", "5432", log)
		user := utils.GetEnv("POSTGRES_USER", "postgres", log)
		password := utils.GetEnv("POSTGRES_PASSWORD", "", log)
		name := utils.GetEnv("POSTGRES_NAME", "tooltag", log)
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)
		dialector = postgres.Open(dsn)
	case "sqlite":
		path := utils.GetEnv("DB_PATH", "tooltag.db", log)
		dialector = sqlite.Open(path)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", driver)
	}

	serviceLog.Info("Connecting to database...", "driver", driver)
	gdb, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to database", "error", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &Service{db: gdb, log: serviceLog}, nil
}

// AutoMigrateAll creates/updates every table. Runs once at startup; there is
// no per-request schema check.
func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	return s.db.AutoMigrate(
		&types.CatalogItem{},
		&types.CompositionEdge{},
		&types.DeletedCatalogItem{},
		&types.DeletedCompositionEdge{},
		&types.ItemCell{},
		&types.ItemMachine{},
		&types.SupplyRequest{},
		&types.Incident{},
		&types.AdminCredential{},
	)
}

// SeedAdmin inserts the management credential row if none exists. The
// password is hashed before it touches the table.
func (s *Service) SeedAdmin(username, password string) error {
	var count int64
	if err := s.db.Model(&types.AdminCredential{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.log.Info("Seeding admin credential row", "username", username)
	return s.db.Create(&types.AdminCredential{Username: username, PasswordHash: string(hash)}).Error
}

func (s *Service) DB() *gorm.DB { return s.db }
