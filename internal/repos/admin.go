package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tooltag/tooltag-backend/internal/logger"
	"github.com/tooltag/tooltag-backend/internal/types"
)

type AdminRepo interface {
	Get(ctx context.Context, tx *gorm.DB) (*types.AdminCredential, error)
	Save(ctx context.Context, tx *gorm.DB, cred *types.AdminCredential) error
}

type adminRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAdminRepo(db *gorm.DB, baseLog *logger.Logger) AdminRepo {
	return &adminRepo{db: db, log: baseLog.With("repo", "AdminRepo")}
}

func (r *adminRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *adminRepo) Get(ctx context.Context, tx *gorm.DB) (*types.AdminCredential, error) {
	var cred types.AdminCredential
	err := r.conn(tx).WithContext(ctx).Order("id").First(&cred).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *adminRepo) Save(ctx context.Context, tx *gorm.DB, cred *types.AdminCredential) error {
	return r.conn(tx).WithContext(ctx).Save(cred).Error
}
