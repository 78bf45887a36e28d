package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tooltag/tooltag-backend/internal/logger"
	"github.com/tooltag/tooltag-backend/internal/types"
)

type CatalogItemRepo interface {
	Create(ctx context.Context, tx *gorm.DB, item *types.CatalogItem) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.CatalogItem, error)
	GetByCode(ctx context.Context, tx *gorm.DB, code string) (*types.CatalogItem, error)
	// GetByCodeFold matches internal_code case-insensitively, optionally
	// excluding one id (0 excludes nothing).
	GetByCodeFold(ctx context.Context, tx *gorm.DB, code string, excludeID uint) (*types.CatalogItem, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.CatalogItem, error)
	ListByKind(ctx context.Context, tx *gorm.DB, kind string) ([]*types.CatalogItem, error)
	ListByMachine(ctx context.Context, tx *gorm.DB, machine string) ([]*types.CatalogItem, error)
	Save(ctx context.Context, tx *gorm.DB, item *types.CatalogItem) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

type catalogItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCatalogItemRepo(db *gorm.DB, baseLog *logger.Logger) CatalogItemRepo {
	return &catalogItemRepo{db: db, log: baseLog.With("repo", "CatalogItemRepo")}
}

func (r *catalogItemRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *catalogItemRepo) Create(ctx context.Context, tx *gorm.DB, item *types.CatalogItem) error {
	return r.conn(tx).WithContext(ctx).Create(item).Error
}

func (r *catalogItemRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.CatalogItem, error) {
	var item types.CatalogItem
	err := r.conn(tx).WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *catalogItemRepo) GetByCode(ctx context.Context, tx *gorm.DB, code string) (*types.CatalogItem, error) {
	var item types.CatalogItem
	err := r.conn(tx).WithContext(ctx).
		Where("internal_code = ?", code).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *catalogItemRepo) GetByCodeFold(ctx context.Context, tx *gorm.DB, code string, excludeID uint) (*types.CatalogItem, error) {
	q := r.conn(tx).WithContext(ctx).Where("lower(internal_code) = lower(?)", code)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var item types.CatalogItem
	err := q.First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *catalogItemRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.CatalogItem, error) {
	var items []*types.CatalogItem
	if err := r.conn(tx).WithContext(ctx).Order("name").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *catalogItemRepo) ListByKind(ctx context.Context, tx *gorm.DB, kind string) ([]*types.CatalogItem, error) {
	var items []*types.CatalogItem
	if err := r.conn(tx).WithContext(ctx).
		Where("kind = ?", kind).
		Order("name").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *catalogItemRepo) ListByMachine(ctx context.Context, tx *gorm.DB, machine string) ([]*types.CatalogItem, error) {
	var items []*types.CatalogItem
	if err := r.conn(tx).WithContext(ctx).
		Joins("JOIN item_machine im ON im.item_id = catalog_item.id").
		Where("im.machine = ?", machine).
		Order("catalog_item.name").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *catalogItemRepo) Save(ctx context.Context, tx *gorm.DB, item *types.CatalogItem) error {
	return r.conn(tx).WithContext(ctx).Save(item).Error
}

func (r *catalogItemRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	return r.conn(tx).WithContext(ctx).Delete(&types.CatalogItem{}, id).Error
}
