package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tooltag/tooltag-backend/internal/logger"
	"github.com/tooltag/tooltag-backend/internal/types"
)

// DeletedItemRepo is the soft-delete ledger: item snapshots plus the shadow
// composition table.
type DeletedItemRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entry *types.DeletedCatalogItem) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.DeletedCatalogItem, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	CreateEdges(ctx context.Context, tx *gorm.DB, edges []*types.DeletedCompositionEdge) error
	ListEdges(ctx context.Context, tx *gorm.DB, toolID uint) ([]*types.DeletedCompositionEdge, error)
	DeleteEdges(ctx context.Context, tx *gorm.DB, toolID uint) error
}

type deletedItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDeletedItemRepo(db *gorm.DB, baseLog *logger.Logger) DeletedItemRepo {
	return &deletedItemRepo{db: db, log: baseLog.With("repo", "DeletedItemRepo")}
}

func (r *deletedItemRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *deletedItemRepo) Create(ctx context.Context, tx *gorm.DB, entry *types.DeletedCatalogItem) error {
	return r.conn(tx).WithContext(ctx).Create(entry).Error
}

func (r *deletedItemRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.DeletedCatalogItem, error) {
	var entry types.DeletedCatalogItem
	err := r.conn(tx).WithContext(ctx).First(&entry, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *deletedItemRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	return r.conn(tx).WithContext(ctx).Delete(&types.DeletedCatalogItem{}, "id = ?", id).Error
}

func (r *deletedItemRepo) CreateEdges(ctx context.Context, tx *gorm.DB, edges []*types.DeletedCompositionEdge) error {
	if len(edges) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Create(&edges).Error
}

func (r *deletedItemRepo) ListEdges(ctx context.Context, tx *gorm.DB, toolID uint) ([]*types.DeletedCompositionEdge, error) {
	var edges []*types.DeletedCompositionEdge
	if err := r.conn(tx).WithContext(ctx).
		Where("tool_id = ?", toolID).
		Find(&edges).Error; err != nil {
		return nil, err
	}
	return edges, nil
}

func (r *deletedItemRepo) DeleteEdges(ctx context.Context, tx *gorm.DB, toolID uint) error {
	return r.conn(tx).WithContext(ctx).
		Where("tool_id = ?", toolID).
		Delete(&types.DeletedCompositionEdge{}).Error
}
