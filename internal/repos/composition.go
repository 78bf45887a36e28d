package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/tooltag/tooltag-backend/internal/logger"
	"github.com/tooltag/tooltag-backend/internal/types"
)

type CompositionRepo interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, edges []*types.CompositionEdge) error
	ListByToolID(ctx context.Context, tx *gorm.DB, toolID uint) ([]*types.CompositionEdge, error)
	// DetailsByToolID joins each edge with the supply's name.
	DetailsByToolID(ctx context.Context, tx *gorm.DB, toolID uint) ([]*types.CompositionDetail, error)
	DeleteByToolID(ctx context.Context, tx *gorm.DB, toolID uint) error
}

type compositionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCompositionRepo(db *gorm.DB, baseLog *logger.Logger) CompositionRepo {
	return &compositionRepo{db: db, log: baseLog.With("repo", "CompositionRepo")}
}

func (r *compositionRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *compositionRepo) CreateBatch(ctx context.Context, tx *gorm.DB, edges []*types.CompositionEdge) error {
	if len(edges) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Create(&edges).Error
}

func (r *compositionRepo) ListByToolID(ctx context.Context, tx *gorm.DB, toolID uint) ([]*types.CompositionEdge, error) {
	var edges []*types.CompositionEdge
	if err := r.conn(tx).WithContext(ctx).
		Where("tool_id = ?", toolID).
		Find(&edges).Error; err != nil {
		return nil, err
	}
	return edges, nil
}

func (r *compositionRepo) DetailsByToolID(ctx context.Context, tx *gorm.DB, toolID uint) ([]*types.CompositionDetail, error) {
	var details []*types.CompositionDetail
	if err := r.conn(tx).WithContext(ctx).
		Table("composition_edge ce").
		Select("ce.supply_id AS supply_id, ci.name AS name, ce.quantity AS quantity").
		Joins("JOIN catalog_item ci ON ci.id = ce.supply_id").
		Where("ce.tool_id = ?", toolID).
		Scan(&details).Error; err != nil {
		return nil, err
	}
	return details, nil
}

func (r *compositionRepo) DeleteByToolID(ctx context.Context, tx *gorm.DB, toolID uint) error {
	return r.conn(tx).WithContext(ctx).
		Where("tool_id = ?", toolID).
		Delete(&types.CompositionEdge{}).Error
}
