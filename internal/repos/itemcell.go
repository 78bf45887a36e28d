package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/tooltag/tooltag-backend/internal/logger"
	"github.com/tooltag/tooltag-backend/internal/types"
)

type ItemCellRepo interface {
	ReplaceForItem(ctx context.Context, tx *gorm.DB, itemID uint, cells []string) error
	ListForItem(ctx context.Context, tx *gorm.DB, itemID uint) ([]string, error)
	DeleteForItem(ctx context.Context, tx *gorm.DB, itemID uint) error
}

type itemCellRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewItemCellRepo(db *gorm.DB, baseLog *logger.Logger) ItemCellRepo {
	return &itemCellRepo{db: db, log: baseLog.With("repo", "ItemCellRepo")}
}

func (r *itemCellRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *itemCellRepo) ReplaceForItem(ctx context.Context, tx *gorm.DB, itemID uint, cells []string) error {
	conn := r.conn(tx).WithContext(ctx)
	if err := conn.Where("item_id = ?", itemID).Delete(&types.ItemCell{}).Error; err != nil {
		return err
	}
	if len(cells) == 0 {
		return nil
	}
	rows := make([]*types.ItemCell, 0, len(cells))
	for _, c := range cells {
		rows = append(rows, &types.ItemCell{ItemID: itemID, Cell: c})
	}
	return conn.Create(&rows).Error
}

func (r *itemCellRepo) ListForItem(ctx context.Context, tx *gorm.DB, itemID uint) ([]string, error) {
	var out []string
	if err := r.conn(tx).WithContext(ctx).
		Model(&types.ItemCell{}).
		Where("item_id = ?", itemID).
		Order("id").
		Pluck("cell", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *itemCellRepo) DeleteForItem(ctx context.Context, tx *gorm.DB, itemID uint) error {
	return r.conn(tx).WithContext(ctx).
		Where("item_id = ?", itemID).
		Delete(&types.ItemCell{}).Error
}
