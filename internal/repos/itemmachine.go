package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/tooltag/tooltag-backend/internal/logger"
	"github.com/tooltag/tooltag-backend/internal/types"
)

type ItemMachineRepo interface {
	ReplaceForItem(ctx context.Context, tx *gorm.DB, itemID uint, machines []string) error
	ListForItem(ctx context.Context, tx *gorm.DB, itemID uint) ([]string, error)
	DeleteForItem(ctx context.Context, tx *gorm.DB, itemID uint) error
	// Distinct lists every machine tag in use, optionally filtered by a
	// case-insensitive substring. limit <= 0 means no limit.
	Distinct(ctx context.Context, tx *gorm.DB, term string, limit int) ([]string, error)
}

type itemMachineRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewItemMachineRepo(db *gorm.DB, baseLog *logger.Logger) ItemMachineRepo {
	return &itemMachineRepo{db: db, log: baseLog.With("repo", "ItemMachineRepo")}
}

func (r *itemMachineRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *itemMachineRepo) ReplaceForItem(ctx context.Context, tx *gorm.DB, itemID uint, machines []string) error {
	conn := r.conn(tx).WithContext(ctx)
	if err := conn.Where("item_id = ?", itemID).Delete(&types.ItemMachine{}).Error; err != nil {
		return err
	}
	if len(machines) == 0 {
		return nil
	}
	rows := make([]*types.ItemMachine, 0, len(machines))
	for _, m := range machines {
		rows = append(rows, &types.ItemMachine{ItemID: itemID, Machine: m})
	}
	return conn.Create(&rows).Error
}

func (r *itemMachineRepo) ListForItem(ctx context.Context, tx *gorm.DB, itemID uint) ([]string, error) {
	var out []string
	if err := r.conn(tx).WithContext(ctx).
		Model(&types.ItemMachine{}).
		Where("item_id = ?", itemID).
		Order("id").
		Pluck("machine", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *itemMachineRepo) DeleteForItem(ctx context.Context, tx *gorm.DB, itemID uint) error {
	return r.conn(tx).WithContext(ctx).
		Where("item_id = ?", itemID).
		Delete(&types.ItemMachine{}).Error
}

func (r *itemMachineRepo) Distinct(ctx context.Context, tx *gorm.DB, term string, limit int) ([]string, error) {
	q := r.conn(tx).WithContext(ctx).
		Model(&types.ItemMachine{}).
		Distinct("machine").
		Where("machine <> ''").
		Order("machine")
	if term != "" {
		q = q.Where("lower(machine) LIKE lower(?)", "%"+term+"%")
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []string
	if err := q.Pluck("machine", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
