package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tooltag/tooltag-backend/internal/logger"
	"github.com/tooltag/tooltag-backend/internal/types"
)

type SupplyRequestRepo interface {
	Create(ctx context.Context, tx *gorm.DB, req *types.SupplyRequest) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.SupplyRequest, error)
	GetJoinedByID(ctx context.Context, tx *gorm.DB, id uint) (*types.RequestWithItem, error)
	// ListJoined returns requests newest-first; when all is false only
	// pending rows are returned.
	ListJoined(ctx context.Context, tx *gorm.DB, all bool, pendingSpellings []string) ([]*types.RequestWithItem, error)
	// ListFulfilledJoined returns fulfilled requests, any legacy spelling,
	// newest fulfillment first.
	ListFulfilledJoined(ctx context.Context, tx *gorm.DB, fulfilledSpellings []string) ([]*types.RequestWithItem, error)
	Save(ctx context.Context, tx *gorm.DB, req *types.SupplyRequest) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	// DistinctMachines lists machines named on requests, for the machine
	// suggestion endpoint.
	DistinctMachines(ctx context.Context, tx *gorm.DB, term string, limit int) ([]string, error)
}

type supplyRequestRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSupplyRequestRepo(db *gorm.DB, baseLog *logger.Logger) SupplyRequestRepo {
	return &supplyRequestRepo{db: db, log: baseLog.With("repo", "SupplyRequestRepo")}
}

func (r *supplyRequestRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *supplyRequestRepo) joined(conn *gorm.DB) *gorm.DB {
	return conn.
		Table("supply_request").
		Select("supply_request.*, ci.name AS item_name, ci.kind AS item_kind, ci.internal_code AS item_code").
		Joins("LEFT JOIN catalog_item ci ON ci.id = supply_request.item_id")
}

func (r *supplyRequestRepo) Create(ctx context.Context, tx *gorm.DB, req *types.SupplyRequest) error {
	return r.conn(tx).WithContext(ctx).Create(req).Error
}

func (r *supplyRequestRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.SupplyRequest, error) {
	var req types.SupplyRequest
	err := r.conn(tx).WithContext(ctx).First(&req, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *supplyRequestRepo) GetJoinedByID(ctx context.Context, tx *gorm.DB, id uint) (*types.RequestWithItem, error) {
	var row types.RequestWithItem
	err := r.joined(r.conn(tx).WithContext(ctx)).
		Where("supply_request.id = ?", id).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *supplyRequestRepo) ListJoined(ctx context.Context, tx *gorm.DB, all bool, pendingSpellings []string) ([]*types.RequestWithItem, error) {
	q := r.joined(r.conn(tx).WithContext(ctx))
	if !all {
		q = q.Where("lower(supply_request.status) IN ?", pendingSpellings)
	}
	var rows []*types.RequestWithItem
	if err := q.Order("supply_request.created_at DESC, supply_request.id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *supplyRequestRepo) ListFulfilledJoined(ctx context.Context, tx *gorm.DB, fulfilledSpellings []string) ([]*types.RequestWithItem, error) {
	var rows []*types.RequestWithItem
	if err := r.joined(r.conn(tx).WithContext(ctx)).
		Where("lower(supply_request.status) IN ?", fulfilledSpellings).
		Order("supply_request.fulfilled_at DESC, supply_request.id DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *supplyRequestRepo) Save(ctx context.Context, tx *gorm.DB, req *types.SupplyRequest) error {
	return r.conn(tx).WithContext(ctx).Save(req).Error
}

func (r *supplyRequestRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	return r.conn(tx).WithContext(ctx).Delete(&types.SupplyRequest{}, id).Error
}

func (r *supplyRequestRepo) DistinctMachines(ctx context.Context, tx *gorm.DB, term string, limit int) ([]string, error) {
	q := r.conn(tx).WithContext(ctx).
		Model(&types.SupplyRequest{}).
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
