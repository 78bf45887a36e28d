package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tooltag/tooltag-backend/internal/logger"
	"github.com/tooltag/tooltag-backend/internal/types"
)

type IncidentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, inc *types.Incident) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.Incident, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Incident, error)
	// ListClosed returns incidents whose stored status reads as closed under
	// any of the given spellings.
	ListClosed(ctx context.Context, tx *gorm.DB, closedSpellings []string) ([]*types.Incident, error)
	Save(ctx context.Context, tx *gorm.DB, inc *types.Incident) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

type incidentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewIncidentRepo(db *gorm.DB, baseLog *logger.Logger) IncidentRepo {
	return &incidentRepo{db: db, log: baseLog.With("repo", "IncidentRepo")}
}

func (r *incidentRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *incidentRepo) Create(ctx context.Context, tx *gorm.DB, inc *types.Incident) error {
	return r.conn(tx).WithContext(ctx).Create(inc).Error
}

func (r *incidentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.Incident, error) {
	var inc types.Incident
	err := r.conn(tx).WithContext(ctx).First(&inc, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inc, nil
}

func (r *incidentRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Incident, error) {
	var incs []*types.Incident
	if err := r.conn(tx).WithContext(ctx).
		Order("created_at DESC, id DESC").
		Find(&incs).Error; err != nil {
		return nil, err
	}
	return incs, nil
}

func (r *incidentRepo) ListClosed(ctx context.Context, tx *gorm.DB, closedSpellings []string) ([]*types.Incident, error) {
	var incs []*types.Incident
	if err := r.conn(tx).WithContext(ctx).
		Where("lower(status) IN ?", closedSpellings).
		Order("created_at DESC, id DESC").
		Find(&incs).Error; err != nil {
		return nil, err
	}
	return incs, nil
}

func (r *incidentRepo) Save(ctx context.Context, tx *gorm.DB, inc *types.Incident) error {
	return r.conn(tx).WithContext(ctx).Save(inc).Error
}

func (r *incidentRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	return r.conn(tx).WithContext(ctx).Delete(&types.Incident{}, id).Error
}
