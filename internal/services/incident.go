package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tooltag/tooltag-backend/internal/apperr"
	"github.com/tooltag/tooltag-backend/internal/config"
	"github.com/tooltag/tooltag-backend/internal/logger"
	"github.com/tooltag/tooltag-backend/internal/repos"
	"github.com/tooltag/tooltag-backend/internal/types"
)

type IncidentInput struct {
	Title       string
	Description string
	Category    string
	Priority    string
}

type IncidentService interface {
	Create(ctx context.Context, in IncidentInput) (*types.Incident, error)
	Get(ctx context.Context, id uint) (*types.Incident, error)
	List(ctx context.Context) ([]*types.Incident, error)
	SetStatus(ctx context.Context, id uint, rawStatus string) (*types.Incident, error)
	Reopen(ctx context.Context, id uint) (*types.Incident, error)
	Delete(ctx context.Context, id uint) error
}

type incidentService struct {
	db        *gorm.DB
	log       *logger.Logger
	cfg       *config.Config
	incidents repos.IncidentRepo
}

func NewIncidentService(db *gorm.DB, baseLog *logger.Logger, cfg *config.Config, incidents repos.IncidentRepo) IncidentService {
	return &incidentService{
		db:        db,
		log:       baseLog.With("service", "IncidentService"),
		cfg:       cfg,
		incidents: incidents,
	}
}

func (s *incidentService) Create(ctx context.Context, in IncidentInput) (*types.Incident, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, apperr.E(apperr.KindValidation, "incident title is required")
	}
	inc := &types.Incident{
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
		Priority:    strings.TrimSpace(in.Priority),
		Status:      string(types.IncidentOpen),
		CreatedAt:   time.Now(),
	}
	if err := s.incidents.Create(ctx, nil, inc); err != nil {
		return nil, err
	}
	s.log.Info("Incident created", "id", inc.ID)
	return inc, nil
}

func (s *incidentService) Get(ctx context.Context, id uint) (*types.Incident, error) {
	inc, err := s.incidents.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if inc == nil {
		return nil, apperr.Ef(apperr.KindNotFound, "incident %d not found", id)
	}
	return inc, nil
}

func (s *incidentService) List(ctx context.Context) ([]*types.Incident, error) {
	return s.incidents.List(ctx, nil)
}

func (s *incidentService) SetStatus(ctx context.Context, id uint, rawStatus string) (*types.Incident, error) {
	status, ok := s.cfg.NormalizeIncidentStatus(rawStatus)
	if !ok {
		return nil, apperr.Ef(apperr.KindValidation, "unknown incident status: %q", rawStatus)
	}
	var inc *types.Incident
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		inc, err = s.incidents.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if inc == nil {
			return apperr.Ef(apperr.KindNotFound, "incident %d not found", id)
		}
		inc.Status = string(status)
		return s.incidents.Save(ctx, tx, inc)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Incident status updated", "id", id, "status", status)
	return inc, nil
}

func (s *incidentService) Reopen(ctx context.Context, id uint) (*types.Incident, error) {
	return s.SetStatus(ctx, id, string(types.IncidentOpen))
}

func (s *incidentService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inc, err := s.incidents.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if inc == nil {
			return apperr.Ef(apperr.KindNotFound, "incident %d not found", id)
		}
		return s.incidents.Delete(ctx, tx, id)
	})
}
