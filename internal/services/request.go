package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tooltag/tooltag-backend/internal/apperr"
	"github.com/tooltag/tooltag-backend/internal/config"
	"github.com/tooltag/tooltag-backend/internal/logger"
	"github.com/tooltag/tooltag-backend/internal/repos"
	"github.com/tooltag/tooltag-backend/internal/storage"
	"github.com/tooltag/tooltag-backend/internal/types"
)

type SubmitRequestInput struct {
	ItemID        uint
	RequesterName string
	Operator      string
	Machine       string
	Quantity      int
	Urgency       string
	Justification string
}

type FulfillInput struct {
	// Status is free text; it is normalized through the alias map.
	Status        string
	Photos        []PhotoUpload
	NoPhotos      bool
	CorrectedCode string
	FulfilledBy   string
}

type RequestService interface {
	Submit(ctx context.Context, in SubmitRequestInput) (*types.RequestWithItem, error)
	Get(ctx context.Context, id uint) (*types.RequestWithItem, error)
	List(ctx context.Context, all bool) ([]*types.RequestWithItem, error)
	Fulfill(ctx context.Context, id uint, in FulfillInput) (*types.RequestWithItem, error)
	Reopen(ctx context.Context, id uint) (*types.RequestWithItem, error)
	RemovePhoto(ctx context.Context, id uint, photo string) (*types.RequestWithItem, error)
	Delete(ctx context.Context, id uint) error
}

type requestService struct {
	db       *gorm.DB
	log      *logger.Logger
	cfg      *config.Config
	requests repos.SupplyRequestRepo
	items    repos.CatalogItemRepo
	photos   *storage.PhotoStore
	notifier Notifier
}

func NewRequestService(
	db *gorm.DB,
	baseLog *logger.Logger,
	cfg *config.Config,
	requests repos.SupplyRequestRepo,
	items repos.CatalogItemRepo,
	photos *storage.PhotoStore,
	notifier Notifier,
) RequestService {
	return &requestService{
		db:       db,
		log:      baseLog.With("service", "RequestService"),
		cfg:      cfg,
		requests: requests,
		items:    items,
		photos:   photos,
		notifier: notifier,
	}
}

func (s *requestService) Submit(ctx context.Context, in SubmitRequestInput) (*types.RequestWithItem, error) {
	in.RequesterName = strings.TrimSpace(in.RequesterName)
	if in.ItemID == 0 {
		return nil, apperr.E(apperr.KindValidation, "item id is required")
	}
	if in.RequesterName == "" {
		return nil, apperr.E(apperr.KindValidation, "requester name is required")
	}
	if in.Quantity <= 0 {
		return nil, apperr.E(apperr.KindValidation, "quantity must be positive")
	}

	req := &types.SupplyRequest{
		RequesterName: in.RequesterName,
		Operator:      strings.TrimSpace(in.Operator),
		Machine:       strings.TrimSpace(in.Machine),
		Quantity:      in.Quantity,
		Urgency:       strings.TrimSpace(in.Urgency),
		Justification: strings.TrimSpace(in.Justification),
		Status:        string(types.RequestPending),
		CreatedAt:     time.Now(),
	}
	req.SetPhotoList(nil)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.items.GetByID(ctx, tx, in.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return apperr.Ef(apperr.KindNotFound, "catalog item %d not found", in.ItemID)
		}
		id := item.ID
		req.ItemID = &id
		req.InternalCode = item.InternalCode
		return s.requests.Create(ctx, tx, req)
	})
	if err != nil {
		return nil, err
	}

	joined, err := s.requests.GetJoinedByID(ctx, nil, req.ID)
	if err != nil {
		return nil, err
	}
	s.log.Info("Supply request submitted", "id", req.ID, "item", in.ItemID)
	s.notifier.NotifyNewRequest(ctx, joined)
	return joined, nil
}

func (s *requestService) Get(ctx context.Context, id uint) (*types.RequestWithItem, error) {
	row, err := s.requests.GetJoinedByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apperr.Ef(apperr.KindNotFound, "supply request %d not found", id)
	}
	return row, nil
}

func (s *requestService) List(ctx context.Context, all bool) ([]*types.RequestWithItem, error) {
	return s.requests.ListJoined(ctx, nil, all, s.cfg.RequestPendingSpellings())
}

// Fulfill applies a status change plus its side effects. Photos are accepted
// only on a fulfilled, with-photos request and merge into the stored list
// without duplicates, existing names first. The fulfillment timestamp is set
// on the transition into fulfilled and kept on repeat calls; any other status
// clears it. FulfilledBy and CorrectedCode only overwrite when non-empty.
func (s *requestService) Fulfill(ctx context.Context, id uint, in FulfillInput) (*types.RequestWithItem, error) {
	status, ok := s.cfg.NormalizeRequestStatus(in.Status)
	if !ok {
		return nil, apperr.Ef(apperr.KindValidation, "unknown request status: %q", in.Status)
	}

	var saved []string
	if status == types.RequestFulfilled && !in.NoPhotos {
		for _, p := range in.Photos {
			name, err := s.photos.Save(fmt.Sprintf("request_%d", id), p.Filename, p.Data)
			if err != nil {
				for _, n := range saved {
					_ = s.photos.Delete(n)
				}
				return nil, err
			}
			saved = append(saved, name)
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		req, err := s.requests.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if req == nil {
			return apperr.Ef(apperr.KindNotFound, "supply request %d not found", id)
		}

		wasFulfilled, _ := s.cfg.NormalizeRequestStatus(req.Status)
		req.Status = string(status)

		if status == types.RequestFulfilled {
			if !in.NoPhotos {
				req.SetPhotoList(mergePhotos(req.PhotoList(), saved))
			}
			req.NoPhotos = in.NoPhotos
			if wasFulfilled != types.RequestFulfilled || req.FulfilledAt == nil {
				now := time.Now()
				req.FulfilledAt = &now
			}
		} else {
			req.FulfilledAt = nil
		}
		if by := strings.TrimSpace(in.FulfilledBy); by != "" {
			req.FulfilledBy = by
		}
		if code := strings.TrimSpace(in.CorrectedCode); code != "" {
			req.InternalCode = code
		}
		return s.requests.Save(ctx, tx, req)
	})
	if err != nil {
		for _, n := range saved {
			_ = s.photos.Delete(n)
		}
		return nil, err
	}

	s.log.Info("Supply request status updated", "id", id, "status", status)
	return s.Get(ctx, id)
}

func (s *requestService) Reopen(ctx context.Context, id uint) (*types.RequestWithItem, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		req, err := s.requests.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if req == nil {
			return apperr.Ef(apperr.KindNotFound, "supply request %d not found", id)
		}
		req.Status = string(types.RequestPending)
		req.FulfilledAt = nil
		return s.requests.Save(ctx, tx, req)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Supply request reopened", "id", id)
	return s.Get(ctx, id)
}

// RemovePhoto drops one filename from the request's photo list and deletes
// the file best-effort. A name not on the list is a no-op.
func (s *requestService) RemovePhoto(ctx context.Context, id uint, photo string) (*types.RequestWithItem, error) {
	removed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		req, err := s.requests.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if req == nil {
			return apperr.Ef(apperr.KindNotFound, "supply request %d not found", id)
		}
		list := req.PhotoList()
		kept := make([]string, 0, len(list))
		for _, p := range list {
			if p == photo {
				removed = true
				continue
			}
			kept = append(kept, p)
		}
		if !removed {
			return nil
		}
		req.SetPhotoList(kept)
		return s.requests.Save(ctx, tx, req)
	})
	if err != nil {
		return nil, err
	}
	if removed {
		if err := s.photos.Delete(photo); err != nil {
			s.log.Warn("Failed to delete request photo file", "id", id, "photo", photo, "error", err)
		}
	}
	return s.Get(ctx, id)
}

func (s *requestService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		req, err := s.requests.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if req == nil {
			return apperr.Ef(apperr.KindNotFound, "supply request %d not found", id)
		}
		return s.requests.Delete(ctx, tx, id)
	})
}

func mergePhotos(existing, added []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(added))
	out := make([]string, 0, len(existing)+len(added))
	for _, p := range append(existing, added...) {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
