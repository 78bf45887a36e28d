package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/tooltag/tooltag-backend/internal/config"
	"github.com/tooltag/tooltag-backend/internal/logger"
	"github.com/tooltag/tooltag-backend/internal/repos"
)

const (
	SourceRequest  = "request"
	SourceIncident = "incident"
)

// FulfilledRecord is one row of the combined fulfilled view: either a
// fulfilled supply request or a closed incident, flattened to a common shape.
type FulfilledRecord struct {
	Source      string     `json:"source"`
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	Machine     string     `json:"machine"`
	ItemName    string     `json:"item_name"`
	ItemCode    string     `json:"item_code"`
	Quantity    int        `json:"quantity,omitempty"`
	Photos      []string   `json:"photos"`
	FulfilledBy string     `json:"fulfilled_by"`
	CreatedAt   time.Time  `json:"created_at"`
	FulfilledAt *time.Time `json:"fulfilled_at"`
}

// FulfilledFilter holds the case-insensitive filters of the fulfilled view.
// Title and FulfilledBy match as substrings (title also against the item name
// and code); Priority matches exactly.
type FulfilledFilter struct {
	Title       string
	Priority    string
	FulfilledBy string
}

type FulfilledService interface {
	List(ctx context.Context, f FulfilledFilter) ([]*FulfilledRecord, error)
}

type fulfilledService struct {
	log       *logger.Logger
	cfg       *config.Config
	requests  repos.SupplyRequestRepo
	incidents repos.IncidentRepo
}

func NewFulfilledService(baseLog *logger.Logger, cfg *config.Config, requests repos.SupplyRequestRepo, incidents repos.IncidentRepo) FulfilledService {
	return &fulfilledService{
		log:       baseLog.With("service", "FulfilledService"),
		cfg:       cfg,
		requests:  requests,
		incidents: incidents,
	}
}

func (s *fulfilledService) List(ctx context.Context, f FulfilledFilter) ([]*FulfilledRecord, error) {
	reqs, err := s.requests.ListFulfilledJoined(ctx, nil, s.cfg.RequestFulfilledSpellings())
	if err != nil {
		return nil, err
	}
	incs, err := s.incidents.ListClosed(ctx, nil, s.cfg.IncidentClosedSpellings())
	if err != nil {
		return nil, err
	}

	records := make([]*FulfilledRecord, 0, len(reqs)+len(incs))
	for _, r := range reqs {
		title := r.Operator
		if title == "" {
			title = r.RequesterName
		}
		if r.Operator != "" && r.Machine != "" {
			title = title + " - " + r.Machine
		}
		code := r.InternalCode
		if code == "" {
			code = r.ItemCode
		}
		records = append(records, &FulfilledRecord{
			Source:      SourceRequest,
			ID:          r.ID,
			Title:       title,
			Description: r.Justification,
			Priority:    r.Urgency,
			Status:      r.Status,
			Machine:     r.Machine,
			ItemName:    r.ItemName,
			ItemCode:    code,
			Quantity:    r.Quantity,
			Photos:      r.PhotoList(),
			FulfilledBy: r.FulfilledBy,
			CreatedAt:   r.CreatedAt,
			FulfilledAt: r.FulfilledAt,
		})
	}
	for _, inc := range incs {
		created := inc.CreatedAt
		records = append(records, &FulfilledRecord{
			Source:      SourceIncident,
			ID:          inc.ID,
			Title:       inc.Title,
			Description: inc.Description,
			Category:    inc.Category,
			Priority:    inc.Priority,
			Status:      inc.Status,
			Photos:      []string{},
			CreatedAt:   created,
			FulfilledAt: &created,
		})
	}

	records = filterRecords(records, f)

	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		at := a.CreatedAt
		if a.FulfilledAt != nil {
			at = *a.FulfilledAt
		}
		bt := b.CreatedAt
		if b.FulfilledAt != nil {
			bt = *b.FulfilledAt
		}
		if !at.Equal(bt) {
			return at.After(bt)
		}
		return a.ID > b.ID
	})
	return records, nil
}

func filterRecords(records []*FulfilledRecord, f FulfilledFilter) []*FulfilledRecord {
	title := strings.ToLower(strings.TrimSpace(f.Title))
	priority := strings.ToLower(strings.TrimSpace(f.Priority))
	by := strings.ToLower(strings.TrimSpace(f.FulfilledBy))
	if title == "" && priority == "" && by == "" {
		return records
	}
	out := records[:0]
	for _, r := range records {
		if title != "" &&
			!strings.Contains(strings.ToLower(r.Title), title) &&
			!strings.Contains(strings.ToLower(r.ItemName), title) &&
			!strings.Contains(strings.ToLower(r.ItemCode), title) {
			continue
		}
		if priority != "" && strings.ToLower(strings.TrimSpace(r.Priority)) != priority {
			continue
		}
		if by != "" && !strings.Contains(strings.ToLower(r.FulfilledBy), by) {
			continue
		}
		out = append(out, r)
	}
	return out
}
