package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tooltag/tooltag-backend/internal/apperr"
	"github.com/tooltag/tooltag-backend/internal/logger"
	"github.com/tooltag/tooltag-backend/internal/repos"
	"github.com/tooltag/tooltag-backend/internal/storage"
	"github.com/tooltag/tooltag-backend/internal/types"
)

// PhotoUpload carries one uploaded file through a service call.
type PhotoUpload struct {
	Filename string
	Data     []byte
}

type CompositionInput struct {
	SupplyID uint `json:"supply_id"`
	Quantity int  `json:"quantity"`
}

type CatalogItemInput struct {
	Kind              string
	ManufacturingCode string
	InternalCode      string
	Name              string
	Category          string
	Material          string
	MachineType       string
	HeightMin         *float64
	HeightMax         *float64
	RPM               *int
	FeedRate          *float64
	Composition       []CompositionInput
	Cells             []string
	Machines          []string
	Photo             *PhotoUpload
	// RemovePhoto clears the stored photo on update when no new one is sent.
	RemovePhoto bool
}

// CatalogItemView is an item with its tags and, for tools, its composition.
type CatalogItemView struct {
	types.CatalogItem
	Cells       []string                   `json:"cells"`
	Machines    []string                   `json:"machines"`
	Composition []*types.CompositionDetail `json:"composition,omitempty"`
}

type CatalogService interface {
	Register(ctx context.Context, in CatalogItemInput) (*CatalogItemView, error)
	Update(ctx context.Context, id uint, in CatalogItemInput) (*CatalogItemView, error)
	Get(ctx context.Context, id uint) (*CatalogItemView, error)
	GetByCode(ctx context.Context, code string) (*CatalogItemView, error)
	List(ctx context.Context) ([]*CatalogItemView, error)
	ListSupplies(ctx context.Context) ([]*types.CatalogItem, error)
	ListByMachine(ctx context.Context, machine string) ([]*CatalogItemView, error)
	CodeExists(ctx context.Context, code string, excludeID uint) (bool, error)
	SoftDelete(ctx context.Context, id uint) error
	Undo(ctx context.Context, id uint) (*CatalogItemView, error)
	Machines(ctx context.Context, term string, limit int) ([]string, error)
}

type catalogService struct {
	db       *gorm.DB
	log      *logger.Logger
	items    repos.CatalogItemRepo
	edges    repos.CompositionRepo
	deleted  repos.DeletedItemRepo
	cells    repos.ItemCellRepo
	machines repos.ItemMachineRepo
	requests repos.SupplyRequestRepo
	photos   *storage.PhotoStore
}

func NewCatalogService(
	db *gorm.DB,
	baseLog *logger.Logger,
	items repos.CatalogItemRepo,
	edges repos.CompositionRepo,
	deleted repos.DeletedItemRepo,
	cells repos.ItemCellRepo,
	machines repos.ItemMachineRepo,
	requests repos.SupplyRequestRepo,
	photos *storage.PhotoStore,
) CatalogService {
	return &catalogService{
		db:       db,
		log:      baseLog.With("service", "CatalogService"),
		items:    items,
		edges:    edges,
		deleted:  deleted,
		cells:    cells,
		machines: machines,
		requests: requests,
		photos:   photos,
	}
}

func validateItemInput(in *CatalogItemInput) error {
	in.Kind = strings.TrimSpace(strings.ToLower(in.Kind))
	in.InternalCode = strings.TrimSpace(in.InternalCode)
	in.Name = strings.TrimSpace(in.Name)
	in.ManufacturingCode = strings.TrimSpace(in.ManufacturingCode)

	if in.Kind != types.ItemKindTool && in.Kind != types.ItemKindSupply {
		return apperr.Ef(apperr.KindValidation, "invalid item kind: %q", in.Kind)
	}
	if len(in.InternalCode) < 2 {
		return apperr.E(apperr.KindValidation, "internal code must have at least 2 characters")
	}
	if len(in.Name) < 3 {
		return apperr.E(apperr.KindValidation, "name must have at least 3 characters")
	}
	if in.HeightMin != nil && in.HeightMax != nil && *in.HeightMin > *in.HeightMax {
		return apperr.E(apperr.KindValidation, "minimum height cannot exceed maximum height")
	}
	if in.Kind == types.ItemKindTool {
		if len(in.Composition) == 0 {
			return apperr.E(apperr.KindValidation, "a tool needs at least one composition entry")
		}
		for _, c := range in.Composition {
			if c.SupplyID == 0 {
				return apperr.E(apperr.KindValidation, "composition entry missing supply id")
			}
			if c.Quantity <= 0 {
				return apperr.E(apperr.KindValidation, "composition quantity must be positive")
			}
		}
	}
	return nil
}

func (s *catalogService) Register(ctx context.Context, in CatalogItemInput) (*CatalogItemView, error) {
	if err := validateItemInput(&in); err != nil {
		return nil, err
	}

	var photoName string
	if in.Photo != nil {
		name, err := s.photos.Save(in.InternalCode, in.Photo.Filename, in.Photo.Data)
		if err != nil {
			return nil, err
		}
		photoName = name
	}

	item := &types.CatalogItem{
		Kind:              in.Kind,
		ManufacturingCode: in.ManufacturingCode,
		InternalCode:      in.InternalCode,
		Name:              in.Name,
		Photo:             photoName,
		Category:          in.Category,
		Material:          in.Material,
		MachineType:       in.MachineType,
		HeightMin:         in.HeightMin,
		HeightMax:         in.HeightMax,
		RPM:               in.RPM,
		FeedRate:          in.FeedRate,
		CreatedAt:         time.Now(),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.items.GetByCodeFold(ctx, tx, in.InternalCode, 0)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperr.Ef(apperr.KindValidation, "internal code already in use: %s", in.InternalCode)
		}
		if err := s.items.Create(ctx, tx, item); err != nil {
			return err
		}
		if item.IsTool() {
			if err := s.edges.CreateBatch(ctx, tx, buildEdges(item.ID, in.Composition)); err != nil {
				return err
			}
		}
		if err := s.cells.ReplaceForItem(ctx, tx, item.ID, in.Cells); err != nil {
			return err
		}
		return s.machines.ReplaceForItem(ctx, tx, item.ID, in.Machines)
	})
	if err != nil {
		if photoName != "" {
			_ = s.photos.Delete(photoName)
		}
		return nil, err
	}

	s.log.Info("Catalog item registered", "id", item.ID, "code", item.InternalCode)
	return s.view(ctx, nil, item)
}

func (s *catalogService) Update(ctx context.Context, id uint, in CatalogItemInput) (*CatalogItemView, error) {
	if err := validateItemInput(&in); err != nil {
		return nil, err
	}

	var newPhoto string
	if in.Photo != nil {
		name, err := s.photos.Save(in.InternalCode, in.Photo.Filename, in.Photo.Data)
		if err != nil {
			return nil, err
		}
		newPhoto = name
	}

	var item *types.CatalogItem
	var oldPhoto string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		item, err = s.items.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if item == nil {
			return apperr.Ef(apperr.KindNotFound, "catalog item %d not found", id)
		}
		dup, err := s.items.GetByCodeFold(ctx, tx, in.InternalCode, id)
		if err != nil {
			return err
		}
		if dup != nil {
			return apperr.Ef(apperr.KindValidation, "internal code already in use: %s", in.InternalCode)
		}

		item.Kind = in.Kind
		item.ManufacturingCode = in.ManufacturingCode
		item.InternalCode = in.InternalCode
		item.Name = in.Name
		item.Category = in.Category
		item.Material = in.Material
		item.MachineType = in.MachineType
		item.HeightMin = in.HeightMin
		item.HeightMax = in.HeightMax
		item.RPM = in.RPM
		item.FeedRate = in.FeedRate
		switch {
		case newPhoto != "":
			oldPhoto = item.Photo
			item.Photo = newPhoto
		case in.RemovePhoto:
			oldPhoto = item.Photo
			item.Photo = ""
		}

		if err := s.items.Save(ctx, tx, item); err != nil {
			return err
		}
		if err := s.edges.DeleteByToolID(ctx, tx, item.ID); err != nil {
			return err
		}
		if item.IsTool() {
			if err := s.edges.CreateBatch(ctx, tx, buildEdges(item.ID, in.Composition)); err != nil {
				return err
			}
		}
		if err := s.cells.ReplaceForItem(ctx, tx, item.ID, in.Cells); err != nil {
			return err
		}
		return s.machines.ReplaceForItem(ctx, tx, item.ID, in.Machines)
	})
	if err != nil {
		if newPhoto != "" {
			_ = s.photos.Delete(newPhoto)
		}
		return nil, err
	}
	if oldPhoto != "" && oldPhoto != item.Photo {
		_ = s.photos.Delete(oldPhoto)
	}

	s.log.Info("Catalog item updated", "id", item.ID, "code", item.InternalCode)
	return s.view(ctx, nil, item)
}

func (s *catalogService) Get(ctx context.Context, id uint) (*CatalogItemView, error) {
	item, err := s.items.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperr.Ef(apperr.KindNotFound, "catalog item %d not found", id)
	}
	return s.view(ctx, nil, item)
}

func (s *catalogService) GetByCode(ctx context.Context, code string) (*CatalogItemView, error) {
	item, err := s.items.GetByCodeFold(ctx, nil, strings.TrimSpace(code), 0)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperr.Ef(apperr.KindNotFound, "catalog item with code %q not found", code)
	}
	return s.view(ctx, nil, item)
}

func (s *catalogService) List(ctx context.Context) ([]*CatalogItemView, error) {
	items, err := s.items.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, items)
}

func (s *catalogService) ListSupplies(ctx context.Context) ([]*types.CatalogItem, error) {
	return s.items.ListByKind(ctx, nil, types.ItemKindSupply)
}

func (s *catalogService) ListByMachine(ctx context.Context, machine string) ([]*CatalogItemView, error) {
	items, err := s.items.ListByMachine(ctx, nil, strings.TrimSpace(machine))
	if err != nil {
		return nil, err
	}
	return s.views(ctx, items)
}

func (s *catalogService) CodeExists(ctx context.Context, code string, excludeID uint) (bool, error) {
	item, err := s.items.GetByCodeFold(ctx, nil, strings.TrimSpace(code), excludeID)
	if err != nil {
		return false, err
	}
	return item != nil, nil
}

// SoftDelete snapshots the item, its composition and its tags into the ledger
// and removes the live rows, all in one transaction. The photo file stays on
// disk so an undo restores a working record.
func (s *catalogService) SoftDelete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.items.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if item == nil {
			return apperr.Ef(apperr.KindNotFound, "catalog item %d not found", id)
		}

		cells, err := s.cells.ListForItem(ctx, tx, id)
		if err != nil {
			return err
		}
		machines, err := s.machines.ListForItem(ctx, tx, id)
		if err != nil {
			return err
		}
		edges, err := s.edges.ListByToolID(ctx, tx, id)
		if err != nil {
			return err
		}

		now := time.Now()
		entry := &types.DeletedCatalogItem{
			ID:                item.ID,
			Kind:              item.Kind,
			ManufacturingCode: item.ManufacturingCode,
			InternalCode:      item.InternalCode,
			Name:              item.Name,
			Photo:             item.Photo,
			Category:          item.Category,
			Material:          item.Material,
			MachineType:       item.MachineType,
			HeightMin:         item.HeightMin,
			HeightMax:         item.HeightMax,
			RPM:               item.RPM,
			FeedRate:          item.FeedRate,
			CreatedAt:         item.CreatedAt,
			Cells:             mustJSON(cells),
			Machines:          mustJSON(machines),
			DeletedAt:         now,
		}
		if err := s.deleted.Create(ctx, tx, entry); err != nil {
			return err
		}
		shadow := make([]*types.DeletedCompositionEdge, 0, len(edges))
		for _, e := range edges {
			shadow = append(shadow, &types.DeletedCompositionEdge{
				ToolID:    e.ToolID,
				SupplyID:  e.SupplyID,
				Quantity:  e.Quantity,
				DeletedAt: now,
			})
		}
		if err := s.deleted.CreateEdges(ctx, tx, shadow); err != nil {
			return err
		}

		if err := s.edges.DeleteByToolID(ctx, tx, id); err != nil {
			return err
		}
		if err := s.cells.DeleteForItem(ctx, tx, id); err != nil {
			return err
		}
		if err := s.machines.DeleteForItem(ctx, tx, id); err != nil {
			return err
		}
		return s.items.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}
	s.log.Info("Catalog item soft-deleted", "id", id)
	return nil
}

// Undo restores a ledger entry under its original id. It fails with a
// conflict when another live item has since claimed the internal code.
func (s *catalogService) Undo(ctx context.Context, id uint) (*CatalogItemView, error) {
	var item *types.CatalogItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry, err := s.deleted.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if entry == nil {
			return apperr.Ef(apperr.KindNotFound, "no deleted catalog item %d to restore", id)
		}
		claimed, err := s.items.GetByCodeFold(ctx, tx, entry.InternalCode, 0)
		if err != nil {
			return err
		}
		if claimed != nil {
			return apperr.Ef(apperr.KindConflict, "internal code %s was reclaimed by item %d", entry.InternalCode, claimed.ID)
		}

		item = &types.CatalogItem{
			ID:                entry.ID,
			Kind:              entry.Kind,
			ManufacturingCode: entry.ManufacturingCode,
			InternalCode:      entry.InternalCode,
			Name:              entry.Name,
			Photo:             entry.Photo,
			Category:          entry.Category,
			Material:          entry.Material,
			MachineType:       entry.MachineType,
			HeightMin:         entry.HeightMin,
			HeightMax:         entry.HeightMax,
			RPM:               entry.RPM,
			FeedRate:          entry.FeedRate,
			CreatedAt:         entry.CreatedAt,
		}
		if err := s.items.Create(ctx, tx, item); err != nil {
			return err
		}

		shadow, err := s.deleted.ListEdges(ctx, tx, id)
		if err != nil {
			return err
		}
		edges := make([]*types.CompositionEdge, 0, len(shadow))
		for _, e := range shadow {
			edges = append(edges, &types.CompositionEdge{
				ToolID:   e.ToolID,
				SupplyID: e.SupplyID,
				Quantity: e.Quantity,
			})
		}
		if err := s.edges.CreateBatch(ctx, tx, edges); err != nil {
			return err
		}
		if err := s.cells.ReplaceForItem(ctx, tx, id, decodeStrings(entry.Cells)); err != nil {
			return err
		}
		if err := s.machines.ReplaceForItem(ctx, tx, id, decodeStrings(entry.Machines)); err != nil {
			return err
		}

		if err := s.deleted.DeleteEdges(ctx, tx, id); err != nil {
			return err
		}
		return s.deleted.Delete(ctx, tx, id)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Catalog item restored", "id", id)
	return s.view(ctx, nil, item)
}

func (s *catalogService) Machines(ctx context.Context, term string, limit int) ([]string, error) {
	tagged, err := s.machines.Distinct(ctx, nil, term, limit)
	if err != nil {
		return nil, err
	}
	requested, err := s.requests.DistinctMachines(ctx, nil, term, limit)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(tagged)+len(requested))
	out := make([]string, 0, len(tagged)+len(requested))
	for _, m := range append(tagged, requested...) {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *catalogService) view(ctx context.Context, tx *gorm.DB, item *types.CatalogItem) (*CatalogItemView, error) {
	cells, err := s.cells.ListForItem(ctx, tx, item.ID)
	if err != nil {
		return nil, err
	}
	machines, err := s.machines.ListForItem(ctx, tx, item.ID)
	if err != nil {
		return nil, err
	}
	v := &CatalogItemView{CatalogItem: *item, Cells: cells, Machines: machines}
	if item.IsTool() {
		details, err := s.edges.DetailsByToolID(ctx, tx, item.ID)
		if err != nil {
			return nil, err
		}
		v.Composition = details
	}
	return v, nil
}

func (s *catalogService) views(ctx context.Context, items []*types.CatalogItem) ([]*CatalogItemView, error) {
	out := make([]*CatalogItemView, 0, len(items))
	for _, item := range items {
		v, err := s.view(ctx, nil, item)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func buildEdges(toolID uint, comps []CompositionInput) []*types.CompositionEdge {
	edges := make([]*types.CompositionEdge, 0, len(comps))
	for _, c := range comps {
		edges = append(edges, &types.CompositionEdge{
			ToolID:   toolID,
			SupplyID: c.SupplyID,
			Quantity: c.Quantity,
		})
	}
	return edges
}

func mustJSON(v []string) datatypes.JSON {
	if v == nil {
		v = []string{}
	}
	raw, _ := json.Marshal(v)
	return datatypes.JSON(raw)
}

func decodeStrings(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
