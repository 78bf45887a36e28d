package services

import (
	"context"
	"testing"

	"github.com/tooltag/tooltag-backend/internal/apperr"
	"github.com/tooltag/tooltag-backend/internal/types"
)

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   CatalogItemInput
	}{
		{"short code", CatalogItemInput{Kind: types.ItemKindSupply, InternalCode: "X", Name: "Drill Bit"}},
		{"short name", CatalogItemInput{Kind: types.ItemKindSupply, InternalCode: "DB-1", Name: "ab"}},
		{"bad kind", CatalogItemInput{Kind: "gadget", InternalCode: "DB-1", Name: "Drill Bit"}},
		{"tool without composition", CatalogItemInput{Kind: types.ItemKindTool, InternalCode: "T-1", Name: "Face Mill"}},
		{"height range inverted", func() CatalogItemInput {
			lo, hi := 30.0, 10.0
			return CatalogItemInput{Kind: types.ItemKindSupply, InternalCode: "DB-2", Name: "Drill Bit", HeightMin: &lo, HeightMax: &hi}
		}()},
	}
	for _, tc := range cases {
		if _, err := env.catalog.Register(ctx, tc.in); !apperr.IsKind(err, apperr.KindValidation) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestRegisterRejectsDuplicateCodeCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	registerSupply(t, env, "INS-100", "Carbide Insert")
	_, err := env.catalog.Register(ctx, CatalogItemInput{
		Kind:         types.ItemKindSupply,
		InternalCode: "ins-100",
		Name:         "Another Insert",
	})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for duplicate code, got %v", err)
	}
}

func TestRegisterToolRejectsNonPositiveQuantity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	supply := registerSupply(t, env, "INS-1", "Carbide Insert")
	_, err := env.catalog.Register(ctx, CatalogItemInput{
		Kind:         types.ItemKindTool,
		InternalCode: "T-10",
		Name:         "Face Mill",
		Composition:  []CompositionInput{{SupplyID: supply.ID, Quantity: 0}},
	})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRegisterAndGetRoundtrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	supply := registerSupply(t, env, "INS-1", "Carbide Insert")
	view, err := env.catalog.Register(ctx, CatalogItemInput{
		Kind:         types.ItemKindTool,
		InternalCode: "T-10",
		Name:         "Face Mill",
		Category:     "milling",
		Composition:  []CompositionInput{{SupplyID: supply.ID, Quantity: 4}},
		Cells:        []string{"C1", "C2"},
		Machines:     []string{"DMG-60"},
	})
	if err != nil {
		t.Fatalf("register tool: %v", err)
	}

	got, err := env.catalog.Get(ctx, view.ID)
	if err != nil {
		t.Fatalf("get tool: %v", err)
	}
	if got.InternalCode != "T-10" || got.Name != "Face Mill" {
		t.Fatalf("unexpected item: %+v", got.CatalogItem)
	}
	if len(got.Composition) != 1 || got.Composition[0].SupplyID != supply.ID || got.Composition[0].Quantity != 4 {
		t.Fatalf("unexpected composition: %+v", got.Composition)
	}
	if len(got.Cells) != 2 || len(got.Machines) != 1 {
		t.Fatalf("unexpected tags: cells=%v machines=%v", got.Cells, got.Machines)
	}

	byCode, err := env.catalog.GetByCode(ctx, "t-10")
	if err != nil {
		t.Fatalf("get by code: %v", err)
	}
	if byCode.ID != view.ID {
		t.Fatalf("code lookup returned item %d, want %d", byCode.ID, view.ID)
	}
}

func TestCodeExists(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	item := registerSupply(t, env, "INS-1", "Carbide Insert")

	exists, err := env.catalog.CodeExists(ctx, "ins-1", 0)
	if err != nil {
		t.Fatalf("code exists: %v", err)
	}
	if !exists {
		t.Fatal("expected code to exist")
	}
	exists, err = env.catalog.CodeExists(ctx, "ins-1", item.ID)
	if err != nil {
		t.Fatalf("code exists with exclusion: %v", err)
	}
	if exists {
		t.Fatal("expected exclusion of the item itself")
	}
}

func TestUpdateReplacesCompositionAndTags(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	s1 := registerSupply(t, env, "INS-1", "Carbide Insert")
	s2 := registerSupply(t, env, "INS-2", "Drill Body")
	tool, err := env.catalog.Register(ctx, CatalogItemInput{
		Kind:         types.ItemKindTool,
		InternalCode: "T-10",
		Name:         "Face Mill",
		Composition:  []CompositionInput{{SupplyID: s1.ID, Quantity: 4}},
		Cells:        []string{"C1"},
	})
	if err != nil {
		t.Fatalf("register tool: %v", err)
	}

	updated, err := env.catalog.Update(ctx, tool.ID, CatalogItemInput{
		Kind:         types.ItemKindTool,
		InternalCode: "T-11",
		Name:         "Face Mill v2",
		Composition:  []CompositionInput{{SupplyID: s2.ID, Quantity: 2}},
		Machines:     []string{"DMG-60"},
	})
	if err != nil {
		t.Fatalf("update tool: %v", err)
	}
	if updated.InternalCode != "T-11" {
		t.Fatalf("code not updated: %s", updated.InternalCode)
	}
	if len(updated.Composition) != 1 || updated.Composition[0].SupplyID != s2.ID {
		t.Fatalf("composition not replaced: %+v", updated.Composition)
	}
	if len(updated.Cells) != 0 || len(updated.Machines) != 1 {
		t.Fatalf("tags not replaced: cells=%v machines=%v", updated.Cells, updated.Machines)
	}
}

func TestUpdateRejectsCodeOfOtherItem(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	registerSupply(t, env, "INS-1", "Carbide Insert")
	other := registerSupply(t, env, "INS-2", "Drill Body")

	_, err := env.catalog.Update(ctx, other.ID, CatalogItemInput{
		Kind:         types.ItemKindSupply,
		InternalCode: "INS-1",
		Name:         "Drill Body",
	})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSoftDeleteAndUndoRoundtrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	heightMin, heightMax := 12.5, 45.0
	rpm := 8000
	feedRate := 0.12

	s1 := registerSupply(t, env, "INS-1", "Carbide Insert")
	tool, err := env.catalog.Register(ctx, CatalogItemInput{
		Kind:              types.ItemKindTool,
		ManufacturingCode: "MFG-775",
		InternalCode:      "T-10",
		Name:              "Face Mill",
		Category:          "milling",
		Material:          "carbide",
		MachineType:       "vertical mill",
		HeightMin:         &heightMin,
		HeightMax:         &heightMax,
		RPM:               &rpm,
		FeedRate:          &feedRate,
		Composition:       []CompositionInput{{SupplyID: s1.ID, Quantity: 4}},
		Cells:             []string{"C1", "C2"},
		Machines:          []string{"DMG-60"},
		Photo:             &PhotoUpload{Filename: "tool.png", Data: pngBytes},
	})
	if err != nil {
		t.Fatalf("register tool: %v", err)
	}
	if tool.Photo == "" {
		t.Fatal("registered tool missing photo reference")
	}

	if err := env.catalog.SoftDelete(ctx, tool.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	if _, err := env.catalog.Get(ctx, tool.ID); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}

	restored, err := env.catalog.Undo(ctx, tool.ID)
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if restored.ID != tool.ID {
		t.Fatalf("restored under id %d, want original %d", restored.ID, tool.ID)
	}
	// Every scalar column must survive the round-trip unchanged.
	if restored.Kind != tool.Kind ||
		restored.ManufacturingCode != tool.ManufacturingCode ||
		restored.InternalCode != tool.InternalCode ||
		restored.Name != tool.Name ||
		restored.Photo != tool.Photo ||
		restored.Category != tool.Category ||
		restored.Material != tool.Material ||
		restored.MachineType != tool.MachineType {
		t.Fatalf("restored item differs: got %+v, want %+v", restored.CatalogItem, tool.CatalogItem)
	}
	if restored.HeightMin == nil || *restored.HeightMin != heightMin ||
		restored.HeightMax == nil || *restored.HeightMax != heightMax {
		t.Fatalf("height range not restored: %v, %v", restored.HeightMin, restored.HeightMax)
	}
	if restored.RPM == nil || *restored.RPM != rpm {
		t.Fatalf("rpm not restored: %v", restored.RPM)
	}
	if restored.FeedRate == nil || *restored.FeedRate != feedRate {
		t.Fatalf("feed rate not restored: %v", restored.FeedRate)
	}
	if !restored.CreatedAt.Equal(tool.CreatedAt) {
		t.Fatalf("created_at changed: %v -> %v", tool.CreatedAt, restored.CreatedAt)
	}
	if len(restored.Composition) != 1 || restored.Composition[0].SupplyID != s1.ID || restored.Composition[0].Quantity != 4 {
		t.Fatalf("composition not restored: %+v", restored.Composition)
	}
	if len(restored.Cells) != 2 || len(restored.Machines) != 1 {
		t.Fatalf("tags not restored: cells=%v machines=%v", restored.Cells, restored.Machines)
	}

	// Ledger entry is consumed by the restore.
	if _, err := env.catalog.Undo(ctx, tool.ID); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found on second undo, got %v", err)
	}
}

func TestUndoConflictsWhenCodeReclaimed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	original := registerSupply(t, env, "INS-1", "Carbide Insert")
	if err := env.catalog.SoftDelete(ctx, original.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	registerSupply(t, env, "ins-1", "Replacement Insert")

	if _, err := env.catalog.Undo(ctx, original.ID); !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestListSuppliesAndList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	s := registerSupply(t, env, "INS-1", "Carbide Insert")
	if _, err := env.catalog.Register(ctx, CatalogItemInput{
		Kind:         types.ItemKindTool,
		InternalCode: "T-10",
		Name:         "Face Mill",
		Composition:  []CompositionInput{{SupplyID: s.ID, Quantity: 1}},
	}); err != nil {
		t.Fatalf("register tool: %v", err)
	}

	supplies, err := env.catalog.ListSupplies(ctx)
	if err != nil {
		t.Fatalf("list supplies: %v", err)
	}
	if len(supplies) != 1 || supplies[0].Kind != types.ItemKindSupply {
		t.Fatalf("unexpected supplies: %+v", supplies)
	}

	all, err := env.catalog.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 items, got %d", len(all))
	}
	// Ordered by name.
	if all[0].Name != "Carbide Insert" || all[1].Name != "Face Mill" {
		t.Fatalf("unexpected order: %s, %s", all[0].Name, all[1].Name)
	}
}
