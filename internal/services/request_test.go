package services

import (
	"context"
	"testing"
	"time"

	"github.com/tooltag/tooltag-backend/internal/apperr"
	"github.com/tooltag/tooltag-backend/internal/types"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func submitRequest(t *testing.T, env *testEnv, itemID uint) *types.RequestWithItem {
	t.Helper()
	row, err := env.requests.Submit(context.Background(), SubmitRequestInput{
		ItemID:        itemID,
		RequesterName: "Paulo",
		Operator:      "Paulo",
		Machine:       "DMG-60",
		Quantity:      2,
		Urgency:       "high",
	})
	if err != nil {
		t.Fatalf("submit request: %v", err)
	}
	return row
}

func TestSubmitValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := registerSupply(t, env, "INS-1", "Carbide Insert")

	cases := []struct {
		name string
		in   SubmitRequestInput
		kind apperr.Kind
	}{
		{"missing item", SubmitRequestInput{RequesterName: "Paulo", Quantity: 1}, apperr.KindValidation},
		{"missing requester", SubmitRequestInput{ItemID: item.ID, Quantity: 1}, apperr.KindValidation},
		{"zero quantity", SubmitRequestInput{ItemID: item.ID, RequesterName: "Paulo"}, apperr.KindValidation},
		{"unknown item", SubmitRequestInput{ItemID: 9999, RequesterName: "Paulo", Quantity: 1}, apperr.KindNotFound},
	}
	for _, tc := range cases {
		if _, err := env.requests.Submit(ctx, tc.in); !apperr.IsKind(err, tc.kind) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.kind, err)
		}
	}
	if env.notifier.count() != 0 {
		t.Fatalf("rejected submits must not notify, got %d notifications", env.notifier.count())
	}
}

func TestSubmitNotifiesOnce(t *testing.T) {
	env := newTestEnv(t)
	item := registerSupply(t, env, "INS-1", "Carbide Insert")

	row := submitRequest(t, env, item.ID)
	if row.Status != string(types.RequestPending) {
		t.Fatalf("new request status = %s", row.Status)
	}
	if row.InternalCode != "INS-1" || row.ItemName != "Carbide Insert" {
		t.Fatalf("joined fields missing: %+v", row)
	}
	if env.notifier.count() != 1 {
		t.Fatalf("expected exactly one notification, got %d", env.notifier.count())
	}
}

func TestFulfillSetsTimestampOnTransitionOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := registerSupply(t, env, "INS-1", "Carbide Insert")
	row := submitRequest(t, env, item.ID)

	first, err := env.requests.Fulfill(ctx, row.ID, FulfillInput{
		Status:      "atendido",
		NoPhotos:    true,
		FulfilledBy: "Marcos",
	})
	if err != nil {
		t.Fatalf("fulfill: %v", err)
	}
	if first.Status != string(types.RequestFulfilled) {
		t.Fatalf("status = %s", first.Status)
	}
	if first.FulfilledAt == nil {
		t.Fatal("fulfillment timestamp not set")
	}
	if first.FulfilledBy != "Marcos" {
		t.Fatalf("fulfilled by = %s", first.FulfilledBy)
	}
	stamp := *first.FulfilledAt

	time.Sleep(10 * time.Millisecond)
	second, err := env.requests.Fulfill(ctx, row.ID, FulfillInput{Status: "fulfilled", NoPhotos: true})
	if err != nil {
		t.Fatalf("second fulfill: %v", err)
	}
	if second.FulfilledAt == nil || !second.FulfilledAt.Equal(stamp) {
		t.Fatalf("timestamp changed on repeat fulfill: %v -> %v", stamp, second.FulfilledAt)
	}
	if second.FulfilledBy != "Marcos" {
		t.Fatalf("empty fulfilled_by overwrote existing value: %s", second.FulfilledBy)
	}
}

func TestFulfillUnknownStatusRejected(t *testing.T) {
	env := newTestEnv(t)
	item := registerSupply(t, env, "INS-1", "Carbide Insert")
	row := submitRequest(t, env, item.ID)

	_, err := env.requests.Fulfill(context.Background(), row.ID, FulfillInput{Status: "sideways"})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFulfillAccumulatesPhotosWithoutDuplicates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := registerSupply(t, env, "INS-1", "Carbide Insert")
	row := submitRequest(t, env, item.ID)

	first, err := env.requests.Fulfill(ctx, row.ID, FulfillInput{
		Status: "atendido",
		Photos: []PhotoUpload{{Filename: "before.png", Data: pngBytes}},
	})
	if err != nil {
		t.Fatalf("first fulfill: %v", err)
	}
	firstPhotos := first.PhotoList()
	if len(firstPhotos) != 1 {
		t.Fatalf("expected 1 photo, got %v", firstPhotos)
	}

	second, err := env.requests.Fulfill(ctx, row.ID, FulfillInput{
		Status: "atendido",
		Photos: []PhotoUpload{{Filename: "after.png", Data: pngBytes}},
	})
	if err != nil {
		t.Fatalf("second fulfill: %v", err)
	}
	secondPhotos := second.PhotoList()
	if len(secondPhotos) != 2 {
		t.Fatalf("expected 2 photos, got %v", secondPhotos)
	}
	if secondPhotos[0] != firstPhotos[0] {
		t.Fatalf("existing photos must keep their position: %v", secondPhotos)
	}
}

func TestFulfillCorrectedCodeOnlyOverwritesNonEmpty(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := registerSupply(t, env, "INS-1", "Carbide Insert")
	row := submitRequest(t, env, item.ID)

	updated, err := env.requests.Fulfill(ctx, row.ID, FulfillInput{
		Status:        "atendido",
		NoPhotos:      true,
		CorrectedCode: "INS-1B",
	})
	if err != nil {
		t.Fatalf("fulfill: %v", err)
	}
	if updated.InternalCode != "INS-1B" {
		t.Fatalf("corrected code not applied: %s", updated.InternalCode)
	}

	again, err := env.requests.Fulfill(ctx, row.ID, FulfillInput{Status: "atendido", NoPhotos: true})
	if err != nil {
		t.Fatalf("second fulfill: %v", err)
	}
	if again.InternalCode != "INS-1B" {
		t.Fatalf("empty corrected code erased value: %s", again.InternalCode)
	}
}

func TestReopenClearsFulfillment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := registerSupply(t, env, "INS-1", "Carbide Insert")
	row := submitRequest(t, env, item.ID)

	if _, err := env.requests.Fulfill(ctx, row.ID, FulfillInput{Status: "atendido", NoPhotos: true}); err != nil {
		t.Fatalf("fulfill: %v", err)
	}
	reopened, err := env.requests.Reopen(ctx, row.ID)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.Status != string(types.RequestPending) {
		t.Fatalf("status = %s", reopened.Status)
	}
	if reopened.FulfilledAt != nil {
		t.Fatal("fulfillment timestamp not cleared")
	}
}

func TestRemovePhoto(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := registerSupply(t, env, "INS-1", "Carbide Insert")
	row := submitRequest(t, env, item.ID)

	fulfilled, err := env.requests.Fulfill(ctx, row.ID, FulfillInput{
		Status: "atendido",
		Photos: []PhotoUpload{{Filename: "proof.png", Data: pngBytes}},
	})
	if err != nil {
		t.Fatalf("fulfill: %v", err)
	}
	name := fulfilled.PhotoList()[0]

	after, err := env.requests.RemovePhoto(ctx, row.ID, name)
	if err != nil {
		t.Fatalf("remove photo: %v", err)
	}
	if len(after.PhotoList()) != 0 {
		t.Fatalf("photo still listed: %v", after.PhotoList())
	}

	// Removing an absent photo is a no-op.
	if _, err := env.requests.RemovePhoto(ctx, row.ID, "missing.png"); err != nil {
		t.Fatalf("remove absent photo: %v", err)
	}
}

func TestListPendingOnlyByDefault(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := registerSupply(t, env, "INS-1", "Carbide Insert")

	a := submitRequest(t, env, item.ID)
	submitRequest(t, env, item.ID)
	if _, err := env.requests.Fulfill(ctx, a.ID, FulfillInput{Status: "atendido", NoPhotos: true}); err != nil {
		t.Fatalf("fulfill: %v", err)
	}

	pending, err := env.requests.List(ctx, false)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending request, got %d", len(pending))
	}

	all, err := env.requests.List(ctx, true)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(all))
	}
}

func TestDeleteRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := registerSupply(t, env, "INS-1", "Carbide Insert")
	row := submitRequest(t, env, item.ID)

	if err := env.requests.Delete(ctx, row.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := env.requests.Get(ctx, row.ID); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := env.requests.Delete(ctx, row.ID); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}
