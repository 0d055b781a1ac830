package label

import (
	"errors"
	"testing"

	"github.com/ncoquelet/RobinWood/event"
	"github.com/ncoquelet/RobinWood/identity"
)

func addr(b byte) identity.Address {
	var a identity.Address
	a[0] = b
	return a
}

var (
	authority = addr(0xaa)
	cert1     = addr(1)
	cert2     = addr(2)
)

func applyAll(t *testing.T, r *Registry, events []event.Event) {
	t.Helper()
	for _, ev := range events {
		if err := r.Apply(ev); err != nil {
			t.Fatalf("Apply(%s): %v", ev.Kind, err)
		}
	}
}

func submit(t *testing.T, r *Registry, caller identity.Address, uri string) uint64 {
	t.Helper()
	id, events, err := r.Submit(caller, uri)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	applyAll(t, r, events)
	return id
}

func TestSubmitAssignsSequentialIDs(t *testing.T) {
	r := NewRegistry(authority)

	if id := submit(t, r, cert1, "new label"); id != 0 {
		t.Fatalf("first label id = %d, want 0", id)
	}
	if id := submit(t, r, cert2, "second label"); id != 1 {
		t.Fatalf("second label id = %d, want 1", id)
	}

	owner, err := r.OwnerOf(0)
	if err != nil {
		t.Fatalf("OwnerOf(0): %v", err)
	}
	if owner != cert1 {
		t.Fatalf("OwnerOf(0) = %s, want %s", owner, cert1)
	}
	if owner, _ := r.OwnerOf(1); owner != cert2 {
		t.Fatalf("OwnerOf(1) = %s, want %s", owner, cert2)
	}
}

func TestSubmitEmitsSubmissionAndInitialDisallow(t *testing.T) {
	r := NewRegistry(authority)
	_, events, err := r.Submit(cert1, "new label")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("Submit emitted %d events, want 2", len(events))
	}
	if events[0].Kind != event.KindLabelSubmitted || events[1].Kind != event.KindLabelAllowed {
		t.Fatalf("event kinds = %s, %s", events[0].Kind, events[1].Kind)
	}
	var allowed event.LabelAllowed
	if err := events[1].Decode(&allowed); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if allowed.Allowed {
		t.Fatalf("new label must start disallowed")
	}
	applyAll(t, r, events)
	if r.IsAllowed(0) {
		t.Fatalf("IsAllowed(0) = true for fresh label")
	}
}

func TestAllowAuthorityOnly(t *testing.T) {
	r := NewRegistry(authority)
	submit(t, r, cert1, "new label")

	_, err := r.Allow(cert1, 0, true)
	var unauthorized *UnauthorizedError
	if !errors.As(err, &unauthorized) {
		t.Fatalf("Allow by certifier: %v, want UnauthorizedError", err)
	}
	if unauthorized.Caller != cert1 {
		t.Fatalf("UnauthorizedError.Caller = %s", unauthorized.Caller)
	}

	events, err := r.Allow(authority, 0, true)
	if err != nil {
		t.Fatalf("Allow by authority: %v", err)
	}
	applyAll(t, r, events)
	if !r.IsAllowed(0) {
		t.Fatalf("label not allowed after Allow")
	}
}

func TestAllowUnknownLabel(t *testing.T) {
	r := NewRegistry(authority)
	_, err := r.Allow(authority, 999, true)
	var unknown *UnknownLabelError
	if !errors.As(err, &unknown) {
		t.Fatalf("Allow(999): %v, want UnknownLabelError", err)
	}
	if unknown.LabelID != 999 {
		t.Fatalf("UnknownLabelError.LabelID = %d", unknown.LabelID)
	}
}

func TestAllowAlwaysEmits(t *testing.T) {
	// Unlike certification, allow/disallow is not deduplicated: repeating the
	// same value still emits.
	r := NewRegistry(authority)
	submit(t, r, cert1, "new label")

	for i := 0; i < 2; i++ {
		events, err := r.Allow(authority, 0, true)
		if err != nil {
			t.Fatalf("Allow #%d: %v", i, err)
		}
		if len(events) != 1 || events[0].Kind != event.KindLabelAllowed {
			t.Fatalf("Allow #%d events = %+v", i, events)
		}
		applyAll(t, r, events)
	}

	events, err := r.Allow(authority, 0, false)
	if err != nil {
		t.Fatalf("disallow: %v", err)
	}
	applyAll(t, r, events)
	if r.IsAllowed(0) {
		t.Fatalf("label still allowed after disallow")
	}
}

func TestIsAllowedFor(t *testing.T) {
	r := NewRegistry(authority)
	submit(t, r, cert1, "new label")
	events, _ := r.Allow(authority, 0, true)
	applyAll(t, r, events)

	if !r.IsAllowedFor(0, cert1) {
		t.Fatalf("IsAllowedFor(0, owner) = false")
	}
	if r.IsAllowedFor(0, cert2) {
		t.Fatalf("IsAllowedFor(0, non-owner) = true")
	}
	if r.IsAllowedFor(999, cert1) {
		t.Fatalf("IsAllowedFor(unknown) = true")
	}
}

func TestUnknownLabelIsDisallowed(t *testing.T) {
	r := NewRegistry(authority)
	if r.IsAllowed(999) {
		t.Fatalf("IsAllowed(unknown) = true")
	}
}

func TestLabelsAreNotTransferable(t *testing.T) {
	r := NewRegistry(authority)
	submit(t, r, cert1, "new label")

	err := r.Transfer(cert1, cert2, 0)
	var notTransferable *NotTransferableError
	if !errors.As(err, &notTransferable) {
		t.Fatalf("Transfer: %v, want NotTransferableError", err)
	}
	if notTransferable.Caller != cert1 {
		t.Fatalf("NotTransferableError.Caller = %s", notTransferable.Caller)
	}
}

func TestURI(t *testing.T) {
	r := NewRegistry(authority)
	submit(t, r, cert1, "ipfs://bafy.../label.json")
	uri, err := r.URI(0)
	if err != nil {
		t.Fatalf("URI: %v", err)
	}
	if uri != "ipfs://bafy.../label.json" {
		t.Fatalf("URI = %q", uri)
	}
	if _, err := r.URI(1); err == nil {
		t.Fatalf("URI of unknown label succeeded")
	}
}
