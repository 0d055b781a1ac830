package merchandise

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
	prod1 = addr(1)
	prod2 = addr(2)
)

// gate marks (producer, label) pairs as certified.
type gate map[identity.Address]map[uint64]bool

func (g gate) IsCertified(producer identity.Address, labelID uint64) bool {
	return g[producer][labelID]
}

// rejectAll is the verifier for tests that never reach signature checks.
type rejectAll struct{}

func (rejectAll) Verify(identity.Address, []byte, []byte) error {
	return errors.New("no signature is valid here")
}

func applyAll(t *testing.T, r *Registry, events []event.Event) {
	t.Helper()
	for _, ev := range events {
		if err := r.Apply(ev); err != nil {
			t.Fatalf("Apply(%s): %v", ev.Kind, err)
		}
	}
}

// fixture returns a registry where prod1 is certified for label 0 and owns
// item 0 ("New Tree") minted from it.
func fixture(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry(gate{prod1: {0: true}}, rejectAll{})
	id, events, err := r.MintWithLabel(prod1, "New Tree", 0)
	if err != nil {
		t.Fatalf("MintWithLabel: %v", err)
	}
	if id != 0 {
		t.Fatalf("first item id = %d, want 0", id)
	}
	applyAll(t, r, events)
	return r
}

func TestMintWithLabel(t *testing.T) {
	r := fixture(t)

	owner, err := r.OwnerOf(0)
	if err != nil {
		t.Fatalf("OwnerOf: %v", err)
	}
	if owner != prod1 {
		t.Fatalf("OwnerOf(0) = %s, want %s", owner, prod1)
	}
	uri, err := r.URI(0)
	if err != nil {
		t.Fatalf("URI: %v", err)
	}
	if uri != "New Tree" {
		t.Fatalf("URI = %q", uri)
	}
	parents, err := r.ParentsOf(0)
	if err != nil {
		t.Fatalf("ParentsOf: %v", err)
	}
	if len(parents) != 0 {
		t.Fatalf("ParentsOf(label-rooted) = %v, want empty", parents)
	}
}

func TestMintWithLabelRequiresCertification(t *testing.T) {
	r := NewRegistry(gate{}, rejectAll{})
	_, _, err := r.MintWithLabel(prod1, "New Tree", 0)
	var notCertified *NotCertifiedError
	if !errors.As(err, &notCertified) {
		t.Fatalf("MintWithLabel uncertified: %v, want NotCertifiedError", err)
	}
	if notCertified.Caller != prod1 || notCertified.LabelID != 0 {
		t.Fatalf("NotCertifiedError = %+v", notCertified)
	}
}

func TestMintWithParent(t *testing.T) {
	r := fixture(t)

	id, events, err := r.MintWithParent(prod1, "New Board", 0)
	if err != nil {
		t.Fatalf("MintWithParent: %v", err)
	}
	if id != 1 {
		t.Fatalf("child id = %d, want 1", id)
	}
	// One mint event plus one destruction for the parent.
	if len(events) != 2 || events[0].Kind != event.KindMinted || events[1].Kind != event.KindDestroyed {
		t.Fatalf("events = %+v", events)
	}
	applyAll(t, r, events)

	owner, err := r.OwnerOf(1)
	if err != nil {
		t.Fatalf("OwnerOf(1): %v", err)
	}
	if owner != prod1 {
		t.Fatalf("OwnerOf(1) = %s", owner)
	}
	parents, err := r.ParentsOf(1)
	if err != nil {
		t.Fatalf("ParentsOf(1): %v", err)
	}
	if len(parents) != 1 || parents[0] != 0 {
		t.Fatalf("ParentsOf(1) = %v, want [0]", parents)
	}
}

func TestParentIsDestroyedOnMint(t *testing.T) {
	r := fixture(t)
	_, events, err := r.MintWithParent(prod1, "New Board", 0)
	if err != nil {
		t.Fatalf("MintWithParent: %v", err)
	}
	applyAll(t, r, events)

	_, err = r.OwnerOf(0)
	var nonexistent *NonexistentTokenError
	if !errors.As(err, &nonexistent) {
		t.Fatalf("OwnerOf(destroyed) = %v, want NonexistentTokenError", err)
	}

	// The destroyed parent cannot be consumed again.
	if _, _, err := r.MintWithParent(prod1, "Another Board", 0); !errors.As(err, &nonexistent) {
		t.Fatalf("reuse of destroyed parent: %v, want NonexistentTokenError", err)
	}

	// History stays queryable.
	if _, err := r.URI(0); err != nil {
		t.Fatalf("URI of destroyed item: %v", err)
	}
	if _, err := r.ParentsOf(0); err != nil {
		t.Fatalf("ParentsOf of destroyed item: %v", err)
	}
}

func TestMintBatchWithParent(t *testing.T) {
	r := fixture(t)

	ids, events, err := r.MintBatchWithParent(prod1, []string{"New Board", "New Board 2"}, 0)
	if err != nil {
		t.Fatalf("MintBatchWithParent: %v", err)
	}
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Fatalf("ids = %v, want [1 2]", ids)
	}
	// Two mints then exactly one destruction of the shared parent.
	if len(events) != 3 {
		t.Fatalf("events = %d, want 3", len(events))
	}
	if events[0].Kind != event.KindMinted || events[1].Kind != event.KindMinted || events[2].Kind != event.KindDestroyed {
		t.Fatalf("event kinds = %s %s %s", events[0].Kind, events[1].Kind, events[2].Kind)
	}
	applyAll(t, r, events)

	for _, id := range ids {
		parents, err := r.ParentsOf(id)
		if err != nil {
			t.Fatalf("ParentsOf(%d): %v", id, err)
		}
		if len(parents) != 1 || parents[0] != 0 {
			t.Fatalf("ParentsOf(%d) = %v, want [0]", id, parents)
		}
	}
	if _, err := r.OwnerOf(0); err == nil {
		t.Fatalf("shared parent still owned after batch mint")
	}
}

func TestMintWithParentsConsumesAll(t *testing.T) {
	r := fixture(t)
	ids, events, err := r.MintBatchWithParent(prod1, []string{"New Board", "New Board 2"}, 0)
	if err != nil {
		t.Fatalf("MintBatchWithParent: %v", err)
	}
	applyAll(t, r, events)

	tableID, events, err := r.MintWithParents(prod1, "New Table", ids)
	if err != nil {
		t.Fatalf("MintWithParents: %v", err)
	}
	applyAll(t, r, events)

	parents, err := r.ParentsOf(tableID)
	if err != nil {
		t.Fatalf("ParentsOf: %v", err)
	}
	if len(parents) != 2 || parents[0] != ids[0] || parents[1] != ids[1] {
		t.Fatalf("ParentsOf(table) = %v, want %v", parents, ids)
	}
	for _, id := range ids {
		if _, err := r.OwnerOf(id); err == nil {
			t.Fatalf("parent %d survived MintWithParents", id)
		}
	}
	if owner, _ := r.OwnerOf(tableID); owner != prod1 {
		t.Fatalf("table owner = %s", owner)
	}
}

func TestMintWithParentsIsAllOrNothing(t *testing.T) {
	r := fixture(t)
	// prod2 owns nothing; item 99 does not exist. Either way nothing must be
	// minted or destroyed.
	_, _, err := r.MintWithParents(prod2, "Table", []uint64{0})
	var notOwner *NotOwnerError
	if !errors.As(err, &notOwner) {
		t.Fatalf("MintWithParents by non-owner: %v, want NotOwnerError", err)
	}
	if notOwner.Caller != prod2 || notOwner.ItemID != 0 {
		t.Fatalf("NotOwnerError = %+v", notOwner)
	}

	if _, _, err := r.MintWithParents(prod1, "Table", []uint64{0, 99}); err == nil {
		t.Fatalf("MintWithParents with missing parent succeeded")
	}
	// Parent 0 must be untouched by the failed attempt.
	if owner, err := r.OwnerOf(0); err != nil || owner != prod1 {
		t.Fatalf("parent mutated by failed mint: owner=%v err=%v", owner, err)
	}
	if r.Count() != 1 {
		t.Fatalf("item minted by failed attempt: count=%d", r.Count())
	}
}

func TestMintWithParentsRejectsDuplicates(t *testing.T) {
	r := fixture(t)
	_, _, err := r.MintWithParents(prod1, "Table", []uint64{0, 0})
	var nonexistent *NonexistentTokenError
	if !errors.As(err, &nonexistent) {
		t.Fatalf("duplicate parent: %v, want NonexistentTokenError", err)
	}
}

func TestMintWithParentsRequiresParents(t *testing.T) {
	r := fixture(t)
	if _, _, err := r.MintWithParents(prod1, "Table", nil); !errors.Is(err, ErrNoParents) {
		t.Fatalf("empty parents: %v, want ErrNoParents", err)
	}
	if _, _, err := r.MintBatchWithParent(prod1, nil, 0); !errors.Is(err, ErrNoURIs) {
		t.Fatalf("empty uris: %v, want ErrNoURIs", err)
	}
}

func TestDirectTransfer(t *testing.T) {
	r := fixture(t)
	events, err := r.Transfer(prod1, prod2, 0)
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	applyAll(t, r, events)
	if owner, _ := r.OwnerOf(0); owner != prod2 {
		t.Fatalf("owner after transfer = %s, want %s", owner, prod2)
	}
}

func TestDirectTransferGuards(t *testing.T) {
	r := fixture(t)

	if _, err := r.Transfer(prod2, prod1, 0); err == nil {
		t.Fatalf("transfer by non-owner succeeded")
	}
	var invalidRecipient *InvalidRecipientError
	if _, err := r.Transfer(prod1, identity.Zero, 0); !errors.As(err, &invalidRecipient) {
		t.Fatalf("transfer to zero: %v, want InvalidRecipientError", err)
	}
	if _, err := r.Transfer(prod1, prod1, 0); !errors.As(err, &invalidRecipient) {
		t.Fatalf("transfer to self: %v, want InvalidRecipientError", err)
	}
	var nonexistent *NonexistentTokenError
	if _, err := r.Transfer(prod1, prod2, 42); !errors.As(err, &nonexistent) {
		t.Fatalf("transfer of unknown item: %v, want NonexistentTokenError", err)
	}
}
