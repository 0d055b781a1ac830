package certification

import (
	"errors"
	"testing"

	"github.com/ncoquelet/RobinWood/event"
	"github.com/ncoquelet/RobinWood/identity"
	"github.com/ncoquelet/RobinWood/label"
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
	prod1     = addr(3)
	prod2     = addr(4)
)

// fixture returns a certification ledger over one allowed label (id 0) owned
// by cert1.
func fixture(t *testing.T) (*label.Registry, *Ledger) {
	t.Helper()
	labels := label.NewRegistry(authority)
	certs := NewLedger(labels)

	_, events, err := labels.Submit(cert1, "new label")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	for _, ev := range events {
		if err := labels.Apply(ev); err != nil {
			t.Fatalf("Apply: %v", err)
		}
	}
	events, err = labels.Allow(authority, 0, true)
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	for _, ev := range events {
		if err := labels.Apply(ev); err != nil {
			t.Fatalf("Apply: %v", err)
		}
	}
	return labels, certs
}

func certify(t *testing.T, certs *Ledger, caller, producer identity.Address, labelID uint64) []event.Event {
	t.Helper()
	events, err := certs.Certify(caller, producer, labelID)
	if err != nil {
		t.Fatalf("Certify: %v", err)
	}
	for _, ev := range events {
		if err := certs.Apply(ev); err != nil {
			t.Fatalf("Apply: %v", err)
		}
	}
	return events
}

func TestCertifyRequiresLabelOwnership(t *testing.T) {
	_, certs := fixture(t)

	_, err := certs.Certify(cert2, prod1, 0)
	var notAllowed *NotAllowedLabelError
	if !errors.As(err, &notAllowed) {
		t.Fatalf("Certify by non-owner: %v, want NotAllowedLabelError", err)
	}
}

func TestCertifyRequiresAllowedLabel(t *testing.T) {
	labels := label.NewRegistry(authority)
	certs := NewLedger(labels)
	_, events, _ := labels.Submit(cert1, "pending label")
	for _, ev := range events {
		if err := labels.Apply(ev); err != nil {
			t.Fatalf("Apply: %v", err)
		}
	}

	_, err := certs.Certify(cert1, prod1, 0)
	var notAllowed *NotAllowedLabelError
	if !errors.As(err, &notAllowed) {
		t.Fatalf("Certify on disallowed label: %v, want NotAllowedLabelError", err)
	}
}

func TestCertifyProducer(t *testing.T) {
	_, certs := fixture(t)

	events := certify(t, certs, cert1, prod1, 0)
	if len(events) != 1 || events[0].Kind != event.KindCertified {
		t.Fatalf("events = %+v", events)
	}
	var p event.Certified
	if err := events[0].Decode(&p); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if p.Producer != prod1 || p.LabelID != 0 || !p.Certified {
		t.Fatalf("Certified payload = %+v", p)
	}

	if !certs.IsCertified(prod1, 0) {
		t.Fatalf("IsCertified = false after certify")
	}
	if certs.BalanceOf(prod1, 0) != 1 {
		t.Fatalf("BalanceOf = %d, want 1", certs.BalanceOf(prod1, 0))
	}
}

func TestCertifyIsIdempotent(t *testing.T) {
	_, certs := fixture(t)
	certify(t, certs, cert1, prod1, 0)

	events, err := certs.Certify(cert1, prod1, 0)
	if err != nil {
		t.Fatalf("second Certify: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("second Certify emitted %d events, want none", len(events))
	}
	if certs.BalanceOf(prod1, 0) != 1 {
		t.Fatalf("BalanceOf = %d, want 1", certs.BalanceOf(prod1, 0))
	}
}

func TestUncertifiedProducer(t *testing.T) {
	_, certs := fixture(t)
	if certs.IsCertified(prod1, 0) {
		t.Fatalf("IsCertified = true for uncertified producer")
	}
	if certs.BalanceOf(prod1, 0) != 0 {
		t.Fatalf("BalanceOf = %d, want 0", certs.BalanceOf(prod1, 0))
	}
}

func TestRevoke(t *testing.T) {
	_, certs := fixture(t)
	certify(t, certs, cert1, prod1, 0)

	events, err := certs.Revoke(cert1, prod1, 0)
	if err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Revoke emitted %d events, want 1", len(events))
	}
	var p event.Certified
	if err := events[0].Decode(&p); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if p.Certified {
		t.Fatalf("revoke event still reports certified")
	}
	for _, ev := range events {
		if err := certs.Apply(ev); err != nil {
			t.Fatalf("Apply: %v", err)
		}
	}
	if certs.IsCertified(prod1, 0) {
		t.Fatalf("still certified after revoke")
	}
}

func TestRevokeUncertifiedIsSilent(t *testing.T) {
	_, certs := fixture(t)
	events, err := certs.Revoke(cert1, prod1, 0)
	if err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("Revoke of uncertified producer emitted %d events", len(events))
	}
}

func TestRevokeDoesNotRecheckAllowed(t *testing.T) {
	// Deliberate asymmetry with Certify: the certifier can still revoke after
	// the authority disallowed the label.
	labels, certs := fixture(t)
	certify(t, certs, cert1, prod1, 0)

	events, err := labels.Allow(authority, 0, false)
	if err != nil {
		t.Fatalf("Allow(false): %v", err)
	}
	for _, ev := range events {
		if err := labels.Apply(ev); err != nil {
			t.Fatalf("Apply: %v", err)
		}
	}

	revoked, err := certs.Revoke(cert1, prod1, 0)
	if err != nil {
		t.Fatalf("Revoke on disallowed label: %v", err)
	}
	if len(revoked) != 1 {
		t.Fatalf("Revoke emitted %d events, want 1", len(revoked))
	}

	// Certify on the same disallowed label must still fail.
	if _, err := certs.Certify(cert1, prod2, 0); err == nil {
		t.Fatalf("Certify on disallowed label succeeded")
	}
}

func TestRevokeRequiresLabelOwnership(t *testing.T) {
	_, certs := fixture(t)
	certify(t, certs, cert1, prod1, 0)

	_, err := certs.Revoke(cert2, prod1, 0)
	var notAllowed *NotAllowedLabelError
	if !errors.As(err, &notAllowed) {
		t.Fatalf("Revoke by non-owner: %v, want NotAllowedLabelError", err)
	}
}

func TestCertificationsAreNotTransferable(t *testing.T) {
	_, certs := fixture(t)
	certify(t, certs, cert1, prod1, 0)

	err := certs.Transfer(prod1, prod2, 0)
	var notTransferable *NotTransferableError
	if !errors.As(err, &notTransferable) {
		t.Fatalf("Transfer: %v, want NotTransferableError", err)
	}
	if notTransferable.Caller != prod1 {
		t.Fatalf("NotTransferableError.Caller = %s", notTransferable.Caller)
	}
}
