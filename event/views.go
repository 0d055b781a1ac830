package event

import (
	"sort"

	"github.com/ncoquelet/RobinWood/identity"
)

// Derived views. Each Fold* rebuilds a read model from scratch by replaying
// the stream in order; this is the contract UI-style consumers rely on
// instead of polling ledger state.

// LabelView is the replayed state of one label.
type LabelView struct {
	LabelID uint64
	Owner   identity.Address
	URI     string
	Allowed bool
}

// FoldLabels rebuilds the label table, ordered by id.
func FoldLabels(events []Event) ([]LabelView, error) {
	byID := make(map[uint64]*LabelView)
	for _, ev := range events {
		switch ev.Kind {
		case KindLabelSubmitted:
			var p LabelSubmitted
			if err := ev.Decode(&p); err != nil {
				return nil, err
			}
			byID[p.LabelID] = &LabelView{LabelID: p.LabelID, Owner: p.Certifier, URI: p.URI}
		case KindLabelAllowed:
			var p LabelAllowed
			if err := ev.Decode(&p); err != nil {
				return nil, err
			}
			if v, ok := byID[p.LabelID]; ok {
				v.Allowed = p.Allowed
			}
		}
	}
	out := make([]LabelView, 0, len(byID))
	for _, v := range byID {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LabelID < out[j].LabelID })
	return out, nil
}

// ProvenanceNode is one item in a replayed provenance tree. Parents are
// fully expanded: the tree reaches from any item back to its label roots.
type ProvenanceNode struct {
	ItemID    uint64
	URI       string
	Owner     identity.Address
	Destroyed bool
	// LabelID is set for label-rooted items.
	LabelID *uint64
	Parents []*ProvenanceNode
}

// FoldProvenance rebuilds the provenance DAG and returns the node for itemID.
// Destroyed ancestors remain present: destruction is terminal state, not
// erasure of history.
func FoldProvenance(events []Event, itemID uint64) (*ProvenanceNode, error) {
	nodes := make(map[uint64]*ProvenanceNode)
	node := func(id uint64) *ProvenanceNode {
		n, ok := nodes[id]
		if !ok {
			n = &ProvenanceNode{ItemID: id}
			nodes[id] = n
		}
		return n
	}
	for _, ev := range events {
		switch ev.Kind {
		case KindMintedWithLabel:
			var p MintedWithLabel
			if err := ev.Decode(&p); err != nil {
				return nil, err
			}
			n := node(p.ItemID)
			n.URI = p.URI
			n.Owner = p.Minter
			labelID := p.LabelID
			n.LabelID = &labelID
		case KindMinted:
			var p Minted
			if err := ev.Decode(&p); err != nil {
				return nil, err
			}
			n := node(p.ItemID)
			n.URI = p.URI
			n.Owner = p.Owner
			for _, parent := range p.ParentIDs {
				n.Parents = append(n.Parents, node(parent))
			}
		case KindDestroyed:
			var p Destroyed
			if err := ev.Decode(&p); err != nil {
				return nil, err
			}
			node(p.ItemID).Destroyed = true
		case KindTransferred:
			var p Transferred
			if err := ev.Decode(&p); err != nil {
				return nil, err
			}
			node(p.ItemID).Owner = p.To
		case KindTransport:
			var p Transport
			if err := ev.Decode(&p); err != nil {
				return nil, err
			}
			if p.Status == TransportValidated {
				node(p.ItemID).Owner = p.Recipient
			}
		}
	}
	n, ok := nodes[itemID]
	if !ok {
		return nil, nil
	}
	return n, nil
}

// TransportView is the latest mandate state for one (item, transporter) pair.
type TransportView struct {
	ItemID      uint64
	Principal   identity.Address
	Transporter identity.Address
	Recipient   identity.Address
	Status      TransportStatus
}

type transportKey struct {
	itemID      uint64
	transporter identity.Address
}

// FoldTransports rebuilds the latest transport status per (item, transporter).
func FoldTransports(events []Event) (map[uint64][]TransportView, error) {
	latest := make(map[transportKey]*TransportView)
	for _, ev := range events {
		if ev.Kind != KindTransport {
			continue
		}
		var p Transport
		if err := ev.Decode(&p); err != nil {
			return nil, err
		}
		key := transportKey{itemID: p.ItemID, transporter: p.Transporter}
		latest[key] = &TransportView{
			ItemID:      p.ItemID,
			Principal:   p.Owner,
			Transporter: p.Transporter,
			Recipient:   p.Recipient,
			Status:      p.Status,
		}
	}
	out := make(map[uint64][]TransportView)
	for _, v := range latest {
		out[v.ItemID] = append(out[v.ItemID], *v)
	}
	for _, views := range out {
		sort.Slice(views, func(i, j int) bool {
			return views[i].Transporter.String() < views[j].Transporter.String()
		})
	}
	return out, nil
}
