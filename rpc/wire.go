// Package rpc exposes the ledger over gRPC.
//
// The service has two unary entry points, Apply for mutations and Query for
// reads, both carrying a JSON envelope inside a protobuf BytesValue, plus an
// Events stream that replays the committed log and then tails live commits.
package rpc

import (
	"github.com/ncoquelet/RobinWood/identity"
)

// Mutation ops accepted by Apply.
const (
	OpSubmitLabel           = "submitLabel"
	OpAllowLabel            = "allowLabel"
	OpTransferLabel         = "transferLabel"
	OpCertify               = "certify"
	OpRevoke                = "revoke"
	OpTransferCertification = "transferCertification"
	OpMintWithLabel         = "mintWithLabel"
	OpMintWithParents       = "mintWithParents"
	OpMintBatchWithParent   = "mintBatchWithParent"
	OpTransferItem          = "transferItem"
	OpMandateTransport      = "mandateTransport"
	OpAcceptTransport       = "acceptTransport"
	OpValidateTransport     = "validateTransport"
)

// Read ops accepted by Query.
const (
	QueryAuthority            = "authority"
	QueryLabelOwnerOf         = "labelOwnerOf"
	QueryLabelURI             = "labelURI"
	QueryIsAllowed            = "isAllowed"
	QueryIsAllowedFor         = "isAllowedFor"
	QueryLabelCount           = "labelCount"
	QueryIsCertified          = "isCertified"
	QueryCertificationBalance = "certificationBalance"
	QueryOwnerOf              = "ownerOf"
	QueryParentsOf            = "parentsOf"
	QueryItemURI              = "itemURI"
	QueryItemCount            = "itemCount"
	QueryIsMandate            = "isMandate"
	QueryIsMandateAccepted    = "isMandateAccepted"
	QueryIsTransportValidated = "isTransportValidated"
)

// Command is the Apply envelope. Op selects the operation; the other fields
// are read per-op and ignored otherwise.
type Command struct {
	Op     string           `json:"op"`
	Caller identity.Address `json:"caller"`

	To          identity.Address `json:"to,omitempty"`
	Producer    identity.Address `json:"producer,omitempty"`
	Transporter identity.Address `json:"transporter,omitempty"`
	Recipient   identity.Address `json:"recipient,omitempty"`

	LabelID   uint64   `json:"labelId,omitempty"`
	ItemID    uint64   `json:"itemId,omitempty"`
	ParentIDs []uint64 `json:"parentIds,omitempty"`

	URI  string   `json:"uri,omitempty"`
	URIs []string `json:"uris,omitempty"`

	Allowed bool `json:"allowed,omitempty"`

	// Salt and Sig are hex-encoded, acceptTransport and validateTransport only.
	Salt string `json:"salt,omitempty"`
	Sig  string `json:"sig,omitempty"`
}

// CommandResult is the Apply reply. ID is set by ops that mint or submit a
// single token, IDs by batch mints.
type CommandResult struct {
	ID  uint64   `json:"id,omitempty"`
	IDs []uint64 `json:"ids,omitempty"`
}

// QueryRequest is the Query envelope.
type QueryRequest struct {
	Op          string           `json:"op"`
	LabelID     uint64           `json:"labelId,omitempty"`
	ItemID      uint64           `json:"itemId,omitempty"`
	Party       identity.Address `json:"party,omitempty"`
	Transporter identity.Address `json:"transporter,omitempty"`
	Recipient   identity.Address `json:"recipient,omitempty"`
}

// QueryResult is the Query reply; which field is meaningful depends on the op.
type QueryResult struct {
	Bool    bool             `json:"bool,omitempty"`
	Count   uint64           `json:"count,omitempty"`
	Address identity.Address `json:"address,omitempty"`
	URI     string           `json:"uri,omitempty"`
	Parents []uint64         `json:"parents,omitempty"`
}
