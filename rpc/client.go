package rpc

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/ncoquelet/RobinWood/event"
	"github.com/ncoquelet/RobinWood/identity"
	"github.com/ncoquelet/RobinWood/merchandise"
)

// Client is a typed wrapper over the raw envelope protocol. Rejections come
// back as gRPC status errors; match on the name prefix in the message.
type Client struct {
	raw LedgerClient
}

// NewClient wraps a gRPC connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{raw: NewLedgerClient(cc)}
}

func (c *Client) apply(ctx context.Context, cmd Command) (CommandResult, error) {
	data, err := json.Marshal(cmd)
	if err != nil {
		return CommandResult{}, err
	}
	out, err := c.raw.Apply(ctx, wrapperspb.Bytes(data))
	if err != nil {
		return CommandResult{}, err
	}
	var res CommandResult
	if err := json.Unmarshal(out.GetValue(), &res); err != nil {
		return CommandResult{}, fmt.Errorf("rpc: bad reply: %w", err)
	}
	return res, nil
}

func (c *Client) query(ctx context.Context, q QueryRequest) (QueryResult, error) {
	data, err := json.Marshal(q)
	if err != nil {
		return QueryResult{}, err
	}
	out, err := c.raw.Query(ctx, wrapperspb.Bytes(data))
	if err != nil {
		return QueryResult{}, err
	}
	var res QueryResult
	if err := json.Unmarshal(out.GetValue(), &res); err != nil {
		return QueryResult{}, fmt.Errorf("rpc: bad reply: %w", err)
	}
	return res, nil
}

func (c *Client) SubmitLabel(ctx context.Context, caller identity.Address, uri string) (uint64, error) {
	res, err := c.apply(ctx, Command{Op: OpSubmitLabel, Caller: caller, URI: uri})
	return res.ID, err
}

func (c *Client) AllowLabel(ctx context.Context, caller identity.Address, labelID uint64, allowed bool) error {
	_, err := c.apply(ctx, Command{Op: OpAllowLabel, Caller: caller, LabelID: labelID, Allowed: allowed})
	return err
}

func (c *Client) Certify(ctx context.Context, caller, producer identity.Address, labelID uint64) error {
	_, err := c.apply(ctx, Command{Op: OpCertify, Caller: caller, Producer: producer, LabelID: labelID})
	return err
}

func (c *Client) Revoke(ctx context.Context, caller, producer identity.Address, labelID uint64) error {
	_, err := c.apply(ctx, Command{Op: OpRevoke, Caller: caller, Producer: producer, LabelID: labelID})
	return err
}

func (c *Client) MintWithLabel(ctx context.Context, caller identity.Address, uri string, labelID uint64) (uint64, error) {
	res, err := c.apply(ctx, Command{Op: OpMintWithLabel, Caller: caller, URI: uri, LabelID: labelID})
	return res.ID, err
}

func (c *Client) MintWithParents(ctx context.Context, caller identity.Address, uri string, parentIDs []uint64) (uint64, error) {
	res, err := c.apply(ctx, Command{Op: OpMintWithParents, Caller: caller, URI: uri, ParentIDs: parentIDs})
	return res.ID, err
}

func (c *Client) MintBatchWithParent(ctx context.Context, caller identity.Address, uris []string, parentID uint64) ([]uint64, error) {
	res, err := c.apply(ctx, Command{Op: OpMintBatchWithParent, Caller: caller, URIs: uris, ItemID: parentID})
	return res.IDs, err
}

func (c *Client) TransferItem(ctx context.Context, caller, to identity.Address, itemID uint64) error {
	_, err := c.apply(ctx, Command{Op: OpTransferItem, Caller: caller, To: to, ItemID: itemID})
	return err
}

func (c *Client) MandateTransport(ctx context.Context, caller, transporter, recipient identity.Address, itemID uint64) error {
	_, err := c.apply(ctx, Command{
		Op:          OpMandateTransport,
		Caller:      caller,
		Transporter: transporter,
		Recipient:   recipient,
		ItemID:      itemID,
	})
	return err
}

func (c *Client) AcceptTransport(ctx context.Context, caller identity.Address, itemID uint64, acc merchandise.Acceptance) error {
	_, err := c.apply(ctx, Command{
		Op:     OpAcceptTransport,
		Caller: caller,
		ItemID: itemID,
		Salt:   acc.Salt.String(),
		Sig:    hex.EncodeToString(acc.Sig),
	})
	return err
}

func (c *Client) ValidateTransport(ctx context.Context, caller identity.Address, itemID uint64, transporter identity.Address, salt merchandise.Salt) error {
	_, err := c.apply(ctx, Command{
		Op:          OpValidateTransport,
		Caller:      caller,
		ItemID:      itemID,
		Transporter: transporter,
		Salt:        salt.String(),
	})
	return err
}

func (c *Client) Authority(ctx context.Context) (identity.Address, error) {
	res, err := c.query(ctx, QueryRequest{Op: QueryAuthority})
	return res.Address, err
}

func (c *Client) LabelOwnerOf(ctx context.Context, labelID uint64) (identity.Address, error) {
	res, err := c.query(ctx, QueryRequest{Op: QueryLabelOwnerOf, LabelID: labelID})
	return res.Address, err
}

func (c *Client) LabelURI(ctx context.Context, labelID uint64) (string, error) {
	res, err := c.query(ctx, QueryRequest{Op: QueryLabelURI, LabelID: labelID})
	return res.URI, err
}

func (c *Client) IsAllowed(ctx context.Context, labelID uint64) (bool, error) {
	res, err := c.query(ctx, QueryRequest{Op: QueryIsAllowed, LabelID: labelID})
	return res.Bool, err
}

func (c *Client) IsAllowedFor(ctx context.Context, labelID uint64, certifier identity.Address) (bool, error) {
	res, err := c.query(ctx, QueryRequest{Op: QueryIsAllowedFor, LabelID: labelID, Party: certifier})
	return res.Bool, err
}

func (c *Client) LabelCount(ctx context.Context) (uint64, error) {
	res, err := c.query(ctx, QueryRequest{Op: QueryLabelCount})
	return res.Count, err
}

func (c *Client) IsCertified(ctx context.Context, producer identity.Address, labelID uint64) (bool, error) {
	res, err := c.query(ctx, QueryRequest{Op: QueryIsCertified, Party: producer, LabelID: labelID})
	return res.Bool, err
}

func (c *Client) OwnerOf(ctx context.Context, itemID uint64) (identity.Address, error) {
	res, err := c.query(ctx, QueryRequest{Op: QueryOwnerOf, ItemID: itemID})
	return res.Address, err
}

func (c *Client) ParentsOf(ctx context.Context, itemID uint64) ([]uint64, error) {
	res, err := c.query(ctx, QueryRequest{Op: QueryParentsOf, ItemID: itemID})
	return res.Parents, err
}

func (c *Client) ItemURI(ctx context.Context, itemID uint64) (string, error) {
	res, err := c.query(ctx, QueryRequest{Op: QueryItemURI, ItemID: itemID})
	return res.URI, err
}

func (c *Client) ItemCount(ctx context.Context) (uint64, error) {
	res, err := c.query(ctx, QueryRequest{Op: QueryItemCount})
	return res.Count, err
}

func (c *Client) IsMandate(ctx context.Context, itemID uint64, transporter, recipient identity.Address) (bool, error) {
	res, err := c.query(ctx, QueryRequest{Op: QueryIsMandate, ItemID: itemID, Transporter: transporter, Recipient: recipient})
	return res.Bool, err
}

func (c *Client) IsMandateAccepted(ctx context.Context, itemID uint64, transporter identity.Address) (bool, error) {
	res, err := c.query(ctx, QueryRequest{Op: QueryIsMandateAccepted, ItemID: itemID, Transporter: transporter})
	return res.Bool, err
}

func (c *Client) IsTransportValidated(ctx context.Context, itemID uint64, transporter identity.Address) (bool, error) {
	res, err := c.query(ctx, QueryRequest{Op: QueryIsTransportValidated, ItemID: itemID, Transporter: transporter})
	return res.Bool, err
}

// Events streams the committed log from fromSeq, then live commits. The
// returned function receives decoded events until the context ends or the
// callback returns an error.
func (c *Client) Events(ctx context.Context, fromSeq uint64, fn func(event.Event) error) error {
	stream, err := c.raw.Events(ctx, wrapperspb.UInt64(fromSeq))
	if err != nil {
		return err
	}
	for {
		msg, err := stream.Recv()
		if err != nil {
			return err
		}
		ev, err := event.Unmarshal(msg.GetValue())
		if err != nil {
			return fmt.Errorf("rpc: bad event: %w", err)
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
}
