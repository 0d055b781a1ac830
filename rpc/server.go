package rpc

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/ncoquelet/RobinWood/certification"
	"github.com/ncoquelet/RobinWood/label"
	"github.com/ncoquelet/RobinWood/ledger"
	"github.com/ncoquelet/RobinWood/merchandise"
)

// Server serves the Ledger gRPC service over a ledger instance.
type Server struct {
	UnimplementedLedgerServer
	ledger *ledger.Ledger
}

// NewServer wraps l.
func NewServer(l *ledger.Ledger) *Server {
	return &Server{ledger: l}
}

// Apply dispatches one mutation envelope.
func (s *Server) Apply(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	var cmd Command
	if err := json.Unmarshal(in.GetValue(), &cmd); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "bad command envelope: %v", err)
	}

	var res CommandResult
	var err error
	switch cmd.Op {
	case OpSubmitLabel:
		res.ID, err = s.ledger.SubmitLabel(ctx, cmd.Caller, cmd.URI)
	case OpAllowLabel:
		err = s.ledger.AllowLabel(ctx, cmd.Caller, cmd.LabelID, cmd.Allowed)
	case OpTransferLabel:
		err = s.ledger.TransferLabel(ctx, cmd.Caller, cmd.To, cmd.LabelID)
	case OpCertify:
		err = s.ledger.Certify(ctx, cmd.Caller, cmd.Producer, cmd.LabelID)
	case OpRevoke:
		err = s.ledger.Revoke(ctx, cmd.Caller, cmd.Producer, cmd.LabelID)
	case OpTransferCertification:
		err = s.ledger.TransferCertification(ctx, cmd.Caller, cmd.To, cmd.LabelID)
	case OpMintWithLabel:
		res.ID, err = s.ledger.MintWithLabel(ctx, cmd.Caller, cmd.URI, cmd.LabelID)
	case OpMintWithParents:
		res.ID, err = s.ledger.MintWithParents(ctx, cmd.Caller, cmd.URI, cmd.ParentIDs)
	case OpMintBatchWithParent:
		res.IDs, err = s.ledger.MintBatchWithParent(ctx, cmd.Caller, cmd.URIs, cmd.ItemID)
	case OpTransferItem:
		err = s.ledger.TransferItem(ctx, cmd.Caller, cmd.To, cmd.ItemID)
	case OpMandateTransport:
		err = s.ledger.MandateTransport(ctx, cmd.Caller, cmd.Transporter, cmd.Recipient, cmd.ItemID)
	case OpAcceptTransport:
		var acc merchandise.Acceptance
		acc.Salt, err = merchandise.ParseSalt(cmd.Salt)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "%v", err)
		}
		acc.Sig, err = hex.DecodeString(cmd.Sig)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "bad signature encoding: %v", err)
		}
		err = s.ledger.AcceptTransport(ctx, cmd.Caller, cmd.ItemID, acc)
	case OpValidateTransport:
		var salt merchandise.Salt
		salt, err = merchandise.ParseSalt(cmd.Salt)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "%v", err)
		}
		err = s.ledger.ValidateTransport(ctx, cmd.Caller, cmd.ItemID, cmd.Transporter, salt)
	default:
		return nil, status.Errorf(codes.InvalidArgument, "unknown op %q", cmd.Op)
	}
	if err != nil {
		return nil, toStatus(err)
	}
	return marshalReply(res)
}

// Query dispatches one read envelope.
func (s *Server) Query(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	var q QueryRequest
	if err := json.Unmarshal(in.GetValue(), &q); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "bad query envelope: %v", err)
	}

	var res QueryResult
	var err error
	switch q.Op {
	case QueryAuthority:
		res.Address = s.ledger.Authority()
	case QueryLabelOwnerOf:
		res.Address, err = s.ledger.LabelOwnerOf(q.LabelID)
	case QueryLabelURI:
		res.URI, err = s.ledger.LabelURI(q.LabelID)
	case QueryIsAllowed:
		res.Bool = s.ledger.IsAllowed(q.LabelID)
	case QueryIsAllowedFor:
		res.Bool = s.ledger.IsAllowedFor(q.LabelID, q.Party)
	case QueryLabelCount:
		res.Count = s.ledger.LabelCount()
	case QueryIsCertified:
		res.Bool = s.ledger.IsCertified(q.Party, q.LabelID)
	case QueryCertificationBalance:
		res.Count = s.ledger.CertificationBalance(q.Party, q.LabelID)
	case QueryOwnerOf:
		res.Address, err = s.ledger.OwnerOf(q.ItemID)
	case QueryParentsOf:
		res.Parents, err = s.ledger.ParentsOf(q.ItemID)
	case QueryItemURI:
		res.URI, err = s.ledger.ItemURI(q.ItemID)
	case QueryItemCount:
		res.Count = s.ledger.ItemCount()
	case QueryIsMandate:
		res.Bool = s.ledger.IsMandate(q.ItemID, q.Transporter, q.Recipient)
	case QueryIsMandateAccepted:
		res.Bool = s.ledger.IsMandateAccepted(q.ItemID, q.Transporter)
	case QueryIsTransportValidated:
		res.Bool = s.ledger.IsTransportValidated(q.ItemID, q.Transporter)
	default:
		return nil, status.Errorf(codes.InvalidArgument, "unknown op %q", q.Op)
	}
	if err != nil {
		return nil, toStatus(err)
	}
	return marshalReply(res)
}

// Events replays the committed stream from fromSeq and then tails live
// commits until the client goes away.
func (s *Server) Events(in *wrapperspb.UInt64Value, stream Ledger_EventsServer) error {
	ctx := stream.Context()

	// Subscribe before replaying so no commit can fall between replay and
	// tail. Events committed during the replay are skipped by sequence.
	tail, cancel := s.ledger.Subscribe()
	defer cancel()

	committed, err := s.ledger.Events(ctx, in.GetValue())
	if err != nil {
		return toStatus(err)
	}
	var last uint64
	for _, ev := range committed {
		data, err := ev.Marshal()
		if err != nil {
			return toStatus(err)
		}
		if err := stream.Send(wrapperspb.Bytes(data)); err != nil {
			return err
		}
		last = ev.Seq
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-tail:
			if !ok {
				return nil
			}
			if ev.Seq <= last {
				continue
			}
			data, err := ev.Marshal()
			if err != nil {
				return toStatus(err)
			}
			if err := stream.Send(wrapperspb.Bytes(data)); err != nil {
				return err
			}
			last = ev.Seq
		}
	}
}

func marshalReply(v any) (*wrapperspb.BytesValue, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode reply: %v", err)
	}
	return wrapperspb.Bytes(data), nil
}

// toStatus maps ledger rejections to gRPC codes, keeping the rejection name
// in the message so clients can tell them apart.
func toStatus(err error) error {
	var (
		unauthorized *label.UnauthorizedError
		unknownLabel *label.UnknownLabelError
		nonexistent  *merchandise.NonexistentTokenError

		labelNotTransferable *label.NotTransferableError
		certNotTransferable  *certification.NotTransferableError
		notAllowed           *certification.NotAllowedLabelError
		notCertified         *merchandise.NotCertifiedError
		notOwner             *merchandise.NotOwnerError
		itemNotTransferable  *merchandise.NotTransferableError
		badTransporter       *merchandise.InvalidTransporterError
		badRecipient         *merchandise.InvalidRecipientError
		notMandated          *merchandise.NotMandatedError
		badSignature         *merchandise.InvalidSignatureError
		notAccepted          *merchandise.NotAcceptedError
		notReceiver          *merchandise.NotRecieverError
		alreadyAccepted      *merchandise.AlreadyAcceptedError
	)
	switch {
	case errors.As(err, &unauthorized):
		return named(codes.PermissionDenied, "Unauthorized", err)
	case errors.As(err, &unknownLabel):
		return named(codes.NotFound, "UnknownLabel", err)
	case errors.As(err, &nonexistent):
		return named(codes.NotFound, "NonexistentToken", err)
	case errors.As(err, &labelNotTransferable), errors.As(err, &certNotTransferable), errors.As(err, &itemNotTransferable):
		return named(codes.FailedPrecondition, "NotTransferable", err)
	case errors.As(err, &notAllowed):
		return named(codes.FailedPrecondition, "NotAllowedLabel", err)
	case errors.As(err, &notCertified):
		return named(codes.FailedPrecondition, "NotCertified", err)
	case errors.As(err, &notOwner):
		return named(codes.FailedPrecondition, "NotOwner", err)
	case errors.As(err, &badTransporter):
		return named(codes.FailedPrecondition, "InvalidTransporter", err)
	case errors.As(err, &badRecipient):
		return named(codes.FailedPrecondition, "InvalidRecipient", err)
	case errors.As(err, &notMandated):
		return named(codes.FailedPrecondition, "NotMandated", err)
	case errors.As(err, &badSignature):
		return named(codes.FailedPrecondition, "InvalidSignature", err)
	case errors.As(err, &notAccepted):
		return named(codes.FailedPrecondition, "NotAccepted", err)
	case errors.As(err, &notReceiver):
		return named(codes.FailedPrecondition, "NotReciever", err)
	case errors.As(err, &alreadyAccepted):
		return named(codes.FailedPrecondition, "AlreadyAccepted", err)
	case errors.Is(err, ledger.ErrHalted):
		return status.Errorf(codes.Internal, "%v", err)
	default:
		return status.Errorf(codes.FailedPrecondition, "%v", err)
	}
}

func named(code codes.Code, name string, err error) error {
	return status.Errorf(code, "%s: %v", name, err)
}
