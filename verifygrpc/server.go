// Package verifygrpc exposes the verification engine over gRPC.
package verifygrpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/certverify/ledger"
	"xdao.co/certverify/resolve"
	"xdao.co/certverify/verify"
)

// Server exposes a verify.Engine over the Verifier gRPC service.
type Server struct {
	UnimplementedVerifierServer
	Engine *verify.Engine
}

func (s *Server) Verify(ctx context.Context, in *wrapperspb.BytesValue) (*structpb.Struct, error) {
	if s == nil || s.Engine == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing engine")
	}
	raw := in.GetValue()
	if len(raw) == 0 {
		return nil, status.Error(codes.InvalidArgument, "empty document")
	}
	res := s.Engine.Verify(ctx, raw)
	return resultStruct(res)
}

func (s *Server) Anchor(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.StringValue, error) {
	if s == nil || s.Engine == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing engine")
	}
	raw := in.GetValue()
	if len(raw) == 0 {
		return nil, status.Error(codes.InvalidArgument, "empty document")
	}
	txID, err := s.Engine.Anchor(ctx, raw)
	if err != nil {
		return nil, mapErr(err)
	}
	return wrapperspb.String(txID), nil
}

func (s *Server) Anchored(ctx context.Context, in *structpb.Struct) (*wrapperspb.BoolValue, error) {
	if s == nil || s.Engine == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing engine")
	}
	fields := in.GetFields()
	key := fields["key"].GetStringValue()
	value := fields["value"].GetStringValue()
	if key == "" || value == "" {
		return nil, status.Error(codes.InvalidArgument, "key and value required")
	}
	found, err := s.Engine.Anchored(ctx, key, value)
	if err != nil {
		return nil, mapErr(err)
	}
	return wrapperspb.Bool(found), nil
}

func resultStruct(res verify.Result) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(map[string]interface{}{
		"Result":         string(res.Verdict),
		"IPFS_file_hash": res.LocatorID,
		"Anchored":       res.Anchored,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, "result encoding failed")
	}
	return out, nil
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, verify.ErrNoLedger):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, ledger.ErrEmptyWrite):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, resolve.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, resolve.ErrIntegrity):
		return status.Error(codes.DataLoss, err.Error())
	case errors.Is(err, ledger.ErrLedger):
		return status.Error(codes.Unavailable, err.Error())
	case verify.StageOf(err) == verify.StageExtractUser:
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
