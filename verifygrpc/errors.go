package verifygrpc

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"xdao.co/certverify/ledger"
	"xdao.co/certverify/resolve"
	"xdao.co/certverify/verify"
)

func mapRPC(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	switch st.Code() {
	case codes.NotFound:
		return resolve.ErrNotFound
	case codes.DataLoss:
		// Server uses DataLoss when fetched bytes do not re-derive the locator.
		return resolve.ErrIntegrity
	case codes.Unavailable:
		return ledger.ErrLedger
	case codes.FailedPrecondition:
		return verify.ErrNoLedger
	default:
		// Best-effort: if the server sent a known sentinel message, preserve it.
		switch st.Message() {
		case ledger.ErrEmptyWrite.Error():
			return ledger.ErrEmptyWrite
		default:
			return err
		}
	}
}
