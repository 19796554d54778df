package grpc

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/lowsodium/lowsodiumd/internal/core/ledger"
)

// resultError maps a ledger result code onto a gRPC status error.
func resultError(res ledger.Result) error {
	return status.Error(resultCode(res), res.Message())
}

func resultCode(res ledger.Result) codes.Code {
	switch res {
	case ledger.Unauthorized:
		return codes.PermissionDenied
	case ledger.InvalidDestination, ledger.InvalidAmount:
		return codes.InvalidArgument
	case ledger.InsufficientAvailableBalance:
		return codes.FailedPrecondition
	case ledger.OrderNotFound:
		return codes.NotFound
	case ledger.AmendWindowClosed, ledger.OrderMatured, ledger.OrderNotMature:
		return codes.FailedPrecondition
	case ledger.AssetTransferFailed:
		return codes.Aborted
	default:
		return codes.Internal
	}
}
