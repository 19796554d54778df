package ledger

import "fmt"

// Result is the outcome of a ledger operation. Any result other than Success
// is a rejection: the operation had no effect on ledger state.
type Result int

const (
	Success Result = iota

	// Unauthorized: caller is not the ledger owner on an owner-gated
	// operation.
	Unauthorized

	// InvalidDestination: destination equals the ledger's own identity.
	InvalidDestination

	// InvalidAmount: zero-amount order rejected by policy.
	InvalidAmount

	// InsufficientAvailableBalance: requested amount exceeds the current
	// held balance minus existing reservations for that asset.
	InsufficientAvailableBalance

	// OrderNotFound: the id has never existed or was already cancelled or
	// finished.
	OrderNotFound

	// AmendWindowClosed: amend attempted at or after the half-maturity
	// boundary.
	AmendWindowClosed

	// OrderMatured: cancel attempted at or after full maturity.
	OrderMatured

	// OrderNotMature: finish attempted before full maturity.
	OrderNotMature

	// AssetTransferFailed: the underlying asset movement did not complete.
	// The order remains pending and reserved so the caller may retry.
	AssetTransferFailed

	// Internal: invariant violation or storage corruption. Never expected.
	Internal
)

// IsSuccess reports whether the operation was applied.
func (r Result) IsSuccess() bool {
	return r == Success
}

// String returns the result code name.
func (r Result) String() string {
	switch r {
	case Success:
		return "Success"
	case Unauthorized:
		return "Unauthorized"
	case InvalidDestination:
		return "InvalidDestination"
	case InvalidAmount:
		return "InvalidAmount"
	case InsufficientAvailableBalance:
		return "InsufficientAvailableBalance"
	case OrderNotFound:
		return "OrderNotFound"
	case AmendWindowClosed:
		return "AmendWindowClosed"
	case OrderMatured:
		return "OrderMatured"
	case OrderNotMature:
		return "OrderNotMature"
	case AssetTransferFailed:
		return "AssetTransferFailed"
	case Internal:
		return "Internal"
	default:
		return fmt.Sprintf("Unknown(%d)", int(r))
	}
}

// Message returns a human-readable description for the result.
func (r Result) Message() string {
	switch r {
	case Success:
		return "The operation was applied."
	case Unauthorized:
		return "Caller is not the ledger owner."
	case InvalidDestination:
		return "Destination may not be the ledger itself."
	case InvalidAmount:
		return "Zero-amount orders are not permitted."
	case InsufficientAvailableBalance:
		return "Amount exceeds the unreserved balance for that asset."
	case OrderNotFound:
		return "No pending order with that id."
	case AmendWindowClosed:
		return "The order passed its half-maturity boundary and can no longer be amended."
	case OrderMatured:
		return "The order has matured and can no longer be cancelled."
	case OrderNotMature:
		return "The order has not matured and cannot be finished yet."
	case AssetTransferFailed:
		return "The asset transfer did not complete. The order is still pending."
	case Internal:
		return "Internal error."
	default:
		return r.String()
	}
}
