package registrar

import "errors"

var (
	// ErrNotOwner guards owner-only configuration operations.
	ErrNotOwner = errors.New("caller is not the contract owner")

	// ErrNotController is returned when an account that is not a
	// registered controller tries to mint or renew on the ownership ledger.
	ErrNotController = errors.New("caller is not a registrar controller")

	// ErrZeroAddress rejects configuring a zero address where a real
	// account is required.
	ErrZeroAddress = errors.New("address must not be zero")

	// ErrNameNotAvailable is returned when the requested name is invalid
	// (too short) or not currently available for registration.
	ErrNameNotAvailable = errors.New("name is not available")

	// ErrDurationTooShort is returned when the requested registration
	// duration is below the network's floor.
	ErrDurationTooShort = errors.New("registration duration too short")

	// ErrResolverRequired is returned when resolver records are supplied
	// without a resolver to apply them.
	ErrResolverRequired = errors.New("resolver required when data is supplied")

	// ErrInvalidResolver is returned when the requested resolver
	// capability is not wired in.
	ErrInvalidResolver = errors.New("resolver is not available")

	// ErrInsufficientValue is returned when the payment supplied with a
	// registration or renewal does not cover the price.
	ErrInsufficientValue = errors.New("insufficient payment for price")

	// ErrTransferFailed marks a failed refund or withdrawal transfer. It
	// is distinct from ErrInsufficientValue so clients can tell "your
	// payment was wrong" from "we could not move funds".
	ErrTransferFailed = errors.New("funds transfer failed")

	// ErrReentrantCall is returned when an external collaborator calls
	// back into the controller before the triggering operation completed.
	ErrReentrantCall = errors.New("reentrant call")

	// ErrNotRegistered is returned for renewals of labels that have no
	// record on the ownership ledger.
	ErrNotRegistered = errors.New("name is not registered")

	// ErrGraceExpired is returned for renewals after the grace window
	// closed; the name must be re-registered instead.
	ErrGraceExpired = errors.New("grace period is over, name must be re-registered")
)
