package domain

import "errors"

var (
	// ErrInternalServerError will throw if any the Internal Server Error happen
	ErrInternalServerError = errors.New("Internal Server Error")
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("Your requested Item is not found")
	// ErrConflict will throw if the current action already exists
	ErrConflict = errors.New("Your Item already exist")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput = errors.New("Given Param is not valid")

	// ErrStoreUnavailable marks a transient document store failure. Writers must
	// abort a read-modify-write cycle on this error instead of overwriting the
	// document with an empty map.
	ErrStoreUnavailable = errors.New("document store unavailable")

	// listing lifecycle
	ErrAlreadyListed  = errors.New("token already has an active listing")
	ErrInvalidStatus  = errors.New("listing status does not allow this transition")
	ErrAlreadySold    = errors.New("listing already sold")
	ErrListingRevoked = errors.New("listing cancelled")
	ErrNotSeller      = errors.New("caller is not the listing seller")
	ErrNotOwner       = errors.New("caller does not own the token")
	ErrBuyerMismatch  = errors.New("buyer does not match registered buyer")
	ErrDepositMissing = errors.New("escrow deposit not confirmed")

	// wallet
	ErrInsufficientBalance = errors.New("escrow balance below listing price")

	// mint gate
	ErrSupplyCapReached = errors.New("max supply reached")
	ErrRateLimited      = errors.New("mint rate limit exceeded")

	// broadcast
	ErrNoRelayAck = errors.New("no relay acknowledged the event")

	ErrInvalidTokenId   = errors.New("invalid token id")
	ErrInvalidPubKey    = errors.New("invalid public key")
	ErrInvalidSignature = errors.New("invalid signature")
)
