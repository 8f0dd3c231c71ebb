package listing

import (
	"github.com/arkpunks/goapi/base/ctx"
	"github.com/arkpunks/goapi/domain"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusDeposited Status = "deposited"
	StatusSold      Status = "sold"
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusSold || s == StatusCancelled
}

func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusDeposited
}

// Listing is one token offered for sale under custodial escrow. The store is
// keyed by TokenId, so at most one listing per token exists at a time;
// re-listing overwrites the prior terminal-state record.
type Listing struct {
	TokenId             domain.TokenId    `json:"tokenId"`
	Seller              domain.PubKey     `json:"seller"`
	SellerPayoutAddress domain.ArkAddress `json:"sellerPayoutAddress"`
	// Price in sats. 0 is reserved to mean delisted and is never a valid
	// sale price.
	Price domain.Sats `json:"price"`
	// DepositRef is advisory: collateral is fungible by amount, the exact
	// coin originally referenced need not be the one observed.
	DepositRef    string            `json:"depositRef,omitempty"`
	EscrowAddress domain.ArkAddress `json:"escrowAddress"`
	Status        Status            `json:"status"`

	CreatedAt   domain.UnixTime `json:"createdAt"`
	DepositedAt domain.UnixTime `json:"depositedAt,omitempty"`
	SoldAt      domain.UnixTime `json:"soldAt,omitempty"`

	Buyer              domain.PubKey     `json:"buyer,omitempty"`
	BuyerPayoutAddress domain.ArkAddress `json:"buyerPayoutAddress,omitempty"`

	// SettlementRefs are the wallet transaction references recorded after
	// swap execution, for audit only.
	SettlementRefs []domain.TxRef `json:"settlementRefs,omitempty"`
}

// Patchable carries the fields a status transition may set. Nil fields are
// left untouched.
type Patchable struct {
	Status             *Status            `json:"status,omitempty"`
	DepositedAt        *domain.UnixTime   `json:"depositedAt,omitempty"`
	SoldAt             *domain.UnixTime   `json:"soldAt,omitempty"`
	Buyer              *domain.PubKey     `json:"buyer,omitempty"`
	BuyerPayoutAddress *domain.ArkAddress `json:"buyerPayoutAddress,omitempty"`
	SettlementRefs     *[]domain.TxRef    `json:"settlementRefs,omitempty"`
}

// Repo is the listing store over the shared listings document.
type Repo interface {
	FindOne(c ctx.Ctx, id domain.TokenId) (*Listing, error)
	// FindActives returns listings with status pending or deposited.
	FindActives(c ctx.Ctx) ([]*Listing, error)
	// Create rejects with domain.ErrAlreadyListed when an active listing for
	// the same token exists.
	Create(c ctx.Ctx, l *Listing) error
	Patch(c ctx.Ctx, id domain.TokenId, p *Patchable) (*Listing, error)
}

// ListResult is returned to the seller after a successful List call.
type ListResult struct {
	EscrowAddress domain.ArkAddress `json:"escrowAddress"`
	Price         domain.Sats       `json:"price"`
	Instructions  []string          `json:"instructions"`
}

// Quote is the price breakdown handed to a registering buyer.
type Quote struct {
	Price         domain.Sats       `json:"price"`
	Fee           domain.Sats       `json:"fee"`
	SellerReceive domain.Sats       `json:"sellerReceive"`
	EscrowAddress domain.ArkAddress `json:"escrowAddress"`
	Instructions  []string          `json:"instructions"`
}

// ExecuteResult reports a committed swap. BroadcastPending is set when the
// seller payout succeeded but event publication failed; funds already moved,
// so the swap is still committed.
type ExecuteResult struct {
	SettlementRefs   []domain.TxRef `json:"settlementRefs"`
	BroadcastPending bool           `json:"broadcastPending,omitempty"`
}

// CancelResult reports a cancellation. RefundRef is empty when no matching
// collateral coin was found and the listing was cancelled without refund.
type CancelResult struct {
	Status    Status        `json:"status"`
	RefundRef *domain.TxRef `json:"refundReference,omitempty"`
	Refunded  bool          `json:"refunded"`
}

// Usecase is the escrow settlement engine.
type Usecase interface {
	List(c ctx.Ctx, l *Listing) (*ListResult, error)
	// RecordDeposit is idempotent: pending moves to deposited, deposited
	// stays deposited.
	RecordDeposit(c ctx.Ctx, id domain.TokenId) error
	RegisterBuyer(c ctx.Ctx, id domain.TokenId, buyer domain.PubKey, payout domain.ArkAddress) (*Quote, error)
	Execute(c ctx.Ctx, id domain.TokenId, buyer domain.PubKey) (*ExecuteResult, error)
	Cancel(c ctx.Ctx, id domain.TokenId, caller domain.PubKey) (*CancelResult, error)
	Get(c ctx.Ctx, id domain.TokenId) (*Listing, error)
	GetActives(c ctx.Ctx) ([]*Listing, error)
}

// OwnershipChecker answers whether an identity currently owns a token,
// against the external ownership ledger.
type OwnershipChecker interface {
	Owns(c ctx.Ctx, id domain.TokenId, owner domain.PubKey) (bool, error)
}
