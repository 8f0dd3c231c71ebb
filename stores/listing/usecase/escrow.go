package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	bCtx "github.com/arkpunks/goapi/base/ctx"
	"github.com/arkpunks/goapi/base/kmutex"
	"github.com/arkpunks/goapi/base/log"
	"github.com/arkpunks/goapi/base/metrics"
	"github.com/arkpunks/goapi/base/signer"
	"github.com/arkpunks/goapi/domain"
	"github.com/arkpunks/goapi/domain/broadcast"
	"github.com/arkpunks/goapi/domain/listing"
)

type EscrowUseCaseCfg struct {
	ListingRepo listing.Repo
	Wallet      domain.Wallet
	Broadcast   broadcast.Service
	Ownership   listing.OwnershipChecker
	Signer      *signer.Signer

	// FeeBasisPoints is the marketplace fee retained in escrow. The fee is
	// deducted from the seller: the buyer pays price, the seller receives
	// price - floor(price*feeBps/10000).
	FeeBasisPoints int64

	// CollateralAmount and CollateralTolerance bound the coin accepted as
	// listing collateral. Collateral is fungible: any escrow coin worth
	// [amount, amount+tolerance] matches, not only the coin the seller
	// originally referenced.
	CollateralAmount    domain.Sats
	CollateralTolerance domain.Sats

	// Network selects the settlement network listings are quoted on.
	Network domain.Network
}

type escrowUseCase struct {
	listingRepo listing.Repo
	wallet      domain.Wallet
	broadcast   broadcast.Service
	ownership   listing.OwnershipChecker
	signer      *signer.Signer

	feeBps              int64
	collateralAmount    domain.Sats
	collateralTolerance domain.Sats
	network             domain.Network

	// execLock serializes Execute and Cancel per token so two settlements
	// can never both observe sufficient balance and both spend.
	execLock *kmutex.Kmutex
	met      metrics.Service
}

func NewEscrowUseCase(cfg *EscrowUseCaseCfg) listing.Usecase {
	network := cfg.Network
	if network == "" {
		network = domain.NetworkMainnet
	}
	return &escrowUseCase{
		listingRepo:         cfg.ListingRepo,
		wallet:              cfg.Wallet,
		broadcast:           cfg.Broadcast,
		ownership:           cfg.Ownership,
		signer:              cfg.Signer,
		feeBps:              cfg.FeeBasisPoints,
		collateralAmount:    cfg.CollateralAmount,
		collateralTolerance: cfg.CollateralTolerance,
		network:             network,
		execLock:            kmutex.New(),
		met:                 metrics.New("escrow"),
	}
}

// Fee computes the marketplace fee with exact integer arithmetic.
func Fee(price domain.Sats, feeBps int64) domain.Sats {
	return domain.Sats(int64(price) * feeBps / 10000)
}

func (u *escrowUseCase) List(c bCtx.Ctx, l *listing.Listing) (*listing.ListResult, error) {
	if err := l.TokenId.Validate(); err != nil {
		return nil, err
	}
	if err := l.Seller.Validate(); err != nil {
		return nil, err
	}
	if l.Price <= 0 || l.SellerPayoutAddress.IsEmpty() {
		return nil, domain.ErrBadParamInput
	}

	owns, err := u.ownership.Owns(c, l.TokenId, l.Seller)
	if err != nil {
		c.WithField("err", err).Error("ownership check failed")
		return nil, err
	}
	if !owns {
		return nil, domain.ErrNotOwner
	}

	escrowAddr, err := u.wallet.Address(c)
	if err != nil {
		c.WithField("err", err).Error("wallet.Address failed")
		return nil, err
	}

	l.TokenId = l.TokenId.ToLower()
	l.Seller = l.Seller.ToLower()
	l.EscrowAddress = escrowAddr
	l.Status = listing.StatusPending
	l.CreatedAt = domain.Now()
	l.DepositedAt = 0
	l.SoldAt = 0
	l.Buyer = ""
	l.BuyerPayoutAddress = ""
	l.SettlementRefs = nil

	if err := u.listingRepo.Create(c, l); err != nil {
		return nil, err
	}

	u.met.BumpSum("listing.created", 1)

	// listing announcement is best effort; the listing exists regardless
	if err := u.publishListingEvent(c, l); err != nil {
		c.WithFields(log.Fields{
			"tokenId": l.TokenId,
			"err":     err,
		}).Warn("listing created but announcement publish failed")
	}

	return &listing.ListResult{
		EscrowAddress: escrowAddr,
		Price:         l.Price,
		Instructions: []string{
			fmt.Sprintf("transfer the %d sat collateral coin for token %s to %s on %s", u.collateralAmount, l.TokenId, escrowAddr, u.network),
			"the listing activates once the deposit is observed in escrow",
		},
	}, nil
}

func (u *escrowUseCase) RecordDeposit(c bCtx.Ctx, id domain.TokenId) error {
	l, err := u.listingRepo.FindOne(c, id)
	if err != nil {
		return err
	}

	switch l.Status {
	case listing.StatusDeposited:
		// already recorded, keep the original depositedAt
		return nil
	case listing.StatusPending:
	default:
		return domain.ErrInvalidStatus
	}

	deposited := listing.StatusDeposited
	now := domain.Now()
	if _, err := u.listingRepo.Patch(c, id, &listing.Patchable{
		Status:      &deposited,
		DepositedAt: &now,
	}); err != nil {
		return err
	}

	c.WithField("tokenId", id).Info("deposit recorded")
	u.met.BumpSum("listing.deposited", 1)
	return nil
}

func (u *escrowUseCase) RegisterBuyer(c bCtx.Ctx, id domain.TokenId, buyer domain.PubKey, payout domain.ArkAddress) (*listing.Quote, error) {
	if err := buyer.Validate(); err != nil {
		return nil, err
	}
	if payout.IsEmpty() {
		return nil, domain.ErrBadParamInput
	}

	l, err := u.listingRepo.FindOne(c, id)
	if err != nil {
		return nil, err
	}
	if err := statusGate(l); err != nil {
		return nil, err
	}

	// the buyer is set exactly once; a different buyer must not take over
	if !l.Buyer.IsEmpty() && !l.Buyer.Equals(buyer) {
		return nil, domain.ErrConflict
	}

	buyer = buyer.ToLower()
	if _, err := u.listingRepo.Patch(c, id, &listing.Patchable{
		Buyer:              &buyer,
		BuyerPayoutAddress: &payout,
	}); err != nil {
		return nil, err
	}

	fee := Fee(l.Price, u.feeBps)
	return &listing.Quote{
		Price:         l.Price,
		Fee:           fee,
		SellerReceive: l.Price - fee,
		EscrowAddress: l.EscrowAddress,
		Instructions: []string{
			fmt.Sprintf("pay %d sats to %s to settle token %s", l.Price, l.EscrowAddress, id),
			"call execute once the payment is visible in escrow",
		},
	}, nil
}

func (u *escrowUseCase) Execute(c bCtx.Ctx, id domain.TokenId, buyer domain.PubKey) (*listing.ExecuteResult, error) {
	id = id.ToLower()
	u.execLock.Lock(string(id))
	defer u.execLock.Unlock(string(id))

	defer u.met.BumpTime("execute.time").End()

	l, err := u.listingRepo.FindOne(c, id)
	if err != nil {
		return nil, err
	}

	switch l.Status {
	case listing.StatusSold:
		return nil, domain.ErrAlreadySold
	case listing.StatusCancelled:
		return nil, domain.ErrListingRevoked
	case listing.StatusPending:
		return nil, domain.ErrDepositMissing
	case listing.StatusDeposited:
	default:
		return nil, domain.ErrInvalidStatus
	}

	if l.Buyer.IsEmpty() || !l.Buyer.Equals(buyer) {
		return nil, domain.ErrBuyerMismatch
	}

	balance, err := u.wallet.Balance(c)
	if err != nil {
		c.WithField("err", err).Error("wallet.Balance failed")
		return nil, err
	}
	if balance < l.Price {
		return nil, domain.ErrInsufficientBalance
	}

	fee := Fee(l.Price, u.feeBps)
	payout := l.Price - fee

	sellerRef, err := u.wallet.Send(c, l.SellerPayoutAddress, payout)
	if err != nil {
		c.WithFields(log.Fields{
			"tokenId": id,
			"amount":  payout,
			"err":     err,
		}).Error("seller payout failed, swap not committed")
		return nil, err
	}

	// the swap is committed from here on: the seller has been paid. Event
	// publication failing must not roll that back.
	refs := []domain.TxRef{sellerRef}
	broadcastPending := false
	if err := u.publishSettlement(c, l); err != nil {
		broadcastPending = true
		u.met.BumpSum("execute.broadcast_pending", 1)
		c.WithFields(log.Fields{
			"tokenId":   id,
			"sellerRef": sellerRef,
			"err":       err,
		}).Warn("swap committed but settlement events not broadcast, operator reconciliation needed")
	}

	sold := listing.StatusSold
	now := domain.Now()
	if _, err := u.listingRepo.Patch(c, id, &listing.Patchable{
		Status:         &sold,
		SoldAt:         &now,
		SettlementRefs: &refs,
	}); err != nil {
		// funds moved, surface loudly but do not pretend the swap failed
		c.WithFields(log.Fields{
			"tokenId":   id,
			"sellerRef": sellerRef,
			"err":       err,
		}).Error("swap committed but listing not marked sold")
		return nil, err
	}

	u.met.BumpSum("listing.sold", 1)
	return &listing.ExecuteResult{
		SettlementRefs:   refs,
		BroadcastPending: broadcastPending,
	}, nil
}

func (u *escrowUseCase) Cancel(c bCtx.Ctx, id domain.TokenId, caller domain.PubKey) (*listing.CancelResult, error) {
	id = id.ToLower()
	u.execLock.Lock(string(id))
	defer u.execLock.Unlock(string(id))

	l, err := u.listingRepo.FindOne(c, id)
	if err != nil {
		return nil, err
	}

	if !l.Seller.Equals(caller) {
		return nil, domain.ErrNotSeller
	}
	if l.Status.IsTerminal() {
		return nil, domain.ErrInvalidStatus
	}

	res := &listing.CancelResult{Status: listing.StatusCancelled}

	if l.Status == listing.StatusDeposited {
		// return the collateral coin if one of the expected denomination is
		// still spendable; a bookkeeping mismatch must not strand the
		// listing, so cancellation proceeds without refund otherwise
		coin, found, err := u.findCollateralCoin(c)
		if err != nil {
			c.WithField("err", err).Error("wallet.SpendableCoins failed")
			return nil, err
		}
		if found {
			ref, err := u.wallet.Send(c, l.SellerPayoutAddress, coin.Amount)
			if err != nil {
				c.WithFields(log.Fields{
					"tokenId": id,
					"coin":    coin,
					"err":     err,
				}).Error("collateral refund failed")
				return nil, err
			}
			res.RefundRef = &ref
			res.Refunded = true
		} else {
			c.WithFields(log.Fields{
				"tokenId":  id,
				"expected": u.collateralAmount,
			}).Warn("no matching collateral coin, cancelling without refund")
		}
	}

	cancelled := listing.StatusCancelled
	if _, err := u.listingRepo.Patch(c, id, &listing.Patchable{Status: &cancelled}); err != nil {
		return nil, err
	}

	u.met.BumpSum("listing.cancelled", 1)
	return res, nil
}

func (u *escrowUseCase) Get(c bCtx.Ctx, id domain.TokenId) (*listing.Listing, error) {
	return u.listingRepo.FindOne(c, id.ToLower())
}

func (u *escrowUseCase) GetActives(c bCtx.Ctx) ([]*listing.Listing, error) {
	return u.listingRepo.FindActives(c)
}

// findCollateralCoin scans escrow for a spendable coin within the accepted
// collateral range.
func (u *escrowUseCase) findCollateralCoin(c bCtx.Ctx) (domain.Coin, bool, error) {
	coins, err := u.wallet.SpendableCoins(c)
	if err != nil {
		return domain.Coin{}, false, err
	}
	for _, coin := range coins {
		if coin.Amount >= u.collateralAmount && coin.Amount <= u.collateralAmount+u.collateralTolerance {
			return coin, true, nil
		}
	}
	return domain.Coin{}, false, nil
}

func statusGate(l *listing.Listing) error {
	switch l.Status {
	case listing.StatusSold:
		return domain.ErrAlreadySold
	case listing.StatusCancelled:
		return domain.ErrListingRevoked
	}
	return nil
}

// settlementContent carries the original listing metadata on the transfer
// and sold events so downstream observers can resolve the token without
// re-querying the mint history.
type settlementContent struct {
	TokenId domain.TokenId  `json:"tokenId"`
	Seller  domain.PubKey   `json:"seller"`
	Buyer   domain.PubKey   `json:"buyer"`
	Price   domain.Sats     `json:"price"`
	SoldAt  domain.UnixTime `json:"soldAt"`
}

func (u *escrowUseCase) publishListingEvent(c bCtx.Ctx, l *listing.Listing) error {
	content, err := json.Marshal(l)
	if err != nil {
		return err
	}
	ev, err := u.newSignedEvent(broadcast.KindListing, l.TokenId, string(content))
	if err != nil {
		return err
	}
	return u.broadcast.Publish(c, ev)
}

func (u *escrowUseCase) publishSettlement(c bCtx.Ctx, l *listing.Listing) error {
	content, err := json.Marshal(settlementContent{
		TokenId: l.TokenId,
		Seller:  l.Seller,
		Buyer:   l.Buyer,
		Price:   l.Price,
		SoldAt:  domain.Now(),
	})
	if err != nil {
		return err
	}

	transfer, err := u.newSignedEvent(broadcast.KindTransfer, l.TokenId, string(content))
	if err != nil {
		return err
	}
	if err := u.broadcast.Publish(c, transfer); err != nil {
		return err
	}

	sold, err := u.newSignedEvent(broadcast.KindSold, l.TokenId, string(content))
	if err != nil {
		return err
	}
	return u.broadcast.Publish(c, sold)
}

func (u *escrowUseCase) newSignedEvent(kind broadcast.Kind, id domain.TokenId, content string) (*broadcast.Event, error) {
	ev := &broadcast.Event{
		PubKey:    u.signer.PubKey(),
		Kind:      kind,
		Tags:      [][]string{{"t", broadcast.AppTag}, {"token", string(id)}},
		Content:   content,
		CreatedAt: domain.Now(),
	}

	payload, err := json.Marshal([]interface{}{ev.PubKey, ev.Kind, ev.CreatedAt, ev.Tags, ev.Content})
	if err != nil {
		return nil, err
	}
	digest := sha256.Sum256(payload)
	ev.Id = hex.EncodeToString(digest[:])

	sig, err := u.signer.Sign(digest[:])
	if err != nil {
		return nil, err
	}
	ev.Sig = sig
	return ev, nil
}
