package domain

import (
	"github.com/arkpunks/goapi/base/ctx"
)

// Coin is the canonical shape of a spendable unit in the custodial wallet.
// The wallet adapter normalizes whatever shape the wallet daemon returns
// into this type; nothing above the adapter sees the raw coin.
type Coin struct {
	// Id is the coin's outpoint-like identifier.
	Id string `json:"id"`
	// Amount in sats.
	Amount Sats `json:"amount"`
}

// Wallet is the custodial escrow wallet capability. Key management and coin
// selection stay inside the wallet daemon; this service only observes and
// spends.
type Wallet interface {
	// Address returns the escrow receive address. Constant per deployment.
	Address(c ctx.Ctx) (ArkAddress, error)
	Balance(c ctx.Ctx) (Sats, error)
	SpendableCoins(c ctx.Ctx) ([]Coin, error)
	// Send transfers amount to the given address and returns the settlement
	// transaction reference.
	Send(c ctx.Ctx, to ArkAddress, amount Sats) (TxRef, error)
}
