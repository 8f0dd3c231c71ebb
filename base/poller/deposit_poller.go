// Package poller watches the escrow wallet's spendable coin set and promotes
// pending listings to deposited once their collateral shows up.
package poller

import (
	"time"

	"github.com/viney-shih/goroutines"

	"github.com/arkpunks/goapi/base/backoff"
	bCtx "github.com/arkpunks/goapi/base/ctx"
	"github.com/arkpunks/goapi/base/log"
	"github.com/arkpunks/goapi/base/metrics"
	"github.com/arkpunks/goapi/domain"
	"github.com/arkpunks/goapi/domain/listing"
)

type DepositPollerCfg struct {
	Escrow listing.Usecase
	Wallet domain.Wallet

	Interval time.Duration
	// CollateralAmount and CollateralTolerance define the accepted deposit
	// range; collateral is fungible by amount, see the escrow engine.
	CollateralAmount    domain.Sats
	CollateralTolerance domain.Sats
}

type DepositPoller struct {
	escrow listing.Usecase
	wallet domain.Wallet

	interval            time.Duration
	collateralAmount    domain.Sats
	collateralTolerance domain.Sats

	pool *goroutines.Pool
	met  metrics.Service
}

func NewDepositPoller(cfg *DepositPollerCfg) *DepositPoller {
	interval := cfg.Interval
	if interval == 0 {
		interval = 30 * time.Second
	}
	return &DepositPoller{
		escrow:              cfg.Escrow,
		wallet:              cfg.Wallet,
		interval:            interval,
		collateralAmount:    cfg.CollateralAmount,
		collateralTolerance: cfg.CollateralTolerance,
		pool:                goroutines.NewPool(8, goroutines.WithTaskQueueLength(64)),
		met:                 metrics.New("poller"),
	}
}

// Run blocks until the context is cancelled. Store or wallet outages back
// off exponentially instead of hammering a failing dependency.
func (p *DepositPoller) Run(c bCtx.Ctx) {
	bo := backoff.NewExponential(p.interval, 10*time.Minute)

	for {
		if err := p.Sweep(c); err != nil {
			c.WithField("err", err).Warn("deposit sweep failed, backing off")
			if err := bo.Backoff(c); err != nil {
				break
			}
			continue
		}
		bo.Reset()

		select {
		case <-c.Done():
			p.pool.Release()
			return
		case <-time.After(p.interval):
		}
	}
	p.pool.Release()
}

// Sweep runs one pass: list pending listings, list escrow coins once, and
// record a deposit for every listing whose collateral range is satisfied.
func (p *DepositPoller) Sweep(c bCtx.Ctx) error {
	defer p.met.BumpTime("sweep.time").End()

	actives, err := p.escrow.GetActives(c)
	if err != nil {
		return err
	}

	pending := []*listing.Listing{}
	for _, l := range actives {
		if l.Status == listing.StatusPending {
			pending = append(pending, l)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	coins, err := p.wallet.SpendableCoins(c)
	if err != nil {
		return err
	}

	matching := 0
	for _, coin := range coins {
		if coin.Amount >= p.collateralAmount && coin.Amount <= p.collateralAmount+p.collateralTolerance {
			matching++
		}
	}
	if matching == 0 {
		return nil
	}

	// one observed coin funds at most one listing per sweep; over-counting
	// here would mark listings deposited on someone else's collateral
	promote := pending
	if len(promote) > matching {
		promote = promote[:matching]
	}

	for _, l := range promote {
		l := l
		err := p.pool.ScheduleWithTimeout(3*time.Second, func() {
			if err := p.escrow.RecordDeposit(c, l.TokenId); err != nil {
				c.WithFields(log.Fields{
					"tokenId": l.TokenId,
					"err":     err,
				}).Error("failed to RecordDeposit")
				return
			}
			p.met.BumpSum("deposit.recorded", 1)
		})
		if err != nil {
			c.WithFields(log.Fields{
				"tokenId": l.TokenId,
				"err":     err,
			}).Error("failed to ScheduleWithTimeout")
		}
	}
	return nil
}
