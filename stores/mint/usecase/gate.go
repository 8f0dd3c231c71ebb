package usecase

import (
	"time"

	bCtx "github.com/arkpunks/goapi/base/ctx"
	"github.com/arkpunks/goapi/base/log"
	"github.com/arkpunks/goapi/base/metrics"
	"github.com/arkpunks/goapi/base/signer"
	"github.com/arkpunks/goapi/domain"
	"github.com/arkpunks/goapi/domain/mint"
)

type GateUseCaseCfg struct {
	Signer *signer.Signer
	// RateLimit is injected so tests run with isolated instances; the
	// default implementation is process-lifetime memory.
	RateLimit mint.RateLimitStore

	MaxSupply int
	// PerIdentityCap mints allowed per identity within Window.
	PerIdentityCap int
	Window         time.Duration
}

type gateUseCase struct {
	signer    *signer.Signer
	rateLimit mint.RateLimitStore

	maxSupply int
	cap       int
	window    time.Duration
	met       metrics.Service
}

// NewGateUseCase returns the mint authorization gate. Its signature is a
// capability token: it proves the gate approved a token id once, nothing
// more. The supply cap it checks is the caller's claim; the canonical count
// belongs to the registry reconciliation service.
func NewGateUseCase(cfg *GateUseCaseCfg) mint.Usecase {
	return &gateUseCase{
		signer:    cfg.Signer,
		rateLimit: cfg.RateLimit,
		maxSupply: cfg.MaxSupply,
		cap:       cfg.PerIdentityCap,
		window:    cfg.Window,
		met:       metrics.New("mint"),
	}
}

func (u *gateUseCase) Authorize(c bCtx.Ctx, id domain.TokenId, minter domain.PubKey, claimedSupply int) (*mint.Authorization, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if err := minter.Validate(); err != nil {
		return nil, err
	}

	if claimedSupply >= u.maxSupply {
		u.met.BumpSum("authorize.cap", 1)
		return nil, domain.ErrSupplyCapReached
	}

	if !u.rateLimit.Allow(c, minter, u.cap, u.window) {
		u.met.BumpSum("authorize.ratelimited", 1)
		c.WithFields(log.Fields{
			"minter": minter,
			"window": u.window,
		}).Warn("mint rate limit hit")
		return nil, domain.ErrRateLimited
	}

	sig, err := u.signer.Sign(id.Digest())
	if err != nil {
		c.WithField("err", err).Error("failed to co-sign token id")
		return nil, err
	}

	u.rateLimit.Record(c, minter, time.Now())
	u.met.BumpSum("authorize.ok", 1)

	return &mint.Authorization{
		Signature:     sig,
		ServicePubKey: u.signer.PubKey(),
	}, nil
}
