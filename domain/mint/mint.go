package mint

import (
	"time"

	"github.com/arkpunks/goapi/base/ctx"
	"github.com/arkpunks/goapi/domain"
)

// Authorization is the detached server co-signature over sha256(tokenId).
// It is a capability token, not an enforcement mechanism: the authoritative
// supply check belongs to the registry reconciliation service.
type Authorization struct {
	Signature     string        `json:"signature"`
	ServicePubKey domain.PubKey `json:"servicePublicKey"`
}

// RateLimitStore tracks mint timestamps per identity over a rolling window.
// Implementations are process-lifetime only; state is lost on restart and
// that is tolerated.
type RateLimitStore interface {
	// Allow reports whether identity may mint now, given cap mints per
	// window.
	Allow(c ctx.Ctx, identity domain.PubKey, cap int, window time.Duration) bool
	Record(c ctx.Ctx, identity domain.PubKey, at time.Time)
}

type Usecase interface {
	Authorize(c ctx.Ctx, id domain.TokenId, minter domain.PubKey, claimedSupply int) (*Authorization, error)
}
