package usecase

import (
	"errors"
	"sort"

	"golang.org/x/sync/singleflight"

	bCtx "github.com/arkpunks/goapi/base/ctx"
	"github.com/arkpunks/goapi/base/log"
	"github.com/arkpunks/goapi/base/metrics"
	"github.com/arkpunks/goapi/base/signer"
	"github.com/arkpunks/goapi/domain"
	"github.com/arkpunks/goapi/domain/broadcast"
	"github.com/arkpunks/goapi/domain/keys"
	"github.com/arkpunks/goapi/domain/registry"
	"github.com/arkpunks/goapi/service/cache"
)

const (
	sourceRegistry  = "registry"
	sourceBroadcast = "broadcast"
	sourceWhitelist = "whitelist"
)

// authTag is the event tag carrying the mint gate's co-signature over
// sha256(tokenId).
const authTag = "auth"

type ReconcileUseCaseCfg struct {
	Repo      registry.Repo
	Broadcast broadcast.Service
	// Cache holds the merged view for a short interval. Constructor-injected
	// so tests run with isolated instances.
	Cache         cache.Service
	ServicePubKey domain.PubKey
	// LegacyAllowList admits broadcast events predating the co-signature
	// scheme.
	LegacyAllowList []domain.TokenId
}

type reconcileUseCase struct {
	repo          registry.Repo
	broadcast     broadcast.Service
	cache         cache.Service
	servicePubKey domain.PubKey
	legacy        map[domain.TokenId]struct{}

	// sf collapses concurrent cache misses into one broadcast query; a cold
	// cache under load must not stampede the relays.
	sf  singleflight.Group
	met metrics.Service
}

func NewReconcileUseCase(cfg *ReconcileUseCaseCfg) registry.Usecase {
	legacy := make(map[domain.TokenId]struct{}, len(cfg.LegacyAllowList))
	for _, id := range cfg.LegacyAllowList {
		legacy[id.ToLower()] = struct{}{}
	}
	return &reconcileUseCase{
		repo:          cfg.Repo,
		broadcast:     cfg.Broadcast,
		cache:         cfg.Cache,
		servicePubKey: cfg.ServicePubKey,
		legacy:        legacy,
		met:           metrics.New("registry"),
	}
}

// mergedView is the cached reconciliation result.
type mergedView struct {
	Entries    []registry.Entry `json:"entries"`
	Source     string           `json:"source"`
	ComputedAt domain.UnixTime  `json:"computedAt"`
}

func (u *reconcileUseCase) Supply(c bCtx.Ctx) (*registry.Supply, error) {
	view, err := u.reconciled(c)
	if err != nil {
		return nil, err
	}
	return &registry.Supply{
		Total:      len(view.Entries),
		Source:     view.Source,
		ComputedAt: view.ComputedAt,
	}, nil
}

func (u *reconcileUseCase) IsOfficial(c bCtx.Ctx, id domain.TokenId) (bool, error) {
	if err := id.Validate(); err != nil {
		return false, err
	}
	view, err := u.reconciled(c)
	if err != nil {
		return false, err
	}
	id = id.ToLower()
	for _, e := range view.Entries {
		if e.TokenId == id {
			return true, nil
		}
	}
	return false, nil
}

func (u *reconcileUseCase) Entries(c bCtx.Ctx) ([]registry.Entry, error) {
	view, err := u.reconciled(c)
	if err != nil {
		return nil, err
	}
	return view.Entries, nil
}

func (u *reconcileUseCase) SubmitWhitelist(c bCtx.Ctx, id domain.TokenId, submitter domain.PubKey) error {
	if err := id.Validate(); err != nil {
		return err
	}

	if err := u.repo.AppendWhitelist(c, &registry.WhitelistEntry{
		TokenId:     id.ToLower(),
		SubmittedAt: domain.Now(),
		Submitter:   submitter.ToLower(),
	}); err != nil {
		return err
	}

	// the merged view is stale now
	if err := u.cache.Del(c, keys.CacheKey(keys.PfxRegistry, "merged")); err != nil {
		c.WithField("err", err).Warn("failed to invalidate registry cache")
	}
	return nil
}

func (u *reconcileUseCase) reconciled(c bCtx.Ctx) (*mergedView, error) {
	view := &mergedView{}
	err := u.cache.GetByFunc(c, keys.CacheKey(keys.PfxRegistry, "merged"), view, func() (interface{}, error) {
		v, err, _ := u.sf.Do("merged", func() (interface{}, error) {
			return u.fetch(c)
		})
		if err != nil {
			return nil, err
		}
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// fetch merges the three sources by precedence: the durable registry
// document is authoritative when readable, the broadcast log is the
// fallback, and the client-submitted whitelist is always unioned in last.
func (u *reconcileUseCase) fetch(c bCtx.Ctx) (*mergedView, error) {
	defer u.met.BumpTime("reconcile.time").End()

	view := &mergedView{ComputedAt: domain.Now()}
	byId := map[domain.TokenId]registry.Entry{}

	doc, err := u.repo.GetRegistry(c)
	if err == nil {
		view.Source = sourceRegistry
		for _, e := range doc.Entries {
			mergeEarliest(byId, e)
		}
	} else if !errors.Is(err, domain.ErrNotFound) {
		c.WithField("err", err).Warn("registry document unreadable, falling back to broadcast log")
	}

	if view.Source == "" {
		entries, err := u.queryBroadcast(c)
		if err != nil {
			c.WithField("err", err).Warn("broadcast query failed, falling back to whitelist only")
		} else {
			view.Source = sourceBroadcast
			for _, e := range entries {
				mergeEarliest(byId, e)
			}
		}
	}

	wl, err := u.repo.GetWhitelist(c)
	if err != nil {
		if view.Source == "" {
			// every source failed; do not serve an empty canonical view
			return nil, err
		}
		c.WithField("err", err).Warn("whitelist unreadable, serving without it")
	} else {
		if view.Source == "" {
			view.Source = sourceWhitelist
		}
		for _, e := range wl.Entries {
			mergeEarliest(byId, registry.Entry{
				TokenId:  e.TokenId.ToLower(),
				MintedAt: e.SubmittedAt,
			})
		}
	}

	entries := make([]registry.Entry, 0, len(byId))
	for _, e := range byId {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].MintedAt != entries[j].MintedAt {
			return entries[i].MintedAt < entries[j].MintedAt
		}
		return entries[i].TokenId < entries[j].TokenId
	})
	view.Entries = entries

	u.met.BumpAvg("supply.total", float64(len(entries)))
	return view, nil
}

// queryBroadcast pulls mint events off the relays and keeps the ones with a
// valid service co-signature or a legacy allow-list entry. The relays give
// no ordering or exactly-once guarantee: duplicates and out-of-order
// arrivals collapse under earliest-wins.
func (u *reconcileUseCase) queryBroadcast(c bCtx.Ctx) ([]registry.Entry, error) {
	events, err := u.broadcast.Query(c, &broadcast.Filter{
		Kinds: []broadcast.Kind{broadcast.KindMint},
		Tags:  [][]string{{"t", broadcast.AppTag}},
	})
	if err != nil {
		return nil, err
	}

	entries := []registry.Entry{}
	for _, ev := range events {
		id := ev.TokenId()
		if err := id.Validate(); err != nil {
			continue
		}
		if _, ok := u.legacy[id]; !ok {
			if !signer.Verify(u.servicePubKey, id.Digest(), ev.TagValue(authTag)) {
				c.WithFields(log.Fields{
					"event":   ev.Id,
					"tokenId": id,
				}).Warn("dropping mint event without valid co-signature")
				continue
			}
		}
		entries = append(entries, registry.Entry{
			TokenId:  id,
			MintedAt: ev.CreatedAt,
			Minter:   ev.PubKey.ToLower(),
		})
	}
	return entries, nil
}

// mergeEarliest keeps the earliest-timestamped entry per token id, guarding
// against later, possibly malicious, re-announcements.
func mergeEarliest(byId map[domain.TokenId]registry.Entry, e registry.Entry) {
	e.TokenId = e.TokenId.ToLower()
	if prev, ok := byId[e.TokenId]; ok && prev.MintedAt <= e.MintedAt {
		return
	}
	byId[e.TokenId] = e
}
