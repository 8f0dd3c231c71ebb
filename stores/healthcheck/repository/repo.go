package repository

import (
	"errors"
	"time"

	"github.com/arkpunks/goapi/base/ctx"
	"github.com/arkpunks/goapi/domain"
	hcdomain "github.com/arkpunks/goapi/domain/healthcheck"
)

type impl struct {
	store  domain.DocumentStore
	wallet domain.Wallet
}

// New creates new healthCheckRepo object representation of HealthCheckRepo interface
func New(store domain.DocumentStore, wallet domain.Wallet) hcdomain.HealthCheckRepo {
	return &impl{
		store:  store,
		wallet: wallet,
	}
}

func (im *impl) PingDeps(context ctx.Ctx) error {
	ctx, cancel := ctx.WithTimeout(context, 2*time.Second)
	defer cancel()

	// a missing probe document still proves the store answered
	if _, err := im.store.Read(ctx, "healthcheck"); err != nil && !errors.Is(err, domain.ErrNotFound) {
		context.WithField("err", err).Error("ping document store error")
		return err
	}

	if _, err := im.wallet.Balance(ctx); err != nil {
		context.WithField("err", err).Error("ping wallet error")
		return err
	}
	return nil
}
