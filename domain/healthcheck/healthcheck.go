package healthcheck

import (
	"github.com/arkpunks/goapi/base/ctx"
)

// HealthCheckUsecase represents the healthCheck's usecases
type HealthCheckUsecase interface {
	Check(context ctx.Ctx) error
}

// HealthCheckRepo is repository layer of healthCheck, probing the service dependencies
type HealthCheckRepo interface {
	PingDeps(context ctx.Ctx) error
}
