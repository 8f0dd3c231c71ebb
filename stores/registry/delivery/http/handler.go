package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/arkpunks/goapi/base/ctx"
	"github.com/arkpunks/goapi/base/delivery"
	"github.com/arkpunks/goapi/domain"
	"github.com/arkpunks/goapi/domain/registry"
	mmiddleware "github.com/arkpunks/goapi/middleware"
)

type handler struct {
	registry registry.Usecase
}

// New registers the registry reconciliation endpoints.
func New(e *echo.Echo, reg registry.Usecase) {
	h := &handler{reg}

	g := e.Group("/registry")

	g.GET("/supply", h.supply)
	g.GET("/list", h.list)
	g.GET("/official/:tokenId", h.official, mmiddleware.IsValidTokenId("tokenId"))
	g.POST("/whitelist", h.submitWhitelist)
}

func (h *handler) supply(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	supply, err := h.registry.Supply(ctx)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, supply)
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	entries, err := h.registry.Entries(ctx)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, entries)
}

func (h *handler) official(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	official, err := h.registry.IsOfficial(ctx, domain.TokenId(c.Param("tokenId")))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, map[string]bool{"official": official})
}

type whitelistParams struct {
	TokenId           string `json:"tokenId" validate:"required,tokenid"`
	SubmitterIdentity string `json:"submitterIdentity" validate:"omitempty,pubkey"`
}

func (h *handler) submitWhitelist(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &whitelistParams{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}

	if err := h.registry.SubmitWhitelist(ctx, domain.TokenId(p.TokenId), domain.PubKey(p.SubmitterIdentity)); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "submitted")
}
