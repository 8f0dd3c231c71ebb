package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/arkpunks/goapi/base/ctx"
	"github.com/arkpunks/goapi/base/delivery"
	"github.com/arkpunks/goapi/domain"
	"github.com/arkpunks/goapi/domain/mint"
)

type handler struct {
	gate mint.Usecase
}

// New registers the mint authorization endpoint.
func New(e *echo.Echo, gate mint.Usecase) {
	h := &handler{gate}

	e.POST("/mint/authorize", h.authorize)
}

type authorizeParams struct {
	TokenId       string `json:"tokenId" validate:"required,tokenid"`
	Identity      string `json:"identity" validate:"required,pubkey"`
	ClaimedSupply int    `json:"claimedSupply" validate:"gte=0"`
}

func (h *handler) authorize(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &authorizeParams{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}

	auth, err := h.gate.Authorize(ctx, domain.TokenId(p.TokenId), domain.PubKey(p.Identity), p.ClaimedSupply)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, auth)
}
