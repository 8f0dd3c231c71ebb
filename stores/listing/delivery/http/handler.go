package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/arkpunks/goapi/base/ctx"
	"github.com/arkpunks/goapi/base/delivery"
	"github.com/arkpunks/goapi/domain"
	"github.com/arkpunks/goapi/domain/listing"
)

type handler struct {
	escrow listing.Usecase
}

// New registers the marketplace endpoints.
func New(e *echo.Echo, escrow listing.Usecase) {
	h := &handler{escrow}

	g := e.Group("/marketplace")

	g.POST("/list", h.list)
	g.POST("/buy", h.buy)
	g.POST("/execute", h.execute)
	g.POST("/cancel", h.cancel)
	g.GET("/status", h.status)
}

type listParams struct {
	TokenId             string `json:"tokenId" validate:"required,tokenid"`
	Seller              string `json:"seller" validate:"required,pubkey"`
	SellerPayoutAddress string `json:"sellerPayoutAddress" validate:"required"`
	Price               int64  `json:"price" validate:"required,gt=0"`
	DepositReference    string `json:"depositReference"`
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &listParams{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}

	res, err := h.escrow.List(ctx, &listing.Listing{
		TokenId:             domain.TokenId(p.TokenId),
		Seller:              domain.PubKey(p.Seller),
		SellerPayoutAddress: domain.ArkAddress(p.SellerPayoutAddress),
		Price:               domain.Sats(p.Price),
		DepositRef:          p.DepositReference,
	})
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

type buyParams struct {
	TokenId            string `json:"tokenId" validate:"required,tokenid"`
	Buyer              string `json:"buyer" validate:"required,pubkey"`
	BuyerPayoutAddress string `json:"buyerPayoutAddress" validate:"required"`
}

type buyResp struct {
	*listing.Quote
	// DisplayPrice is the quoted total in whole coins, for rendering only;
	// settlement arithmetic stays integer sats.
	DisplayPrice string `json:"displayPrice"`
}

func (h *handler) buy(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &buyParams{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}

	quote, err := h.escrow.RegisterBuyer(ctx, domain.TokenId(p.TokenId), domain.PubKey(p.Buyer), domain.ArkAddress(p.BuyerPayoutAddress))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	display := decimal.New(int64(quote.Price), -8).String()
	return delivery.MakeJsonResp(c, http.StatusOK, &buyResp{Quote: quote, DisplayPrice: display})
}

type executeParams struct {
	TokenId       string `json:"tokenId" validate:"required,tokenid"`
	BuyerIdentity string `json:"buyerIdentity" validate:"required,pubkey"`
}

func (h *handler) execute(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &executeParams{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}

	res, err := h.escrow.Execute(ctx, domain.TokenId(p.TokenId), domain.PubKey(p.BuyerIdentity))
	if err != nil {
		return h.conflictAware(c, ctx, domain.TokenId(p.TokenId), err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

type cancelParams struct {
	TokenId string `json:"tokenId" validate:"required,tokenid"`
	Seller  string `json:"seller" validate:"required,pubkey"`
}

func (h *handler) cancel(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &cancelParams{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err.Error())
	}

	res, err := h.escrow.Cancel(ctx, domain.TokenId(p.TokenId), domain.PubKey(p.Seller))
	if err != nil {
		return h.conflictAware(c, ctx, domain.TokenId(p.TokenId), err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) status(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	if tokenId := c.QueryParam("tokenId"); tokenId != "" {
		l, err := h.escrow.Get(ctx, domain.TokenId(tokenId))
		if err != nil {
			return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
		}
		return delivery.MakeJsonResp(c, http.StatusOK, l)
	}

	actives, err := h.escrow.GetActives(ctx)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, actives)
}

// conflictAware decorates state-conflict failures with the listing's actual
// status so clients resynchronize instead of blindly retrying.
func (h *handler) conflictAware(c echo.Context, ctx ctx.Ctx, id domain.TokenId, cause error) error {
	switch cause {
	case domain.ErrAlreadySold, domain.ErrListingRevoked, domain.ErrInvalidStatus, domain.ErrDepositMissing:
		if l, err := h.escrow.Get(ctx, id); err == nil {
			status := statusCodeFor(cause)
			return c.JSON(status, delivery.JsonResponse{
				Data:   delivery.StateConflict{Message: cause.Error(), Current: string(l.Status)},
				Status: delivery.JsonResponseStatusFail,
			})
		}
	}
	return delivery.MakeJsonResp(c, http.StatusInternalServerError, cause)
}

func statusCodeFor(cause error) int {
	switch cause {
	case domain.ErrAlreadySold:
		return http.StatusConflict
	case domain.ErrListingRevoked:
		return http.StatusGone
	default:
		return http.StatusBadRequest
	}
}
