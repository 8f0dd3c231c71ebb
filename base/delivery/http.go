package delivery

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/arkpunks/goapi/domain"
)

type JsonResponseStatus string

const (
	JsonResponseStatusSuccess JsonResponseStatus = "success"
	JsonResponseStatusFail    JsonResponseStatus = "fail"
)

type JsonResponse struct {
	Data   interface{}        `json:"data"`
	Status JsonResponseStatus `json:"status"`
}

// StateConflict is the payload of a state-conflict error response. It carries
// the listing's actual status so the client can resynchronize instead of
// blindly retrying.
type StateConflict struct {
	Message string `json:"message"`
	Current string `json:"current"`
}

func MakeJsonResp(c echo.Context, status int, data interface{}) error {
	if err, ok := data.(error); ok {
		if s, ok := statusOf(err); ok {
			status = s
		}
		data = err.Error()
	}

	if status >= 400 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusFail})
	}

	if status >= 200 && status < 300 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusSuccess})
	}

	return c.JSON(status, data)
}

// statusOf maps domain sentinel errors onto the response taxonomy:
// validation 400, authorization 403, not found 404, state conflict 409/410,
// rate limit 429, external dependency 5xx.
func statusOf(err error) (int, bool) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, domain.ErrBadParamInput),
		errors.Is(err, domain.ErrInvalidTokenId),
		errors.Is(err, domain.ErrInvalidPubKey),
		errors.Is(err, domain.ErrAlreadyListed),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrDepositMissing),
		errors.Is(err, domain.ErrInsufficientBalance):
		return http.StatusBadRequest, true
	case errors.Is(err, domain.ErrNotSeller),
		errors.Is(err, domain.ErrNotOwner),
		errors.Is(err, domain.ErrBuyerMismatch),
		errors.Is(err, domain.ErrInvalidSignature),
		errors.Is(err, domain.ErrSupplyCapReached):
		return http.StatusForbidden, true
	case errors.Is(err, domain.ErrAlreadySold),
		errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, true
	case errors.Is(err, domain.ErrListingRevoked):
		return http.StatusGone, true
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, true
	case errors.Is(err, domain.ErrStoreUnavailable),
		errors.Is(err, domain.ErrNoRelayAck):
		return http.StatusServiceUnavailable, true
	}
	return 0, false
}
