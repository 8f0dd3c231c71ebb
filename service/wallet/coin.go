package wallet

import (
	"encoding/json"
	"fmt"

	"github.com/arkpunks/goapi/domain"
)

// rawCoin holds every field name observed across wallet daemon versions for
// a coin's amount and identifier. Normalization happens here, once; the core
// engine only ever sees domain.Coin.
type rawCoin struct {
	Amount *int64  `json:"amount,omitempty"`
	Value  *int64  `json:"value,omitempty"`
	Sats   *int64  `json:"sats,omitempty"`
	Id     *string `json:"id,omitempty"`
	Txid   *string `json:"txid,omitempty"`
	Vout   *uint32 `json:"vout,omitempty"`
	Point  *struct {
		Txid string `json:"txid"`
		Vout uint32 `json:"vout"`
	} `json:"outpoint,omitempty"`
}

// NormalizeCoin converts one raw daemon coin payload into the canonical
// shape, probing the known amount and outpoint field variants.
func NormalizeCoin(raw json.RawMessage) (domain.Coin, error) {
	rc := rawCoin{}
	if err := json.Unmarshal(raw, &rc); err != nil {
		return domain.Coin{}, err
	}

	coin := domain.Coin{}

	switch {
	case rc.Amount != nil:
		coin.Amount = domain.Sats(*rc.Amount)
	case rc.Value != nil:
		coin.Amount = domain.Sats(*rc.Value)
	case rc.Sats != nil:
		coin.Amount = domain.Sats(*rc.Sats)
	default:
		return domain.Coin{}, fmt.Errorf("coin without amount")
	}

	switch {
	case rc.Id != nil && *rc.Id != "":
		coin.Id = *rc.Id
	case rc.Point != nil:
		coin.Id = fmt.Sprintf("%s:%d", rc.Point.Txid, rc.Point.Vout)
	case rc.Txid != nil && *rc.Txid != "":
		vout := uint32(0)
		if rc.Vout != nil {
			vout = *rc.Vout
		}
		coin.Id = fmt.Sprintf("%s:%d", *rc.Txid, vout)
	default:
		return domain.Coin{}, fmt.Errorf("coin without identifier")
	}

	return coin, nil
}

// normalizeAmount accepts either a bare number or an object with a known
// amount field, both observed across daemon versions.
func normalizeAmount(raw json.RawMessage) (domain.Sats, bool) {
	if len(raw) == 0 {
		return 0, false
	}

	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return domain.Sats(n), true
	}

	rc := rawCoin{}
	if err := json.Unmarshal(raw, &rc); err != nil {
		return 0, false
	}
	switch {
	case rc.Amount != nil:
		return domain.Sats(*rc.Amount), true
	case rc.Value != nil:
		return domain.Sats(*rc.Value), true
	case rc.Sats != nil:
		return domain.Sats(*rc.Sats), true
	}
	return 0, false
}
