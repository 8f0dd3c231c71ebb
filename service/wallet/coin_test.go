package wallet

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/arkpunks/goapi/domain"
)

type CoinTestSuite struct {
	suite.Suite
}

func (s *CoinTestSuite) TestNormalizeCoin() {
	tests := []struct {
		desc    string
		raw     string
		expCoin domain.Coin
		expErr  bool
	}{
		{
			desc:    "amount and id",
			raw:     `{"id":"abc:0","amount":10000}`,
			expCoin: domain.Coin{Id: "abc:0", Amount: 10000},
		},
		{
			desc:    "value and outpoint object",
			raw:     `{"value":50000,"outpoint":{"txid":"dead","vout":2}}`,
			expCoin: domain.Coin{Id: "dead:2", Amount: 50000},
		},
		{
			desc:    "sats with txid and vout",
			raw:     `{"sats":123,"txid":"beef","vout":1}`,
			expCoin: domain.Coin{Id: "beef:1", Amount: 123},
		},
		{
			desc:    "txid without vout defaults to 0",
			raw:     `{"amount":1,"txid":"beef"}`,
			expCoin: domain.Coin{Id: "beef:0", Amount: 1},
		},
		{
			desc:   "missing amount",
			raw:    `{"id":"abc:0"}`,
			expErr: true,
		},
		{
			desc:   "missing identifier",
			raw:    `{"amount":10}`,
			expErr: true,
		},
	}
	for _, t := range tests {
		coin, err := NormalizeCoin(json.RawMessage(t.raw))
		if t.expErr {
			s.Error(err, t.desc)
			continue
		}
		s.NoError(err, t.desc)
		s.Equal(t.expCoin, coin, t.desc)
	}
}

func (s *CoinTestSuite) TestNormalizeAmount() {
	tests := []struct {
		desc   string
		raw    string
		exp    domain.Sats
		expOk  bool
	}{
		{desc: "bare number", raw: `42`, exp: 42, expOk: true},
		{desc: "amount object", raw: `{"amount":42}`, exp: 42, expOk: true},
		{desc: "value object", raw: `{"value":7}`, exp: 7, expOk: true},
		{desc: "empty", raw: ``, expOk: false},
		{desc: "unknown shape", raw: `{"foo":1}`, expOk: false},
	}
	for _, t := range tests {
		got, ok := normalizeAmount(json.RawMessage(t.raw))
		s.Equal(t.expOk, ok, t.desc)
		if t.expOk {
			s.Equal(t.exp, got, t.desc)
		}
	}
}

func TestCoinTestSuite(t *testing.T) {
	suite.Run(t, new(CoinTestSuite))
}
