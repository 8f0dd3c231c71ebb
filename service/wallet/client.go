package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	bCtx "github.com/arkpunks/goapi/base/ctx"
	"github.com/arkpunks/goapi/base/log"
	"github.com/arkpunks/goapi/base/metrics"
	"github.com/arkpunks/goapi/domain"
)

var (
	ErrStatusCodeNotOk = errors.New("http.status != 200")
)

// ClientCfg configures the client for the custodial wallet daemon. Every
// call carries a client-side timeout; the daemon itself gives none.
type ClientCfg struct {
	HttpClient http.Client
	BaseUrl    string
	Timeout    time.Duration
}

type client struct {
	httpClient http.Client
	baseUrl    string
	met        metrics.Service
}

// NewClient returns a domain.Wallet over the wallet daemon's REST API.
func NewClient(cfg *ClientCfg) domain.Wallet {
	httpClient := cfg.HttpClient
	httpClient.Timeout = cfg.Timeout
	if httpClient.Timeout == 0 {
		httpClient.Timeout = 15 * time.Second
	}
	return &client{
		httpClient: httpClient,
		baseUrl:    strings.TrimRight(cfg.BaseUrl, "/"),
		met:        metrics.New("wallet"),
	}
}

type addressResp struct {
	Address string `json:"address"`
}

type balanceResp struct {
	// Spendable is probed across daemon versions, see normalizeAmount.
	Spendable json.RawMessage `json:"spendable"`
	Total     json.RawMessage `json:"total"`
}

type coinsResp struct {
	Coins []json.RawMessage `json:"coins"`
}

type sendReq struct {
	Address string `json:"address"`
	Amount  int64  `json:"amount"`
}

type sendResp struct {
	Txid string `json:"txid"`
}

func (cl *client) get(c bCtx.Ctx, path string, out interface{}) error {
	defer cl.met.BumpTime("request.latency", "path", path).End()

	req, err := http.NewRequestWithContext(c, http.MethodGet, cl.baseUrl+path, nil)
	if err != nil {
		return err
	}
	resp, err := cl.httpClient.Do(req)
	if err != nil {
		cl.met.BumpSum("request.err", 1, "path", path)
		c.WithFields(log.Fields{"path": path, "err": err}).Error("wallet request failed")
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		cl.met.BumpSum("request.err", 1, "path", path)
		return ErrStatusCodeNotOk
	}

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

func (cl *client) post(c bCtx.Ctx, path string, in interface{}, out interface{}) error {
	defer cl.met.BumpTime("request.latency", "path", path).End()

	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(c, http.MethodPost, cl.baseUrl+path, strings.NewReader(string(payload)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := cl.httpClient.Do(req)
	if err != nil {
		cl.met.BumpSum("request.err", 1, "path", path)
		c.WithFields(log.Fields{"path": path, "err": err}).Error("wallet request failed")
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		cl.met.BumpSum("request.err", 1, "path", path)
		return ErrStatusCodeNotOk
	}

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

func (cl *client) Address(c bCtx.Ctx) (domain.ArkAddress, error) {
	res := addressResp{}
	if err := cl.get(c, "/v1/address", &res); err != nil {
		return "", err
	}
	return domain.ArkAddress(res.Address), nil
}

func (cl *client) Balance(c bCtx.Ctx) (domain.Sats, error) {
	res := balanceResp{}
	if err := cl.get(c, "/v1/balance", &res); err != nil {
		return 0, err
	}
	if amount, ok := normalizeAmount(res.Spendable); ok {
		return amount, nil
	}
	if amount, ok := normalizeAmount(res.Total); ok {
		return amount, nil
	}
	return 0, fmt.Errorf("unrecognized balance payload")
}

func (cl *client) SpendableCoins(c bCtx.Ctx) ([]domain.Coin, error) {
	res := coinsResp{}
	if err := cl.get(c, "/v1/coins", &res); err != nil {
		return nil, err
	}
	coins := make([]domain.Coin, 0, len(res.Coins))
	for _, raw := range res.Coins {
		coin, err := NormalizeCoin(raw)
		if err != nil {
			c.WithFields(log.Fields{"raw": string(raw), "err": err}).Warn("skipping unrecognized coin shape")
			continue
		}
		coins = append(coins, coin)
	}
	return coins, nil
}

func (cl *client) Send(c bCtx.Ctx, to domain.ArkAddress, amount domain.Sats) (domain.TxRef, error) {
	res := sendResp{}
	if err := cl.post(c, "/v1/send", &sendReq{Address: string(to), Amount: int64(amount)}, &res); err != nil {
		return "", err
	}
	return domain.TxRef(res.Txid), nil
}
