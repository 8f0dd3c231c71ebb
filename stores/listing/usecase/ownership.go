package usecase

import (
	"encoding/json"

	bCtx "github.com/arkpunks/goapi/base/ctx"
	"github.com/arkpunks/goapi/domain"
	"github.com/arkpunks/goapi/domain/broadcast"
	"github.com/arkpunks/goapi/domain/listing"
)

type broadcastOwnership struct {
	broadcast broadcast.Service
}

// NewBroadcastOwnership resolves current ownership from the public broadcast
// log: the latest transfer event's receiver wins, falling back to the mint
// event's author when the token was never transferred.
func NewBroadcastOwnership(b broadcast.Service) listing.OwnershipChecker {
	return &broadcastOwnership{broadcast: b}
}

func (o *broadcastOwnership) Owns(c bCtx.Ctx, id domain.TokenId, owner domain.PubKey) (bool, error) {
	events, err := o.broadcast.Query(c, &broadcast.Filter{
		Kinds: []broadcast.Kind{broadcast.KindMint, broadcast.KindTransfer},
		Tags:  [][]string{{"token", string(id.ToLower())}},
	})
	if err != nil {
		return false, err
	}

	var latestTransfer *broadcast.Event
	var mint *broadcast.Event
	for _, ev := range events {
		if ev.TokenId() != id.ToLower() {
			continue
		}
		switch ev.Kind {
		case broadcast.KindTransfer:
			if latestTransfer == nil || ev.CreatedAt > latestTransfer.CreatedAt {
				latestTransfer = ev
			}
		case broadcast.KindMint:
			if mint == nil || ev.CreatedAt < mint.CreatedAt {
				mint = ev
			}
		}
	}

	if latestTransfer != nil {
		content := settlementContent{}
		if err := json.Unmarshal([]byte(latestTransfer.Content), &content); err == nil && !content.Buyer.IsEmpty() {
			return content.Buyer.Equals(owner), nil
		}
		// transfer without parseable content falls back to the receiver tag
		if to := latestTransfer.TagValue("p"); to != "" {
			return domain.PubKey(to).Equals(owner), nil
		}
		return false, nil
	}

	if mint != nil {
		return mint.PubKey.Equals(owner) || domain.PubKey(mint.TagValue("p")).Equals(owner), nil
	}

	// nothing known about the token on the log
	return false, nil
}
