package broadcast

import (
	"github.com/arkpunks/goapi/base/ctx"
	"github.com/arkpunks/goapi/domain"
)

// Kind tags an event on the gossip network.
type Kind int

const (
	KindMint     Kind = 30078
	KindListing  Kind = 30079
	KindTransfer Kind = 30080
	KindSold     Kind = 30081
)

// AppTag marks events belonging to this application on the shared relays.
const AppTag = "arkpunks"

// Event is a signed, tagged record on the broadcast log. The relays give no
// delivery, ordering or uniqueness guarantee; consumers must dedupe.
type Event struct {
	Id        string          `json:"id"`
	PubKey    domain.PubKey   `json:"pubkey"`
	Kind      Kind            `json:"kind"`
	Tags      [][]string      `json:"tags"`
	Content   string          `json:"content"`
	CreatedAt domain.UnixTime `json:"created_at"`
	Sig       string          `json:"sig"`
}

// TagValue returns the first value of the named tag, or "".
func (e *Event) TagValue(name string) string {
	for _, t := range e.Tags {
		if len(t) >= 2 && t[0] == name {
			return t[1]
		}
	}
	return ""
}

func (e *Event) TokenId() domain.TokenId {
	return domain.TokenId(e.TagValue("token")).ToLower()
}

// Filter selects events on query. Zero fields match everything.
type Filter struct {
	Kinds []Kind          `json:"kinds,omitempty"`
	Tags  [][]string      `json:"tags,omitempty"`
	Since domain.UnixTime `json:"since,omitempty"`
	Limit int             `json:"limit,omitempty"`
}

// Service publishes to and queries the multi-endpoint gossip network.
//
// Publish is best effort: it succeeds once any single relay acknowledges,
// within a bounded timeout. Query fans out to every relay, merges the
// responses and dedupes by event id; it fails only when every relay failed.
type Service interface {
	Publish(c ctx.Ctx, ev *Event) error
	Query(c ctx.Ctx, f *Filter) ([]*Event, error)
}
