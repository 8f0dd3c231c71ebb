package registry

import (
	"github.com/arkpunks/goapi/base/ctx"
	"github.com/arkpunks/goapi/domain"
)

// Entry is one minted token in the durable registry. Append-only; duplicates
// by token id are collapsed keeping the earliest.
type Entry struct {
	TokenId    domain.TokenId  `json:"tokenId"`
	MintedAt   domain.UnixTime `json:"mintedAt"`
	Minter     domain.PubKey   `json:"minter,omitempty"`
	DepositRef string          `json:"depositRef,omitempty"`
}

// Doc is the persisted registry document layout.
type Doc struct {
	Entries     []Entry         `json:"entries"`
	LastUpdated domain.UnixTime `json:"lastUpdated"`
}

// WhitelistEntry is a client-submitted token id recovering a mint that was
// never broadcast. Trusted on format validation only.
type WhitelistEntry struct {
	TokenId     domain.TokenId  `json:"tokenId"`
	SubmittedAt domain.UnixTime `json:"submittedAt"`
	Submitter   domain.PubKey   `json:"submitterIdentity,omitempty"`
}

// WhitelistDoc is the persisted whitelist document layout.
type WhitelistDoc struct {
	Entries     []WhitelistEntry `json:"entries"`
	LastUpdated domain.UnixTime  `json:"lastUpdated"`
}

// Repo reads and writes the registry and whitelist documents.
type Repo interface {
	// GetRegistry returns domain.ErrNotFound when the document was never
	// written.
	GetRegistry(c ctx.Ctx) (*Doc, error)
	GetWhitelist(c ctx.Ctx) (*WhitelistDoc, error)
	AppendWhitelist(c ctx.Ctx, e *WhitelistEntry) error
}

// Supply is the reconciled canonical view of the mint set.
type Supply struct {
	Total int `json:"total"`
	// Source names the highest-precedence source that contributed the base
	// set: "registry", "broadcast" or "whitelist".
	Source     string          `json:"source"`
	ComputedAt domain.UnixTime `json:"computedAt"`
}

// Usecase reconciles the durable registry document, the broadcast log and
// the client-submitted whitelist into one canonical membership set.
type Usecase interface {
	Supply(c ctx.Ctx) (*Supply, error)
	IsOfficial(c ctx.Ctx, id domain.TokenId) (bool, error)
	Entries(c ctx.Ctx) ([]Entry, error)
	SubmitWhitelist(c ctx.Ctx, id domain.TokenId, submitter domain.PubKey) error
}
