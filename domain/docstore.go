package domain

import (
	"github.com/arkpunks/goapi/base/ctx"
)

// Document names persisted in the blob store. The store only supports
// whole-document read and whole-document overwrite, so every mutation is a
// read-modify-write over one of these.
const (
	DocListings  = "listings.json"
	DocRegistry  = "registry.json"
	DocWhitelist = "whitelist.json"
)

// DocumentStore is the durable key-value blob service. Read returns
// ErrNotFound when the document does not exist and ErrStoreUnavailable on
// transient failure so callers can tell "empty" apart from "unreadable".
type DocumentStore interface {
	Read(c ctx.Ctx, name string) ([]byte, error)
	Write(c ctx.Ctx, name string, body []byte) error
	List(c ctx.Ctx, prefix string) ([]string, error)
}
