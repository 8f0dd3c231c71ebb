package repository

import (
	"encoding/json"
	"errors"
	"sync"

	bCtx "github.com/arkpunks/goapi/base/ctx"
	"github.com/arkpunks/goapi/domain"
	"github.com/arkpunks/goapi/domain/registry"
)

type registryRepo struct {
	store domain.DocumentStore

	// wmu serializes whitelist read-modify-write cycles in this process.
	wmu sync.Mutex
}

// NewRegistryRepo returns a registry.Repo over the registry and whitelist
// documents. The registry document is written transactionally elsewhere and
// is read-only here; only the whitelist is appended to.
func NewRegistryRepo(store domain.DocumentStore) registry.Repo {
	return &registryRepo{store: store}
}

func (r *registryRepo) GetRegistry(c bCtx.Ctx) (*registry.Doc, error) {
	body, err := r.store.Read(c, domain.DocRegistry)
	if err != nil {
		return nil, err
	}

	doc := &registry.Doc{}
	if err := json.Unmarshal(body, doc); err != nil {
		c.WithField("err", err).Error("failed to decode registry document")
		return nil, err
	}
	return doc, nil
}

func (r *registryRepo) GetWhitelist(c bCtx.Ctx) (*registry.WhitelistDoc, error) {
	body, err := r.store.Read(c, domain.DocWhitelist)
	if errors.Is(err, domain.ErrNotFound) {
		return &registry.WhitelistDoc{}, nil
	} else if err != nil {
		return nil, err
	}

	doc := &registry.WhitelistDoc{}
	if err := json.Unmarshal(body, doc); err != nil {
		c.WithField("err", err).Error("failed to decode whitelist document")
		return nil, err
	}
	return doc, nil
}

func (r *registryRepo) AppendWhitelist(c bCtx.Ctx, e *registry.WhitelistEntry) error {
	r.wmu.Lock()
	defer r.wmu.Unlock()

	doc, err := r.GetWhitelist(c)
	if err != nil {
		// an unreadable whitelist must not be clobbered by an empty rewrite
		return err
	}

	id := e.TokenId.ToLower()
	for _, existing := range doc.Entries {
		if existing.TokenId.ToLower() == id {
			return nil
		}
	}

	cp := *e
	cp.TokenId = id
	doc.Entries = append(doc.Entries, cp)
	doc.LastUpdated = domain.Now()

	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	if err := r.store.Write(c, domain.DocWhitelist, body); err != nil {
		c.WithField("err", err).Error("failed to write whitelist document")
		return err
	}
	return nil
}
