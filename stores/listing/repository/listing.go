package repository

import (
	"encoding/json"
	"errors"
	"sort"
	"sync"

	bCtx "github.com/arkpunks/goapi/base/ctx"
	"github.com/arkpunks/goapi/base/log"
	"github.com/arkpunks/goapi/domain"
	"github.com/arkpunks/goapi/domain/listing"
)

// listingsDoc is the persisted layout of the listings document.
type listingsDoc struct {
	Listings    map[domain.TokenId]*listing.Listing `json:"listings"`
	LastUpdated domain.UnixTime                     `json:"lastUpdated"`
}

type listingRepo struct {
	store domain.DocumentStore

	// mu serializes every read-modify-write cycle on the listings document
	// within this process. The store has no compare-and-swap, so writes from
	// other processes can still race; that limitation is documented, not
	// solved here.
	mu sync.Mutex
}

// NewListingRepo returns a listing.Repo persisted as one whole JSON document
// in the blob store.
func NewListingRepo(store domain.DocumentStore) listing.Repo {
	return &listingRepo{store: store}
}

// load reads the whole document. A missing document is the bootstrap case
// and yields an empty store; a transient failure propagates so callers never
// overwrite the document based on a failed read.
func (r *listingRepo) load(c bCtx.Ctx) (*listingsDoc, error) {
	body, err := r.store.Read(c, domain.DocListings)
	if errors.Is(err, domain.ErrNotFound) {
		return &listingsDoc{Listings: map[domain.TokenId]*listing.Listing{}}, nil
	} else if err != nil {
		c.WithField("err", err).Error("failed to read listings document")
		return nil, err
	}

	doc := &listingsDoc{}
	if err := json.Unmarshal(body, doc); err != nil {
		c.WithField("err", err).Error("failed to decode listings document")
		return nil, err
	}
	if doc.Listings == nil {
		doc.Listings = map[domain.TokenId]*listing.Listing{}
	}
	return doc, nil
}

func (r *listingRepo) save(c bCtx.Ctx, doc *listingsDoc) error {
	doc.LastUpdated = domain.Now()
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	if err := r.store.Write(c, domain.DocListings, body); err != nil {
		c.WithField("err", err).Error("failed to write listings document")
		return err
	}
	return nil
}

func (r *listingRepo) FindOne(c bCtx.Ctx, id domain.TokenId) (*listing.Listing, error) {
	doc, err := r.load(c)
	if err != nil {
		return nil, err
	}
	l, ok := doc.Listings[id.ToLower()]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *listingRepo) FindActives(c bCtx.Ctx) ([]*listing.Listing, error) {
	doc, err := r.load(c)
	if err != nil {
		return nil, err
	}
	actives := []*listing.Listing{}
	for _, l := range doc.Listings {
		if l.Status.IsActive() {
			cp := *l
			actives = append(actives, &cp)
		}
	}
	sort.Slice(actives, func(i, j int) bool {
		return actives[i].CreatedAt < actives[j].CreatedAt
	})
	return actives, nil
}

func (r *listingRepo) Create(c bCtx.Ctx, l *listing.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load(c)
	if err != nil {
		return err
	}

	id := l.TokenId.ToLower()
	if prev, ok := doc.Listings[id]; ok && prev.Status.IsActive() {
		return domain.ErrAlreadyListed
	}

	cp := *l
	cp.TokenId = id
	doc.Listings[id] = &cp
	return r.save(c, doc)
}

func (r *listingRepo) Patch(c bCtx.Ctx, id domain.TokenId, p *listing.Patchable) (*listing.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load(c)
	if err != nil {
		return nil, err
	}

	l, ok := doc.Listings[id.ToLower()]
	if !ok {
		return nil, domain.ErrNotFound
	}

	if p.Status != nil {
		l.Status = *p.Status
	}
	if p.DepositedAt != nil {
		l.DepositedAt = *p.DepositedAt
	}
	if p.SoldAt != nil {
		l.SoldAt = *p.SoldAt
	}
	if p.Buyer != nil {
		l.Buyer = *p.Buyer
	}
	if p.BuyerPayoutAddress != nil {
		l.BuyerPayoutAddress = *p.BuyerPayoutAddress
	}
	if p.SettlementRefs != nil {
		l.SettlementRefs = *p.SettlementRefs
	}

	if err := r.save(c, doc); err != nil {
		return nil, err
	}

	c.WithFields(log.Fields{
		"tokenId": id,
		"patch":   *p,
	}).Info("listing patched")

	cp := *l
	return &cp, nil
}
