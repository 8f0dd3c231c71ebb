package repository

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/arkpunks/goapi/base/ctx"
	"github.com/arkpunks/goapi/domain"
	"github.com/arkpunks/goapi/domain/listing"
	"github.com/arkpunks/goapi/service/docstore"
)

var mockCtx = ctx.Background()

const (
	tokenA = domain.TokenId("c67e1a33e9ab5d773a4f1cc383bdf4d1b1c778f51a86b6bd9cfd40cf05af1ef2")
	tokenB = domain.TokenId("11119a33e9ab5d773a4f1cc383bdf4d1b1c778f51a86b6bd9cfd40cf05af1ef2")
)

type repoTestSuite struct {
	suite.Suite
	store *docstore.MemoryStore
	repo  listing.Repo
}

func (s *repoTestSuite) SetupTest() {
	s.store = docstore.NewMemoryStore()
	s.repo = NewListingRepo(s.store)
}

func TestListingRepoSuite(t *testing.T) {
	suite.Run(t, new(repoTestSuite))
}

func newPending(id domain.TokenId) *listing.Listing {
	return &listing.Listing{
		TokenId:             id,
		Seller:              "02aa",
		SellerPayoutAddress: "ark1seller",
		Price:               50000,
		EscrowAddress:       "ark1escrow",
		Status:              listing.StatusPending,
		CreatedAt:           domain.Now(),
	}
}

func (s *repoTestSuite) TestBootstrapEmpty() {
	_, err := s.repo.FindOne(mockCtx, tokenA)
	s.ErrorIs(err, domain.ErrNotFound)

	actives, err := s.repo.FindActives(mockCtx)
	s.NoError(err)
	s.Empty(actives)
}

func (s *repoTestSuite) TestCreateAndFind() {
	s.NoError(s.repo.Create(mockCtx, newPending(tokenA)))

	got, err := s.repo.FindOne(mockCtx, tokenA)
	s.NoError(err)
	s.Equal(listing.StatusPending, got.Status)
	s.Equal(domain.Sats(50000), got.Price)

	actives, err := s.repo.FindActives(mockCtx)
	s.NoError(err)
	s.Len(actives, 1)
}

func (s *repoTestSuite) TestRejectSecondActiveListing() {
	s.NoError(s.repo.Create(mockCtx, newPending(tokenA)))
	err := s.repo.Create(mockCtx, newPending(tokenA))
	s.ErrorIs(err, domain.ErrAlreadyListed)

	// a different token is fine
	s.NoError(s.repo.Create(mockCtx, newPending(tokenB)))
}

func (s *repoTestSuite) TestRelistAfterTerminal() {
	s.NoError(s.repo.Create(mockCtx, newPending(tokenA)))

	cancelled := listing.StatusCancelled
	_, err := s.repo.Patch(mockCtx, tokenA, &listing.Patchable{Status: &cancelled})
	s.NoError(err)

	// terminal record is overwritten by a fresh listing
	s.NoError(s.repo.Create(mockCtx, newPending(tokenA)))
	got, err := s.repo.FindOne(mockCtx, tokenA)
	s.NoError(err)
	s.Equal(listing.StatusPending, got.Status)
}

func (s *repoTestSuite) TestPatch() {
	s.NoError(s.repo.Create(mockCtx, newPending(tokenA)))

	deposited := listing.StatusDeposited
	now := domain.Now()
	got, err := s.repo.Patch(mockCtx, tokenA, &listing.Patchable{
		Status:      &deposited,
		DepositedAt: &now,
	})
	s.NoError(err)
	s.Equal(listing.StatusDeposited, got.Status)
	s.Equal(now, got.DepositedAt)

	refs := []domain.TxRef{"tx1"}
	got, err = s.repo.Patch(mockCtx, tokenA, &listing.Patchable{SettlementRefs: &refs})
	s.NoError(err)
	s.Equal(refs, got.SettlementRefs)
	s.Equal(listing.StatusDeposited, got.Status, "untouched fields survive")
}

func (s *repoTestSuite) TestPatchMissing() {
	_, err := s.repo.Patch(mockCtx, tokenA, &listing.Patchable{Status: ptrStatus(listing.StatusSold)})
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *repoTestSuite) TestUnreadableStoreAbortsWrite() {
	s.NoError(s.repo.Create(mockCtx, newPending(tokenA)))

	s.store.Unavailable = true
	err := s.repo.Create(mockCtx, newPending(tokenB))
	s.ErrorIs(err, domain.ErrStoreUnavailable)
	s.store.Unavailable = false

	// the earlier listing must not have been wiped by an empty overwrite
	got, err := s.repo.FindOne(mockCtx, tokenA)
	s.NoError(err)
	s.Equal(listing.StatusPending, got.Status)
}

func ptrStatus(st listing.Status) *listing.Status {
	return &st
}
