package usecase

import (
	"crypto/ecdsa"
	"encoding/hex"
	"encoding/json"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/arkpunks/goapi/base/ctx"
	"github.com/arkpunks/goapi/base/signer"
	"github.com/arkpunks/goapi/domain"
	"github.com/arkpunks/goapi/domain/broadcast"
	bMocks "github.com/arkpunks/goapi/domain/broadcast/mocks"
	"github.com/arkpunks/goapi/domain/registry"
	"github.com/arkpunks/goapi/service/cache"
	"github.com/arkpunks/goapi/service/cache/provider/primitive"
	"github.com/arkpunks/goapi/service/docstore"
	"github.com/arkpunks/goapi/stores/registry/repository"
)

var mockCtx = ctx.Background()

const (
	tokenA = domain.TokenId("c67e1a33e9ab5d773a4f1cc383bdf4d1b1c778f51a86b6bd9cfd40cf05af1ef2")
	tokenB = domain.TokenId("11119a33e9ab5d773a4f1cc383bdf4d1b1c778f51a86b6bd9cfd40cf05af1ef2")
	tokenC = domain.TokenId("33339a33e9ab5d773a4f1cc383bdf4d1b1c778f51a86b6bd9cfd40cf05af1ef2")
)

type reconcileTestSuite struct {
	suite.Suite

	store     *docstore.MemoryStore
	broadcast *bMocks.Service
	sgn       *signer.Signer
	uc        registry.Usecase
}

func (s *reconcileTestSuite) SetupTest() {
	s.store = docstore.NewMemoryStore()
	s.broadcast = &bMocks.Service{}

	priv, err := crypto.GenerateKey()
	s.Require().NoError(err)
	s.sgn = s.newSigner(priv)

	s.uc = NewReconcileUseCase(&ReconcileUseCaseCfg{
		Repo:      repository.NewRegistryRepo(s.store),
		Broadcast: s.broadcast,
		Cache: cache.New(cache.ServiceConfig{
			Ttl:   30 * time.Second,
			Pfx:   "test",
			Cache: primitive.NewPrimitive("test", 8),
		}),
		ServicePubKey:   s.sgn.PubKey(),
		LegacyAllowList: []domain.TokenId{tokenC},
	})
}

func (s *reconcileTestSuite) newSigner(priv *ecdsa.PrivateKey) *signer.Signer {
	sgn, err := signer.NewFromHex(hex.EncodeToString(crypto.FromECDSA(priv)))
	s.Require().NoError(err)
	return sgn
}

func TestReconcileTestSuite(t *testing.T) {
	suite.Run(t, new(reconcileTestSuite))
}

func (s *reconcileTestSuite) writeRegistry(entries ...registry.Entry) {
	body, err := json.Marshal(registry.Doc{Entries: entries, LastUpdated: domain.Now()})
	s.Require().NoError(err)
	s.Require().NoError(s.store.Write(mockCtx, domain.DocRegistry, body))
}

func (s *reconcileTestSuite) mintEvent(id domain.TokenId, at domain.UnixTime, signed bool) *broadcast.Event {
	ev := &broadcast.Event{
		Id:        string(id)[:8] + time.Now().String(),
		PubKey:    "02aa",
		Kind:      broadcast.KindMint,
		Tags:      [][]string{{"t", broadcast.AppTag}, {"token", string(id)}},
		CreatedAt: at,
	}
	if signed {
		sig, err := s.sgn.Sign(id.Digest())
		s.Require().NoError(err)
		ev.Tags = append(ev.Tags, []string{authTag, sig})
	}
	return ev
}

func (s *reconcileTestSuite) TestRegistryDocumentIsAuthoritative() {
	s.writeRegistry(
		registry.Entry{TokenId: tokenA, MintedAt: 100},
		registry.Entry{TokenId: tokenB, MintedAt: 200},
	)

	supply, err := s.uc.Supply(mockCtx)
	s.NoError(err)
	s.Equal(2, supply.Total)
	s.Equal("registry", supply.Source)

	// the broadcast log must not have been queried at all
	s.broadcast.AssertNotCalled(s.T(), "Query", mock.Anything, mock.Anything)
}

func (s *reconcileTestSuite) TestBroadcastFallbackVerifiesSignatures() {
	s.broadcast.On("Query", mock.Anything, mock.Anything).Return([]*broadcast.Event{
		s.mintEvent(tokenA, 100, true),
		s.mintEvent(tokenB, 200, false), // no co-signature, not legacy
		s.mintEvent(tokenC, 300, false), // legacy allow-list
	}, nil).Once()

	supply, err := s.uc.Supply(mockCtx)
	s.NoError(err)
	s.Equal(2, supply.Total)
	s.Equal("broadcast", supply.Source)

	official, err := s.uc.IsOfficial(mockCtx, tokenA)
	s.NoError(err)
	s.True(official)

	official, err = s.uc.IsOfficial(mockCtx, tokenB)
	s.NoError(err)
	s.False(official)
}

func (s *reconcileTestSuite) TestEarliestWinsRegardlessOfArrivalOrder() {
	// later event arrives first in the merged slice
	s.broadcast.On("Query", mock.Anything, mock.Anything).Return([]*broadcast.Event{
		s.mintEvent(tokenA, 500, true),
		s.mintEvent(tokenA, 100, true),
		s.mintEvent(tokenA, 300, true),
	}, nil).Once()

	entries, err := s.uc.Entries(mockCtx)
	s.NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(domain.UnixTime(100), entries[0].MintedAt)
}

func (s *reconcileTestSuite) TestWhitelistMergedIn() {
	s.writeRegistry(registry.Entry{TokenId: tokenA, MintedAt: 100})
	s.NoError(s.uc.SubmitWhitelist(mockCtx, tokenB, "02bb"))

	supply, err := s.uc.Supply(mockCtx)
	s.NoError(err)
	s.Equal(2, supply.Total)
	s.Equal("registry", supply.Source)

	official, err := s.uc.IsOfficial(mockCtx, tokenB)
	s.NoError(err)
	s.True(official)
}

func (s *reconcileTestSuite) TestWhitelistDoesNotOverrideEarlierEntry() {
	s.writeRegistry(registry.Entry{TokenId: tokenA, MintedAt: 100, Minter: "02aa"})
	s.NoError(s.uc.SubmitWhitelist(mockCtx, tokenA, "02bb"))

	entries, err := s.uc.Entries(mockCtx)
	s.NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(domain.PubKey("02aa"), entries[0].Minter)
}

func (s *reconcileTestSuite) TestWhitelistOnlyFallback() {
	s.broadcast.On("Query", mock.Anything, mock.Anything).Return(nil, domain.ErrNoRelayAck).Once()
	s.NoError(s.uc.SubmitWhitelist(mockCtx, tokenA, "02bb"))

	supply, err := s.uc.Supply(mockCtx)
	s.NoError(err)
	s.Equal(1, supply.Total)
	s.Equal("whitelist", supply.Source)
}

func (s *reconcileTestSuite) TestSubmitWhitelistValidatesFormat() {
	s.ErrorIs(s.uc.SubmitWhitelist(mockCtx, "zzz", "02bb"), domain.ErrInvalidTokenId)
}

func (s *reconcileTestSuite) TestResultIsCached() {
	s.broadcast.On("Query", mock.Anything, mock.Anything).Return([]*broadcast.Event{
		s.mintEvent(tokenA, 100, true),
	}, nil).Once()

	_, err := s.uc.Supply(mockCtx)
	s.NoError(err)

	// second call is served from cache; the single Once expectation would
	// fail the suite if Query ran again
	supply, err := s.uc.Supply(mockCtx)
	s.NoError(err)
	s.Equal(1, supply.Total)

	s.broadcast.AssertExpectations(s.T())
}

func (s *reconcileTestSuite) TestDuplicateRelayEventsCollapse() {
	ev := s.mintEvent(tokenA, 100, true)
	s.broadcast.On("Query", mock.Anything, mock.Anything).Return([]*broadcast.Event{ev, ev, ev}, nil).Once()

	supply, err := s.uc.Supply(mockCtx)
	s.NoError(err)
	s.Equal(1, supply.Total)
}
