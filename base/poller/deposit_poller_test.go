package poller

import (
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/arkpunks/goapi/base/ctx"
	"github.com/arkpunks/goapi/domain"
	"github.com/arkpunks/goapi/domain/listing"
	mListing "github.com/arkpunks/goapi/domain/listing/mocks"
	mWallet "github.com/arkpunks/goapi/domain/mocks"
)

type depositPollerTestSuite struct {
	suite.Suite

	escrow *mListing.Usecase
	wallet *mWallet.Wallet
	poller *DepositPoller
}

func (s *depositPollerTestSuite) SetupTest() {
	s.escrow = &mListing.Usecase{}
	s.wallet = &mWallet.Wallet{}
	s.poller = NewDepositPoller(&DepositPollerCfg{
		Escrow:              s.escrow,
		Wallet:              s.wallet,
		Interval:            time.Second,
		CollateralAmount:    10000,
		CollateralTolerance: 100,
	})
}

func TestDepositPollerTestSuite(t *testing.T) {
	suite.Run(t, new(depositPollerTestSuite))
}

func (s *depositPollerTestSuite) waitFor(done chan struct{}) {
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		s.FailNow("timed out waiting for deposit recording")
	}
}

func (s *depositPollerTestSuite) TestSweepPromotesFundedListing() {
	c := ctx.Background()
	id := domain.TokenId("aa0d5c16e6f45e6e3b53a2c7f3b6a9d1d4e8b7c6a5f4e3d2c1b0a9f8e7d6c5b4")

	s.escrow.On("GetActives", mock.Anything).Return([]*listing.Listing{
		{TokenId: id, Status: listing.StatusPending},
	}, nil).Once()
	s.wallet.On("SpendableCoins", mock.Anything).Return([]domain.Coin{
		{Id: "tx0:0", Amount: 10050},
	}, nil).Once()

	done := make(chan struct{})
	s.escrow.On("RecordDeposit", mock.Anything, id).Return(nil).Once().Run(func(mock.Arguments) {
		close(done)
	})

	s.Nil(s.poller.Sweep(c))
	s.waitFor(done)
	s.escrow.AssertExpectations(s.T())
}

func (s *depositPollerTestSuite) TestSweepSkipsWhenNoMatchingCoin() {
	c := ctx.Background()
	id := domain.TokenId("aa0d5c16e6f45e6e3b53a2c7f3b6a9d1d4e8b7c6a5f4e3d2c1b0a9f8e7d6c5b4")

	s.escrow.On("GetActives", mock.Anything).Return([]*listing.Listing{
		{TokenId: id, Status: listing.StatusPending},
	}, nil).Once()
	// below the collateral range, and above it
	s.wallet.On("SpendableCoins", mock.Anything).Return([]domain.Coin{
		{Id: "tx0:0", Amount: 9000},
		{Id: "tx1:0", Amount: 20000},
	}, nil).Once()

	s.Nil(s.poller.Sweep(c))
	time.Sleep(100 * time.Millisecond)
	s.escrow.AssertNotCalled(s.T(), "RecordDeposit", mock.Anything, mock.Anything)
}

func (s *depositPollerTestSuite) TestSweepIgnoresDepositedListings() {
	c := ctx.Background()

	s.escrow.On("GetActives", mock.Anything).Return([]*listing.Listing{
		{TokenId: "bb", Status: listing.StatusDeposited},
	}, nil).Once()

	s.Nil(s.poller.Sweep(c))
	s.wallet.AssertNotCalled(s.T(), "SpendableCoins", mock.Anything)
}

func (s *depositPollerTestSuite) TestSweepCapsPromotionsByCoinCount() {
	c := ctx.Background()
	id1 := domain.TokenId("11116aa0d5c16e6f45e6e3b53a2c7f3b6a9d1d4e8b7c6a5f4e3d2c1b0a9f8e79")
	id2 := domain.TokenId("22226aa0d5c16e6f45e6e3b53a2c7f3b6a9d1d4e8b7c6a5f4e3d2c1b0a9f8e79")

	s.escrow.On("GetActives", mock.Anything).Return([]*listing.Listing{
		{TokenId: id1, Status: listing.StatusPending},
		{TokenId: id2, Status: listing.StatusPending},
	}, nil).Once()
	s.wallet.On("SpendableCoins", mock.Anything).Return([]domain.Coin{
		{Id: "tx0:0", Amount: 10000},
	}, nil).Once()

	done := make(chan struct{})
	s.escrow.On("RecordDeposit", mock.Anything, id1).Return(nil).Once().Run(func(mock.Arguments) {
		close(done)
	})

	s.Nil(s.poller.Sweep(c))
	s.waitFor(done)
	time.Sleep(100 * time.Millisecond)
	s.escrow.AssertNotCalled(s.T(), "RecordDeposit", mock.Anything, id2)
}

func (s *depositPollerTestSuite) TestSweepPropagatesStoreError() {
	c := ctx.Background()

	s.escrow.On("GetActives", mock.Anything).Return(nil, domain.ErrStoreUnavailable).Once()

	s.ErrorIs(s.poller.Sweep(c), domain.ErrStoreUnavailable)
}