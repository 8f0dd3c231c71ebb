package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"cloud.google.com/go/storage"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/viper"

	bCtx "github.com/arkpunks/goapi/base/ctx"
	"github.com/arkpunks/goapi/base/log"
	"github.com/arkpunks/goapi/base/poller"
	"github.com/arkpunks/goapi/base/signer"
	"github.com/arkpunks/goapi/domain"
	mmiddleware "github.com/arkpunks/goapi/middleware"
	broadcast_service "github.com/arkpunks/goapi/service/broadcast"
	"github.com/arkpunks/goapi/service/docstore"
	wallet_service "github.com/arkpunks/goapi/service/wallet"
	listing_repository "github.com/arkpunks/goapi/stores/listing/repository"
	listing_usecase "github.com/arkpunks/goapi/stores/listing/usecase"
)

func init() {
	viper.SetConfigType("yaml")
	viper.SetConfigFile(`infra/configs/poller/config.yaml`)
	err := viper.ReadInConfig()
	if err != nil {
		panic(err)
	}

	if viper.GetBool(`debug`) {
		log.Log().Info("Service RUN on DEBUG mode")
	}
}

func main() {
	ctx, cancel := bCtx.WithCancel(bCtx.Background())

	// start server to pass cloud run health check
	startEchoServer()

	ctx.Info("init document store")
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		ctx.WithField("err", err).Panic("storage.NewClient failed")
	}
	store := docstore.NewGcsStore(&docstore.GcsStoreCfg{
		Client:     storageClient,
		BucketName: viper.GetString("docstore.bucket"),
		Prefix:     viper.GetString("docstore.prefix"),
		Timeout:    viper.GetDuration("docstore.timeout"),
	})

	relays := broadcast_service.New(&broadcast_service.ServiceCfg{
		Endpoints:        viper.GetStringSlice("broadcast.relays"),
		Timeout:          viper.GetDuration("broadcast.timeout"),
		HandshakeTimeout: viper.GetDuration("broadcast.handshakeTimeout"),
	})

	wallet := wallet_service.NewClient(&wallet_service.ClientCfg{
		HttpClient: http.Client{},
		BaseUrl:    viper.GetString("wallet.url"),
		Timeout:    viper.GetDuration("wallet.timeout"),
	})

	serviceSigner, err := signer.NewFromHex(viper.GetString("signer.privateKey"))
	if err != nil {
		ctx.WithField("err", err).Panic("signer init failed")
	}

	collateralAmount := domain.Sats(viper.GetInt64("marketplace.collateralAmount"))
	collateralTolerance := domain.Sats(viper.GetInt64("marketplace.collateralTolerance"))

	listingRepo := listing_repository.NewListingRepo(store)
	escrow := listing_usecase.NewEscrowUseCase(&listing_usecase.EscrowUseCaseCfg{
		ListingRepo:         listingRepo,
		Wallet:              wallet,
		Broadcast:           relays,
		Ownership:           listing_usecase.NewBroadcastOwnership(relays),
		Signer:              serviceSigner,
		FeeBasisPoints:      viper.GetInt64("marketplace.feeBasisPoints"),
		CollateralAmount:    collateralAmount,
		CollateralTolerance: collateralTolerance,
		Network:             domain.Network(viper.GetString("network")),
	})

	depositPoller := poller.NewDepositPoller(&poller.DepositPollerCfg{
		Escrow:              escrow,
		Wallet:              wallet,
		Interval:            viper.GetDuration("poller.interval"),
		CollateralAmount:    collateralAmount,
		CollateralTolerance: collateralTolerance,
	})

	done := make(chan struct{})
	go func() {
		depositPoller.Run(ctx)
		close(done)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-quit
	log.Log().WithField("signal", sig).Info("received signal")
	cancel()
	<-done
	log.Log().Info("shutdown poller successfully")
}

func startEchoServer() {
	context := bCtx.Background()

	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{}))
	e.Use(middleware.RequestID())
	middL := mmiddleware.InitMiddleware()
	e.Use(middL.ResponseLogger())
	e.Use(middL.AddContext())

	address := viper.GetString("server.address")
	context.WithField("address", address).Info("starting server")
	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			context.Error("shutting down the server")
		}
	}()
}
