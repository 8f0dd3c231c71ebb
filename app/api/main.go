package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/storage"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/viper"

	"github.com/arkpunks/goapi/base/ctx"
	"github.com/arkpunks/goapi/base/log"
	"github.com/arkpunks/goapi/base/signer"
	bValidator "github.com/arkpunks/goapi/base/validator"
	"github.com/arkpunks/goapi/domain"
	"github.com/arkpunks/goapi/domain/keys"
	mmiddleware "github.com/arkpunks/goapi/middleware"
	broadcast_service "github.com/arkpunks/goapi/service/broadcast"
	"github.com/arkpunks/goapi/service/cache"
	"github.com/arkpunks/goapi/service/cache/provider/primitive"
	"github.com/arkpunks/goapi/service/docstore"
	wallet_service "github.com/arkpunks/goapi/service/wallet"
	hc_delivery "github.com/arkpunks/goapi/stores/healthcheck/delivery/http"
	hc_repo "github.com/arkpunks/goapi/stores/healthcheck/repository"
	hc_usecase "github.com/arkpunks/goapi/stores/healthcheck/usecase"
	listing_delivery "github.com/arkpunks/goapi/stores/listing/delivery/http"
	listing_repository "github.com/arkpunks/goapi/stores/listing/repository"
	listing_usecase "github.com/arkpunks/goapi/stores/listing/usecase"
	mint_delivery "github.com/arkpunks/goapi/stores/mint/delivery/http"
	mint_repository "github.com/arkpunks/goapi/stores/mint/repository"
	mint_usecase "github.com/arkpunks/goapi/stores/mint/usecase"
	registry_delivery "github.com/arkpunks/goapi/stores/registry/delivery/http"
	registry_repository "github.com/arkpunks/goapi/stores/registry/repository"
	registry_usecase "github.com/arkpunks/goapi/stores/registry/usecase"
)

func init() {
	viper.SetConfigType("yaml")
	viper.SetConfigFile(`infra/configs/config.yaml`)
	err := viper.ReadInConfig()
	if err != nil {
		panic(err)
	}

	if viper.GetBool(`debug`) {
		log.Log().Info("Service RUN on DEBUG mode")
	}
}

func main() {
	// init echo
	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{}))
	e.Use(middleware.RequestID())
	middL := mmiddleware.InitMiddleware()
	e.Use(middL.ResponseLogger())
	e.Use(middL.AddContext())
	e.Use(middleware.CORS())
	e.Validator = bValidator.NewCustomValidator(validator.New())

	context := ctx.Background()

	// init document store
	context.Info("init document store")
	storageClient, err := storage.NewClient(context)
	if err != nil {
		context.WithField("err", err).Panic("storage.NewClient failed")
	}
	store := docstore.NewGcsStore(&docstore.GcsStoreCfg{
		Client:     storageClient,
		BucketName: viper.GetString("docstore.bucket"),
		Prefix:     viper.GetString("docstore.prefix"),
		Timeout:    viper.GetDuration("docstore.timeout"),
	})

	// init broadcast relays
	context.Info("init broadcast relays")
	relays := broadcast_service.New(&broadcast_service.ServiceCfg{
		Endpoints:        viper.GetStringSlice("broadcast.relays"),
		Timeout:          viper.GetDuration("broadcast.timeout"),
		HandshakeTimeout: viper.GetDuration("broadcast.handshakeTimeout"),
	})

	// init custodial wallet client
	context.Info("init wallet client")
	wallet := wallet_service.NewClient(&wallet_service.ClientCfg{
		HttpClient: http.Client{},
		BaseUrl:    viper.GetString("wallet.url"),
		Timeout:    viper.GetDuration("wallet.timeout"),
	})

	serviceSigner, err := signer.NewFromHex(viper.GetString("signer.privateKey"))
	if err != nil {
		context.WithField("err", err).Panic("signer init failed")
	}

	registryCache := cache.New(cache.ServiceConfig{
		Ttl:   viper.GetDuration("registry.cacheTtl"),
		Pfx:   keys.PfxRegistry,
		Cache: primitive.NewPrimitive("registry", 1024),
	})

	legacyAllowList := []domain.TokenId{}
	for _, id := range viper.GetStringSlice("registry.legacyAllowList") {
		legacyAllowList = append(legacyAllowList, domain.TokenId(id).ToLower())
	}

	// construct repository, usecase and delivery
	hcRepo := hc_repo.New(store, wallet)
	hc := hc_usecase.New(hcRepo)
	listingRepo := listing_repository.NewListingRepo(store)
	registryRepo := registry_repository.NewRegistryRepo(store)
	rateLimitRepo := mint_repository.NewMemoryRateLimit()

	ownership := listing_usecase.NewBroadcastOwnership(relays)
	escrow := listing_usecase.NewEscrowUseCase(&listing_usecase.EscrowUseCaseCfg{
		ListingRepo:         listingRepo,
		Wallet:              wallet,
		Broadcast:           relays,
		Ownership:           ownership,
		Signer:              serviceSigner,
		FeeBasisPoints:      viper.GetInt64("marketplace.feeBasisPoints"),
		CollateralAmount:    domain.Sats(viper.GetInt64("marketplace.collateralAmount")),
		CollateralTolerance: domain.Sats(viper.GetInt64("marketplace.collateralTolerance")),
		Network:             domain.Network(viper.GetString("network")),
	})
	registry := registry_usecase.NewReconcileUseCase(&registry_usecase.ReconcileUseCaseCfg{
		Repo:            registryRepo,
		Broadcast:       relays,
		Cache:           registryCache,
		ServicePubKey:   domain.PubKey(viper.GetString("registry.servicePubKey")),
		LegacyAllowList: legacyAllowList,
	})
	gate := mint_usecase.NewGateUseCase(&mint_usecase.GateUseCaseCfg{
		Signer:         serviceSigner,
		RateLimit:      rateLimitRepo,
		MaxSupply:      viper.GetInt("mint.maxSupply"),
		PerIdentityCap: viper.GetInt("mint.perIdentityCap"),
		Window:         viper.GetDuration("mint.window"),
	})

	hc_delivery.New(e, hc)
	listing_delivery.New(e, escrow)
	registry_delivery.New(e, registry)
	mint_delivery.New(e, gate)

	go func() {
		if err := e.Start(viper.GetString("server.address")); err != nil && err != http.ErrServerClosed {
			log.Log().WithField("err", err).Error("shutting down the server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 10 seconds.
	// Use a buffered channel to avoid missing signals as recommended for signal.Notify
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-quit
	log.Log().WithField("signal", sig).Info("received signal")
	shutdownCtx, cancel := ctx.WithTimeout(context, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Log().WithField("err", err).Error("shutting down the server")
	} else {
		log.Log().Info("shutdown server successfully")
	}
}
