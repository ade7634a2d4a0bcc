package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	server "hotel_booking/internal/adapters/http_server"
	"hotel_booking/internal/adapters/listing"
	"hotel_booking/internal/adapters/observability"
	redisad "hotel_booking/internal/adapters/redis"
	"hotel_booking/internal/app"
	"hotel_booking/internal/shared"
	"hotel_booking/internal/storage"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// store
	visits, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open visit store failed")
	}
	defer func() { _ = closeStore() }()

	// listing
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer func() { _ = cache.Close() }()
	if err := cache.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("redis unreachable; listing reads will go to the source")
	}
	client, err := listing.New(cfg.ListingURL, cfg.ListingKey, cfg.ListingRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize listing client")
	}
	src := app.NewCachedListing(client, cache, client.Endpoint(), cfg.CacheTTL)

	sessions := app.NewSessions(src, visits, app.SessionConfig{
		BedTypes:        cfg.BedTypes,
		CatalogLimit:    cfg.CatalogLimit,
		RatingsPageSize: cfg.RatingsPageSize,
	})

	// http
	srv := server.New(15 * time.Second)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Sessions: sessions, Visits: visits})

	log.Info().
		Str("addr", cfg.HTTPAddr).
		Str("listing", client.Endpoint()).
		Str("store", cfg.StoreDriver).
		Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
