package main

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

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

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	log.Info().
		Strs("listings", cfg.ListingURLs).
		Int("workers", cfg.Workers).
		Str("store", cfg.StoreDriver).
		Msg("ingestor starting")

	repo, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open visit store failed")
	}
	defer func() { _ = closeStore() }()

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer func() { _ = cache.Close() }()

	ing := app.NewIngestionService(repo, cache)
	sem := semaphore.NewWeighted(int64(max(cfg.Workers, 1)))
	var (
		wg    sync.WaitGroup
		total atomic.Int64
	)

	for _, endpoint := range cfg.ListingURLs {
		client, err := listing.New(endpoint, cfg.ListingKey, cfg.ListingRPS)
		if err != nil {
			log.Warn().Str("listing", endpoint).Err(err).Msg("skipping listing")
			continue
		}

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(c *listing.Client) {
			defer wg.Done()
			defer sem.Release(1)

			n, err := ing.IngestListing(ctx, c.Endpoint(), c)
			if err != nil {
				log.Warn().Str("listing", c.Endpoint()).Err(err).Msg("ingest failed")
				return
			}
			total.Add(int64(n))
			log.Info().Str("listing", c.Endpoint()).Int("hotels", n).Msg("ingest ok")
		}(client)
	}

	wg.Wait()
	log.Info().Int64("hotels", total.Load()).Msg("ingestion completed")
}
