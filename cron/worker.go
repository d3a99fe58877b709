package cron

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"ndako/config"
	listingRepo "ndako/database/repository/listing"
	"ndako/services/geocode"
	"ndako/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

// InitGeocodeWorker runs the async geocode-backfill worker in background.
// Listings saved with district-fallback coordinates get re-geocoded here
// so a slow provider never blocks the write path.
func InitGeocodeWorker(repo listingRepo.ListingRepository, geocoder geocode.Geocoder, invalidate func()) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeGeocodeBackfill, handleGeocodeBackfill(repo, geocoder, invalidate))

	// Start Redis health monitor
	go monitorRedisConnection()

	// Catch up on listings whose queued backfill was lost (queue flushed,
	// worker down at enqueue time).
	go sweepApproximateListings(repo, geocoder, invalidate)

	// Start async worker with retry logic
	go func() {
		log.Println("[GeocodeWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[GeocodeWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[GeocodeWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleGeocodeBackfill(repo listingRepo.ListingRepository, geocoder geocode.Geocoder, invalidate func()) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p tasks.GeocodeBackfillPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[GeocodeBackfill] invalid payload: %v", err)
			return err
		}

		l, err := repo.GetByID(p.ListingID)
		if err != nil {
			if errors.Is(err, listingRepo.ErrNotFound) {
				// Deleted since it was queued; nothing to do.
				return nil
			}
			return err
		}
		if !l.GeoApprox || l.Location.Address == "" {
			return nil
		}

		address := l.Location.Address + ", " + l.Location.Commune + ", " + l.Location.Ville
		coords, err := geocoder.Geocode(ctx, address)
		if err != nil {
			if errors.Is(err, geocode.ErrNotFound) {
				// The address simply does not resolve; the district
				// fallback stays and retrying will not help.
				return nil
			}
			return err
		}

		if err := repo.SetCoordinates(l.ID, coords, false); err != nil {
			return err
		}
		if invalidate != nil {
			invalidate()
		}
		log.Printf("[GeocodeBackfill] resolved listing %s", l.ID)
		return nil
	}
}

// sweepApproximateListings re-geocodes listings stuck on fallback
// coordinates, a bounded batch per pass.
func sweepApproximateListings(repo listingRepo.ListingRepository, geocoder geocode.Geocoder, invalidate func()) {
	const batchSize = 100

	listings, err := repo.GetWithoutCoordinates(batchSize)
	if err != nil {
		log.Printf("[GeocodeSweep] failed to list approximate listings: %v", err)
		return
	}

	resolved := 0
	ctx := context.Background()
	for i := range listings {
		l := &listings[i]
		if l.Location.Address == "" {
			continue
		}
		address := l.Location.Address + ", " + l.Location.Commune + ", " + l.Location.Ville
		coords, err := geocoder.Geocode(ctx, address)
		if err != nil {
			continue
		}
		if err := repo.SetCoordinates(l.ID, coords, false); err != nil {
			log.Printf("[GeocodeSweep] failed to store coordinates for %s: %v", l.ID, err)
			continue
		}
		resolved++
	}
	if resolved > 0 {
		if invalidate != nil {
			invalidate()
		}
		log.Printf("[GeocodeSweep] resolved %d listings", resolved)
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[GeocodeWorker] redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
