package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/civic-reports/backend/internal/config"
	"github.com/civic-reports/backend/internal/db"
	"github.com/civic-reports/backend/internal/events"
	"github.com/civic-reports/backend/internal/repositories"
	"github.com/civic-reports/backend/internal/services"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	reportRepo := repositories.NewReportRepo(pool)
	geocoder := services.NewGeocoder(cfg.GeocoderBaseURL, cfg.GeocoderUserAgent, cfg.GeocoderMinInterval, cfg.GeocoderTimeout, log)
	notifier := services.NewNotifierClient(cfg.NotifierInternalURL, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// Event -> notification bridge runs alongside the enrichment loop.
	go runNotificationBridge(ctx, subscriber, notifier, log)

	log.Info("worker started")

	enrichTicker := time.NewTicker(cfg.EnrichmentInterval)
	defer enrichTicker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Run one enrichment pass at startup so a fresh backlog is not stuck
	// waiting for the first tick.
	runLocalityEnrichment(ctx, reportRepo, geocoder, cfg.EnrichmentBatch, log)

	for {
		select {
		case <-enrichTicker.C:
			runLocalityEnrichment(ctx, reportRepo, geocoder, cfg.EnrichmentBatch, log)
		case <-sigCh:
			log.Info("shutting down worker")
			cancel()
			return
		case <-ctx.Done():
			return
		}
	}
}

// runLocalityEnrichment reverse-geocodes reports that still lack a locality.
// One failed lookup skips that report; the rest of the batch continues.
func runLocalityEnrichment(ctx context.Context, reports *repositories.ReportRepo, geocoder *services.Geocoder, batch int, log *zap.Logger) {
	pending, err := reports.ListMissingLocality(ctx, batch)
	if err != nil {
		log.Error("failed to list reports missing locality", zap.Error(err))
		return
	}
	if len(pending) == 0 {
		return
	}

	enriched := 0
	for _, rep := range pending {
		loc, err := geocoder.Reverse(ctx, rep.Lat, rep.Lng)
		if err != nil {
			log.Warn("reverse geocode failed",
				zap.Int64("report_id", rep.ID),
				zap.Error(err),
			)
			continue
		}
		name := loc.Name()
		if name == "" {
			continue
		}
		if err := reports.UpdateLocality(ctx, rep.ID, name); err != nil {
			log.Error("failed to store locality", zap.Int64("report_id", rep.ID), zap.Error(err))
			continue
		}
		enriched++
	}
	log.Info("locality enrichment pass done",
		zap.Int("candidates", len(pending)),
		zap.Int("enriched", enriched),
	)
}

// runNotificationBridge forwards report lifecycle events to the notification
// relay. Delivery is best effort.
func runNotificationBridge(ctx context.Context, subscriber events.Subscriber, notifier *services.NotifierClient, log *zap.Logger) {
	err := subscriber.Subscribe(ctx, events.StreamReport, func(event events.Event) {
		n, ok := notificationFor(event)
		if !ok {
			return
		}
		if err := notifier.Notify(ctx, n); err != nil {
			log.Warn("notification delivery failed", zap.String("event", event.Type), zap.Error(err))
		}
	})
	if err != nil && ctx.Err() == nil {
		log.Error("event subscription ended", zap.Error(err))
	}
}

// notificationFor maps an event to the staff member who should hear about it.
// Events without a clear recipient are dropped.
func notificationFor(event events.Event) (services.Notification, bool) {
	reportID := asInt64(event.Payload["report_id"])

	switch event.Type {
	case events.EventReportAssigned:
		return services.Notification{
			StaffID:  asInt64(event.Payload["staff_id"]),
			Subject:  "New assignment",
			Body:     fmt.Sprintf("You have been assigned to report #%d.", reportID),
			ReportID: reportID,
			Data:     event.Payload,
		}, true
	case events.EventReportReassigned:
		return services.Notification{
			StaffID:  asInt64(event.Payload["staff_id"]),
			Subject:  "Report reassigned to you",
			Body:     fmt.Sprintf("Report #%d has been reassigned to you.", reportID),
			ReportID: reportID,
			Data:     event.Payload,
		}, true
	case events.EventClosureRequested:
		return services.Notification{
			StaffID:  asInt64(event.Payload["supervisor_id"]),
			Subject:  "Closure review requested",
			Body:     fmt.Sprintf("Report #%d is waiting for your closure review.", reportID),
			ReportID: reportID,
			Data:     event.Payload,
		}, true
	}
	return services.Notification{}, false
}

// asInt64 handles the numeric types a JSON round-trip can produce.
func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}
