package processor

import (
	"context"
	"encoding/json"
	"time"

	"knjizara/internal/app/bookstore/entity"
	"knjizara/internal/app/bookstore/repository"
	"knjizara/internal/app/bookstore/util"
	"knjizara/pkg/logger"
	"knjizara/pkg/metrics"

	"github.com/robfig/cron/v3"
)

// ListingExpirer - фоновый воркер устаревания объявлений
// По расписанию переводит ACTIVE объявления старше TTL в EXPIRED
// и публикует событие для внешних потребителей
type ListingExpirer struct {
	cron     *cron.Cron
	bookRepo repository.BookRepository
	producer util.MessagePublisher
	ttlDays  int
}

// NewListingExpirer создает воркер устаревания объявлений
func NewListingExpirer(bookRepo repository.BookRepository, producer util.MessagePublisher, ttlDays int) *ListingExpirer {
	return &ListingExpirer{
		cron:     cron.New(),
		bookRepo: bookRepo,
		producer: producer,
		ttlDays:  ttlDays,
	}
}

// Start регистрирует задачу по cron-расписанию и запускает планировщик
// Первый проход выполняется сразу при старте, чтобы накопившиеся
// за простой объявления не ждали следующего запуска по расписанию
func (e *ListingExpirer) Start(ctx context.Context, schedule string) error {
	logger.Info().
		Str("schedule", schedule).
		Int("ttl_days", e.ttlDays).
		Msg("starting listing expirer")

	_, err := e.cron.AddFunc(schedule, func() {
		e.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	e.cron.Start()

	e.RunOnce(ctx)

	return nil
}

// RunOnce выполняет один проход устаревания
// Возвращает число помеченных объявлений
func (e *ListingExpirer) RunOnce(ctx context.Context) int64 {
	cutoff := time.Now().AddDate(0, 0, -e.ttlDays)

	expired, err := e.bookRepo.ExpireOlderThan(ctx, cutoff)
	if err != nil {
		logger.Error().Err(err).Msg("listing expiry pass failed")
		return 0
	}

	if expired == 0 {
		return 0
	}

	metrics.ListingsExpiredTotal.WithLabelValues("knjizara").Add(float64(expired))

	logger.Info().
		Int64("expired", expired).
		Time("cutoff", cutoff).
		Msg("listings expired")

	e.publishExpiryEvent(ctx, expired, cutoff)

	return expired
}

// Stop останавливает планировщик и дожидается завершения задач
func (e *ListingExpirer) Stop() {
	logger.Info().Msg("stopping listing expirer")
	ctx := e.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("listing expirer stopped")
}

// Entries возвращает зарегистрированные cron-задачи
func (e *ListingExpirer) Entries() []cron.Entry {
	return e.cron.Entries()
}

// expiryEvent - сводное событие прохода устаревания
type expiryEvent struct {
	EventType    string    `json:"event_type"`
	ExpiredCount int64     `json:"expired_count"`
	Cutoff       time.Time `json:"cutoff"`
	Timestamp    time.Time `json:"timestamp"`
}

func (e *ListingExpirer) publishExpiryEvent(ctx context.Context, count int64, cutoff time.Time) {
	event := expiryEvent{
		EventType:    "LISTINGS_EXPIRED",
		ExpiredCount: count,
		Cutoff:       cutoff,
		Timestamp:    time.Now(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msg("failed to marshal expiry event")
		return
	}

	if err := e.producer.PublishMessage(ctx, string(entity.StatusExpired), payload); err != nil {
		logger.Error().Err(err).Msg("failed to publish expiry event")
	}
}
