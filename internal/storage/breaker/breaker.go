// breaker оборачивает storage.Store в circuit breaker.
//
// Breaker считает отказами только ошибки инфраструктуры (сеть, таймаут БД, 5xx хранилища).
// Ответы "по существу" (нет записи, нет прав, битый запрос, отмена клиентом) проходят
// как успешные и не влияют на состояние.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/pribylovaa/go-sports-feed/internal/metrics"
	"github.com/pribylovaa/go-sports-feed/internal/storage"
)

// ErrOpen — breaker открыт, выборка отклонена без обращения к хранилищу.
var ErrOpen = errors.New("storage circuit open")

// Store — storage.Store под защитой circuit breaker.
type Store struct {
	next storage.Store
	cb   *gobreaker.CircuitBreaker[any]
}

// New оборачивает next. После maxFailures подряд отказов breaker открывается на openTimeout,
// затем пропускает одну пробную выборку (half-open).
func New(next storage.Store, maxFailures int, openTimeout time.Duration, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}

	const name = "storage"
	metrics.BreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= uint32(maxFailures)
		},
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("breaker_state_changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			metrics.BreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})

	return &Store{next: next, cb: cb}
}

// Select выполняет выборку через breaker.
func (s *Store) Select(ctx context.Context, q storage.Query) ([]storage.Row, error) {
	const op = "storage.breaker.Select"

	res, err := s.cb.Execute(func() (any, error) {
		return s.next.Select(ctx, q)
	})
	if err != nil {
		return nil, wrap(op, err)
	}

	rows, _ := res.([]storage.Row)
	return rows, nil
}

// Count выполняет подсчёт через breaker.
func (s *Store) Count(ctx context.Context, collection string, filters []storage.Filter) (int, error) {
	const op = "storage.breaker.Count"

	res, err := s.cb.Execute(func() (any, error) {
		return s.next.Count(ctx, collection, filters)
	})
	if err != nil {
		return 0, wrap(op, err)
	}

	n, _ := res.(int)
	return n, nil
}

// State возвращает текущее состояние breaker ("closed", "half-open", "open").
func (s *Store) State() string {
	return s.cb.State().String()
}

func wrap(op string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%s: %w: %w", op, ErrOpen, err)
	}
	return err
}

// isSuccessful — ошибки, которые не говорят о недоступности хранилища.
func isSuccessful(err error) bool {
	switch {
	case err == nil,
		errors.Is(err, storage.ErrNotFound),
		errors.Is(err, storage.ErrUnauthorized),
		errors.Is(err, storage.ErrPermissionDenied),
		errors.Is(err, storage.ErrInvalidQuery),
		errors.Is(err, context.Canceled):
		return true
	}
	return false
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
