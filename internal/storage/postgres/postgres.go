// postgres предоставляет реализацию storage.Store на базе PostgreSQL (pgx/v5).
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pribylovaa/go-sports-feed/internal/storage"
)

// Storage — пул соединений и построитель запросов поверх него.
type Storage struct {
	db *pgxpool.Pool
}

// New создает и инициализирует пул соединений к PostgreSQL.
func New(ctx context.Context, dbURL string) (*Storage, error) {
	const op = "storage.postgres.New"

	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

// Ping проверяет доступность базы (readiness).
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close закрывает пул соединений.
// Должен вызываться при остановке приложения.
func (s *Storage) Close() {
	s.db.Close()
}

// classify переводит ошибки PostgreSQL в сентинелы storage, сохраняя исходную ошибку в цепочке.
//   - 42501 insufficient_privilege (в т.ч. отказ RLS) -> ErrPermissionDenied;
//   - 28000 / 28P01 (невалидные учётные данные) -> ErrUnauthorized;
//   - прочее — без изменений.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.InsufficientPrivilege:
		return fmt.Errorf("%w: %w", storage.ErrPermissionDenied, err)
	case pgerrcode.InvalidAuthorizationSpecification, pgerrcode.InvalidPassword:
		return fmt.Errorf("%w: %w", storage.ErrUnauthorized, err)
	default:
		return err
	}
}

// Проверка выполнения контракта верхнего уровня.
var _ storage.Store = (*Storage)(nil)
