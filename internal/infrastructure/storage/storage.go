// Package storage arma el conjunto de repositorios según DB_DRIVER: postgres (con migraciones) o memory.
package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/storefront-api/internal/application/payment"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
	"github.com/jhoicas/storefront-api/internal/infrastructure/memory"
	"github.com/jhoicas/storefront-api/internal/infrastructure/postgres"
	"github.com/jhoicas/storefront-api/pkg/config"
	"github.com/jhoicas/storefront-api/pkg/logger"
)

// Store repositorios listos para inyectar.
type Store struct {
	Users    repository.UserRepository
	Products repository.ProductRepository
	Orders   repository.OrderRepository
	Events   repository.PaymentEventRepository
	Tx       payment.TxRunner

	pool *pgxpool.Pool
}

// Open conecta y migra (postgres) o crea los repos en memoria.
func Open(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.Nop()
	}
	switch cfg.Driver {
	case "memory":
		log.Warn().Msg("usando almacenamiento en memoria: los datos se pierden al reiniciar")
		return Memory(), nil
	case "postgres", "":
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		applied, err := postgres.Migrate(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("migraciones: %w", err)
		}
		if len(applied) > 0 {
			log.Info().Strs("migrations", applied).Msg("migraciones aplicadas")
		}
		return &Store{
			Users:    postgres.NewUserRepository(pool),
			Products: postgres.NewProductRepository(pool),
			Orders:   postgres.NewOrderRepository(pool),
			Events:   postgres.NewPaymentEventRepository(pool),
			Tx:       postgres.NewTxRunner(pool),
			pool:     pool,
		}, nil
	}
	return nil, fmt.Errorf("DB_DRIVER desconocido %q", cfg.Driver)
}

// Memory store en memoria (desarrollo y tests).
func Memory() *Store {
	orders := memory.NewOrderRepository()
	events := memory.NewPaymentEventRepository()
	return &Store{
		Users:    memory.NewUserRepository(),
		Products: memory.NewProductRepository(),
		Orders:   orders,
		Events:   events,
		Tx:       memory.NewTxRunner(orders, events),
	}
}

// Ping verifica la conexión. En memoria siempre responde.
func (s *Store) Ping(ctx context.Context) error {
	if s.pool == nil {
		return nil
	}
	return s.pool.Ping(ctx)
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
