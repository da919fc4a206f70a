// seed crea las cuentas admin y customer de ejemplo y un catálogo inicial.
//
// Uso: go run ./cmd/seed
// Usa la misma configuración que la API (DB_DRIVER, DATABASE_URL, ...). Las contraseñas se
// pueden cambiar con SEED_ADMIN_PASSWORD y SEED_CUSTOMER_PASSWORD.
package main

import (
	"context"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/storefront-api/internal/infrastructure/storage"
	"github.com/jhoicas/storefront-api/pkg/config"
	"github.com/jhoicas/storefront-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env}).Named("seed")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store, err := storage.Open(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.Close()

	users := seedUsers(envOr("SEED_ADMIN_PASSWORD", "Admin@123"), envOr("SEED_CUSTOMER_PASSWORD", "Customer@123"))
	res, err := run(ctx, store, users, bcrypt.DefaultCost, log)
	if err != nil {
		log.Fatal().Err(err).Msg("seed")
	}
	log.Info().
		Int("users_created", res.UsersCreated).Int("users_skipped", res.UsersSkipped).
		Int("products_created", res.ProductsCreated).Int("products_skipped", res.ProductsSkipped).
		Msg("seed completado")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
