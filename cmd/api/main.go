package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/jhoicas/storefront-api/internal/application/auth"
	"github.com/jhoicas/storefront-api/internal/application/catalog"
	"github.com/jhoicas/storefront-api/internal/application/ordering"
	"github.com/jhoicas/storefront-api/internal/application/payment"
	"github.com/jhoicas/storefront-api/internal/application/ports"
	"github.com/jhoicas/storefront-api/internal/application/usecase"
	"github.com/jhoicas/storefront-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/storefront-api/internal/infrastructure/pdf"
	"github.com/jhoicas/storefront-api/internal/infrastructure/shopify"
	"github.com/jhoicas/storefront-api/internal/infrastructure/storage"
	"github.com/jhoicas/storefront-api/internal/infrastructure/stripe"
	"github.com/jhoicas/storefront-api/internal/infrastructure/telegram"
	httpRouter "github.com/jhoicas/storefront-api/internal/interfaces/http"
	"github.com/jhoicas/storefront-api/pkg/config"
	"github.com/jhoicas/storefront-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: os.Getenv("LOG_LEVEL"),
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.Close()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics.Namespace)
	}

	// Stripe es obligatorio para cobrar; sin clave el checkout responde UPSTREAM_FAILURE y la orden queda pendiente.
	var gateway ports.PaymentGateway
	if gw, err := stripe.New(stripe.Config{
		SecretKey:     cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
		Timeout:       cfg.Stripe.Timeout,
	}, log); err != nil {
		log.Warn().Err(err).Msg("pasarela de pago deshabilitada")
	} else {
		gateway = gw
	}

	var (
		source ports.CatalogSource
		mirror ports.OrderMirror
	)
	if cfg.Shopify.Enabled() {
		client, err := shopify.New(shopify.Config{
			ShopName:    cfg.Shopify.ShopName,
			AccessToken: cfg.Shopify.AccessToken,
			APIVersion:  cfg.Shopify.APIVersion,
			Timeout:     cfg.Shopify.Timeout,
		}, log)
		if err != nil {
			log.Fatal().Err(err).Msg("cliente Shopify")
		}
		source, mirror = client, client
	}

	var notifier ports.Notifier = ports.NopNotifier{}
	if cfg.Telegram.BotToken != "" {
		tg, err := telegram.New(cfg.Telegram.BotToken, cfg.Telegram.ChatID, "")
		if err != nil {
			log.Warn().Err(err).Msg("notificaciones de Telegram deshabilitadas")
		} else {
			notifier = tg
		}
	}

	var recorder ports.Recorder = ports.NopRecorder{}
	if m != nil {
		recorder = m
	}

	authUC := auth.NewAuthUseCase(store.Users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log)
	productUC := usecase.NewProductUseCase(store.Products)

	var syncUC *catalog.SyncUseCase
	if source != nil {
		policy, err := catalog.NewFieldPolicy(cfg.Shopify.LocalFields)
		if err != nil {
			log.Fatal().Err(err).Msg("SHOPIFY_LOCAL_FIELDS")
		}
		syncUC = catalog.NewSyncUseCase(source, store.Products, catalog.SyncConfig{
			PageSize: cfg.Shopify.PageSize,
			MaxPages: cfg.Shopify.MaxPages,
			Policy:   policy,
		}, log, recorder)
	}

	orderUC := ordering.NewOrderUseCase(ordering.Deps{
		Orders:   store.Orders,
		Users:    store.Users,
		Gateway:  gateway,
		Mirror:   mirror,
		Notifier: notifier,
		Receipts: infrapdf.NewReceiptGenerator(cfg.App.Name),
		Metrics:  recorder,
		Log:      log,
	}, ordering.Config{
		Pricing:  ordering.NewPricingPolicy(cfg.Orders.TaxRate, cfg.Orders.ShippingFlat),
		Currency: cfg.Stripe.Currency,
	})
	webhookUC := payment.NewWebhookUseCase(gateway, store.Orders, store.Events, store.Tx, notifier, recorder, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    cfg.HTTP.BodyLimit,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.NewErrorHandler(log, cfg.App.IsProduction()),
	})
	app.Use(recover.New(recover.Config{EnableStackTrace: !cfg.App.IsProduction()}))
	app.Use(requestid.New(requestid.Config{Header: httpRouter.HeaderRequestID}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.HTTP.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, " + httpRouter.HeaderRequestID,
		AllowCredentials: cfg.HTTP.CORSOrigins != "*",
	}))
	app.Use(httpRouter.RequestLogger(log, m))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Storefront API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		status := fiber.StatusOK
		body := fiber.Map{"status": "ok", "service": cfg.App.Name, "time": time.Now().UTC()}
		if err := store.Ping(c.UserContext()); err != nil {
			status = fiber.StatusServiceUnavailable
			body["status"] = "degraded"
			body["db"] = err.Error()
		}
		return c.Status(status).JSON(body)
	})
	if m != nil {
		app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:    authUC,
		ProductUC: productUC,
		SyncUC:    syncUC,
		OrderUC:   orderUC,
		WebhookUC: webhookUC,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
