package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/config"
	"github.com/ariefcatur/go-storefront/internal/events"
	"github.com/ariefcatur/go-storefront/internal/httpx"
	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/logx"
	"github.com/ariefcatur/go-storefront/internal/media"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/postgres"
	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func main() {
	_ = godotenv.Load()
	decimal.MarshalJSONWithoutQuotes = true

	cfg := config.Load()
	log, err := logx.New(logx.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile, Service: cfg.ServiceName})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	if err := run(cfg, log); err != nil {
		log.Error("api exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Stores
	var (
		products catalog.Store
		orderDB  orders.Store
	)
	switch cfg.StoreDriver {
	case "memory":
		log.Warn("using in-memory stores, data is lost on restart")
		products, orderDB = catalog.NewMemoryStore(), orders.NewMemoryStore()
	case "postgres", "":
		db, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			return fmt.Errorf("db migrate: %w", err)
		}
		products, orderDB = &catalog.Repo{DB: db}, &orders.Repo{DB: db}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	// Redis (opsional, cache katalog)
	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		products = &catalog.CachedStore{Store: products, Redis: rdb, Log: log}
	}

	// Media
	fileStore, err := media.NewFileStore(cfg.UploadDir)
	if err != nil {
		return err
	}

	// Kafka producer (opsional)
	var emitter events.Emitter = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		prod := kafkax.NewProducer(cfg.KafkaBrokers, 1024, log)
		prod.Start(ctx)
		defer func() {
			prod.Close()      // tutup inbox -> flush & close writer
			cancel()          // stop producer loop
			prod.WaitClosed() // drain
		}()
		emitter = &events.Publisher{Producer: prod, Service: cfg.ServiceName}
	}

	// Services & handlers
	router := httpx.NewRouter(log, fileStore.Fs())
	(&httpx.ProductsHandler{Service: catalog.NewService(products, fileStore, emitter, log), Log: log}).Register(router)
	(&httpx.OrdersHandler{Service: orders.NewService(orderDB, fileStore, emitter, log), Log: log}).Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr, "store", cfg.StoreDriver, "uploads", cfg.UploadDir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	}
	log.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	return srv.Shutdown(ctx2)
}
