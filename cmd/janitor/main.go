package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariefcatur/go-storefront/internal/config"
	"github.com/ariefcatur/go-storefront/internal/janitor"
	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/logx"
	"github.com/ariefcatur/go-storefront/internal/media"
	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log, err := logx.New(logx.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile, Service: cfg.ServiceName + "-janitor"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	if len(cfg.KafkaBrokers) == 0 {
		log.Error("KAFKA_BROKERS is empty, nothing to consume")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fileStore, err := media.NewFileStore(cfg.UploadDir)
	if err != nil {
		log.Error("media store", "err", err)
		os.Exit(1)
	}

	svc := &janitor.Service{Media: fileStore, Log: log, PurgeProofs: cfg.JanitorPurgeProofs}
	// Redis (opsional, dedup event)
	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		svc.Redis = rdb
	}

	// Consumer
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.JanitorGroup, janitor.Topics, cfg.JanitorWorkers, log)
	done := make(chan struct{})
	go func() {
		defer close(done)
		log.Info("janitor consumer started",
			"group", cfg.JanitorGroup, "topics", janitor.Topics, "workers", cfg.JanitorWorkers, "purge_proofs", cfg.JanitorPurgeProofs)
		if err := cons.Start(ctx, svc.HandleMessage); err != nil {
			log.Error("consumer exit", "err", err)
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
		log.Info("shutting down consumer...")
	case <-ctx.Done():
	}
	cancel()
	<-done
}
