package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/go-pos-terminal.git/internal/config"
	"github.com/ariefcatur/go-pos-terminal.git/internal/forward"
	"github.com/ariefcatur/go-pos-terminal.git/internal/journal"
	kafkax "github.com/ariefcatur/go-pos-terminal.git/internal/kafka"
	"github.com/ariefcatur/go-pos-terminal.git/internal/redisx"
	"github.com/ariefcatur/go-pos-terminal.git/internal/sqlitex"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := sqlitex.Open(cfg.SQLitePath, journal.Models()...)
	if err != nil {
		log.Error("open local store", "err", err)
		os.Exit(1)
	}

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	prod := kafkax.NewProducer(cfg.KafkaBrokers, journal.TopicOrderRecorded, 1024, log)
	prod.Start(ctx)

	bus := journal.NewRedisBroadcaster(rdb, cfg.TerminalID)
	jrnl := journal.New(db, bus, log)

	svc := &forward.Service{
		Journal:     jrnl,
		Redis:       rdb,
		Producer:    prod,
		ServiceName: cfg.ServiceName + "-forwarder",
		TerminalID:  cfg.TerminalID,
		Log:         log,
	}

	// journal change signals -> forward new/changed orders
	go func() {
		// catch up with anything journaled while we were down
		if err := svc.HandleSignal(ctx, journal.Signal{Type: journal.SignalOrderPut}); err != nil {
			log.Warn("startup catch-up failed", "err", err)
		}
		for sig := range bus.Subscribe(ctx) {
			if err := svc.HandleSignal(ctx, sig); err != nil {
				log.Warn("forward failed", "type", sig.Type, "err", err)
			}
		}
	}()

	// settlement confirmations from the back office
	group := getenv("FORWARDER_GROUP", "pos-forwarder")
	workers := mustAtoi(os.Getenv("FORWARDER_WORKERS"), "4")
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, journal.TopicOrderSettled, workers, log)

	go func() {
		log.Info("settlement consumer started", "group", group, "topic", journal.TopicOrderSettled, "workers", workers)
		if err := cons.Start(ctx, svc.HandleSettled); err != nil {
			log.Error("consumer exit", "err", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down forwarder")
	cancel()
	time.Sleep(500 * time.Millisecond)
	prod.Close()
	prod.WaitClosed()
}

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
