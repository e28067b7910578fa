package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/go-pos-terminal.git/internal/catalog"
	"github.com/ariefcatur/go-pos-terminal.git/internal/config"
	"github.com/ariefcatur/go-pos-terminal.git/internal/httpx"
	"github.com/ariefcatur/go-pos-terminal.git/internal/inventory"
	"github.com/ariefcatur/go-pos-terminal.git/internal/journal"
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

	// local store: without it there is nothing to serve, so fail hard
	models := append(catalog.Models(), journal.Models()...)
	db, err := sqlitex.Open(cfg.SQLitePath, models...)
	if err != nil {
		log.Error("open local store", "path", cfg.SQLitePath, "err", err)
		os.Exit(1)
	}

	// Redis carries the availability cache and the cross-window signal.
	// Without it the terminal still sells: in-process cache, no broadcast.
	var (
		qtyStore inventory.QuantityStore
		bus      journal.Broadcaster
	)
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()
	pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unreachable, running degraded", "addr", cfg.RedisAddr, "err", err)
		qtyStore = inventory.NewMemoryQuantityStore(cfg.StockTTL)
		bus = journal.NoopBroadcaster{}
	} else {
		qtyStore = inventory.NewRedisQuantityStore(rdb, cfg.StockTTL)
		bus = journal.NewRedisBroadcaster(rdb, cfg.TerminalID)
	}
	pingCancel()

	checker := inventory.NewChecker(qtyStore, inventory.NewClient(cfg.InventoryBaseURL))
	jrnl := journal.New(db, bus, log)

	router := httpx.NewRouter()
	(&httpx.CatalogHandler{Store: catalog.NewStore(db)}).Register(router)
	(&httpx.AvailabilityHandler{Checker: checker}).Register(router)
	(&httpx.OrdersHandler{Journal: jrnl}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info("terminal data layer listening", "addr", cfg.HTTPAddr, "terminal", cfg.TerminalID)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("listen", "err", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
}
