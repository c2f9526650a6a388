package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"tokenfield/internal/persistence/kv"
	persistlog "tokenfield/internal/persistence/log"
	"tokenfield/internal/persistence/snapshot"
	"tokenfield/internal/sim/tuning"
	"tokenfield/internal/sim/world"
	"tokenfield/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
		freshStart = flag.Bool("fresh", false, "discard any saved snapshot and start from the default state")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", *tuningPath)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	store, err := kv.OpenSQLite(filepath.Join(*dataDir, "game.db"))
	if err != nil {
		logger.Fatalf("open kv store: %v", err)
	}
	defer store.Close()
	snaps := snapshot.NewStore(store)

	gameLog := persistlog.NewGameLogger(*dataDir)
	defer gameLog.Close()

	w, err := world.New(world.ConfigFromTuning(tune), snaps, gameLog, log.New(os.Stdout, "[world] ", log.LstdFlags|log.Lmicroseconds))
	if err != nil {
		logger.Fatalf("create world: %v", err)
	}
	if *freshStart {
		if err := snaps.Reset(); err != nil {
			logger.Printf("discard snapshot: %v", err)
		}
	} else if w.Resume() {
		logger.Printf("resumed from snapshot")
	} else {
		logger.Printf("no snapshot; starting fresh")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("world loop: %v", err)
		}
	}()

	wsServer := ws.NewServer(w, log.New(os.Stdout, "[ws] ", log.LstdFlags|log.Lmicroseconds))

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", wsServer.Handler())
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Printf("listening on %s", *addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	got := <-sig
	logger.Printf("signal %s; shutting down", got)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	w.Stop()
}
