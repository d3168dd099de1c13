package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	dbPath := flag.String("db", "tankarena.db", "SQLite database path (empty to disable persistence)")
	dev := flag.Bool("dev", false, "Development mode logging")
	flag.Parse()

	var log *zap.Logger
	var err error
	if *dev {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	var db *DB
	if *dbPath != "" {
		db, err = OpenDB(*dbPath)
		if err != nil {
			log.Fatal("open database", zap.Error(err))
		}
		defer db.Close()
	}

	hub := NewHub(db, log)
	go hub.Run()

	mux := SetupRoutes(hub)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	server := &http.Server{Addr: *addr, Handler: mux}

	go func() {
		log.Info("server starting", zap.String("addr", *addr))
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	<-stop
	log.Info("shutting down")
	if hub.analytics != nil {
		hub.analytics.Close()
	}
	server.Close()
}
