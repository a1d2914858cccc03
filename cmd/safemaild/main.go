package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"safemail/api"
	"safemail/internal/config"
	"safemail/internal/crypto"
	"safemail/internal/logging"
	"safemail/internal/manager"
	"safemail/internal/service"
	"safemail/store"
)

func main() {
	dbPath := config.DatabaseURL()
	if _, err := os.Stat(dbPath); err == nil {
		if err := os.Chmod(dbPath, 0600); err != nil {
			logging.WarnLog("failed to set restrictive permissions on %s: %v", dbPath, err)
		}
	}

	db, err := store.Open(dbPath)
	if err != nil {
		logging.FatalLog("failed to open database: %v", err)
	}
	defer db.Close()

	workers := manager.NewWorkManager()
	defer workers.Close()

	cryptoSvc := crypto.NewPooled(workers, crypto.New())

	if err := service.BootstrapSystemKeys(db.SystemKeys(), cryptoSvc); err != nil {
		logging.FatalLog("failed to bootstrap system keys: %v", err)
	}

	users := service.NewUserService(db.Users(), cryptoSvc)
	sessions := service.NewSessionMachine(db.Users(), db.Sessions(), cryptoSvc)
	stamps := service.NewStampEngine(db.Users(), db.StampTrackers(), db.StampRequests(), db.SystemKeys(), cryptoSvc)
	messages := service.NewMessageAdmitter(db.Users(), db.Messages(), db, stamps, cryptoSvc)

	router := api.NewRouter(api.Services{
		Users:    users,
		Sessions: sessions,
		Stamps:   stamps,
		Messages: messages,
	})

	server := &http.Server{
		Addr:              ":" + config.GetEnv("PORT", "8080"),
		Handler:           router,
		ReadTimeout:       config.ServerReadTimeout(),
		ReadHeaderTimeout: config.ServerReadHeaderTimeout(),
		WriteTimeout:      config.ServerWriteTimeout(),
		IdleTimeout:       config.ServerIdleTimeout(),
	}

	go func() {
		logging.InfoLog("safemaild listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.FatalLog("server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logging.InfoLog("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logging.ErrorLog("graceful shutdown failed: %v", err)
	}
}
