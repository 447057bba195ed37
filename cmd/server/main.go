package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"members-portal/internal/api"
	"members-portal/internal/config"
	"members-portal/internal/repository"
	"members-portal/internal/repository/postgres"
	"members-portal/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize the credential and session stores
	userDB, err := postgres.NewUserConnection(cfg.DatabaseURL, cfg.DatabaseCACert)
	if err != nil {
		log.Fatalf("failed to connect to credential store: %v", err)
	}
	sessionDB, err := postgres.NewSessionConnection(cfg.SessionDatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to session store: %v", err)
	}

	repos := postgres.NewRepositories(userDB, sessionDB)
	services := service.NewServices(repos, cfg)

	router, err := api.NewRouter(services, cfg)
	if err != nil {
		log.Fatalf("failed to build router: %v", err)
	}

	// Expired sessions die lazily on access; the sweeper keeps the table
	// from accumulating rows nobody touches again.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go sweepExpiredSessions(sweepCtx, repos.Session, cfg.SessionTTL/2)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func sweepExpiredSessions(ctx context.Context, sessions repository.SessionRepository, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.DeleteExpired(ctx, time.Now())
			if err != nil {
				log.Printf("ERROR [main.sweepExpiredSessions] %v", err)
				continue
			}
			if n > 0 {
				log.Printf("removed %d expired sessions", n)
			}
		}
	}
}
