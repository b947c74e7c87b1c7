package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	stdhttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	handler "github.com/pollbox/pollbox/internal/adapters/handler/http"
	"github.com/pollbox/pollbox/internal/adapters/oauth/google"
	repo "github.com/pollbox/pollbox/internal/adapters/repository/postgres"
	"github.com/pollbox/pollbox/internal/core/services"
	"github.com/pollbox/pollbox/internal/notify"
	"github.com/pollbox/pollbox/internal/platform/config"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Parse()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.JWTSecret == "" {
		log.Println("Warning: JWT_SECRET not set")
	}

	db, err := sql.Open("postgres", cfg.DB.ConnString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}

	broadcaster := notify.NewBroadcaster()
	defer broadcaster.Close()

	pollRepo := repo.NewPollRepository(db)
	voteRepo := repo.NewVoteRepository(db)
	userRepo := repo.NewUserRepository(db)
	authRepo := repo.NewAuthRepository(db)

	pollService := services.NewPollService(pollRepo, broadcaster)
	voteService := services.NewVoteService(pollRepo, voteRepo, broadcaster)
	userService := services.NewUserService(userRepo)
	authService := services.NewAuthService(userRepo, authRepo, google.NewVerifier(), cfg.JWTSecret, cfg.GoogleClientID)

	router := handler.NewHandler(handler.Handlers{
		Polls:  handler.NewPollHandler(pollService),
		Votes:  handler.NewVoteHandler(voteService),
		Events: handler.NewEventsHandler(broadcaster),
		Auth:   handler.NewAuthHandler(authService, cfg.RedirectURL, cfg.CookieDomain, stdhttp.SameSiteLaxMode),
		Users:  handler.NewUserHandler(userService),
	}, []byte(cfg.JWTSecret), cfg.AllowedOrigins)

	server := &stdhttp.Server{Addr: cfg.HTTPAddr, Handler: router}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("Gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err)
	}
}
