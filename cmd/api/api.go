package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"pnptv/internal/auth"
	"pnptv/internal/hangouts"
	"pnptv/internal/ratelimiter"
	"pnptv/internal/store"
)

type application struct {
	config        config
	store         store.Storage
	logger        *zap.SugaredLogger
	authenticator auth.Authenticator
	telegram      *auth.TelegramAuthenticator
	channels      *hangouts.ChannelNamer
	rtc           RTCCredentialProvider
	rateLimiter   ratelimiter.Limiter
}

type config struct {
	addr        string
	env         string
	db          dbConfig
	auth        authConfig
	rtc         rtcConfig
	rateLimiter ratelimiter.Config
}

type authConfig struct {
	token    tokenConfig
	telegram telegramConfig
}

type tokenConfig struct {
	secret string
	exp    time.Duration
	iss    string
}

type telegramConfig struct {
	botToken   string
	maxAuthAge time.Duration
}

type rtcConfig struct {
	appID          string
	appCertificate string
	tokenTTL       time.Duration
	channelSalt    string
}

type dbConfig struct {
	addr        string
	maxConns    int32
	maxIdleTime string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(app.RateLimiterMiddleware)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", app.healthCheckHandler)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/telegram", app.telegramLoginHandler)

			r.Group(func(r chi.Router) {
				r.Use(app.AuthTokenMiddleware)
				r.Get("/me", app.authMeHandler)
				r.Post("/terms/accept", app.acceptTermsHandler)
				r.Post("/logout", app.logoutHandler)
			})
		})

		r.Route("/hangouts", func(r chi.Router) {
			// Listing public rooms is open to everyone, unauthenticated included.
			r.Get("/", app.getPublicRoomsHandler)

			r.Group(func(r chi.Router) {
				r.Use(app.AuthTokenMiddleware)
				r.Use(app.RequireTermsMiddleware)
				r.Post("/", app.createHangoutHandler)
				r.Post("/{roomID}/join", app.joinHangoutHandler)
			})
		})

		r.Route("/videorama", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Use(app.RequireTermsMiddleware)
			r.Get("/", app.getCollectionsHandler)
			r.Post("/", app.createCollectionHandler)
			r.Patch("/{collectionID}", app.updateCollectionHandler)
			r.Delete("/{collectionID}", app.deleteCollectionHandler)
			r.Post("/{collectionID}/play", app.playCollectionHandler)
		})
	})
	return r
}

func (app *application) run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	// Implementing graceful shutdown
	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
