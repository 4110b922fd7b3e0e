// Package server wires the marketplace together and runs it.
//
// New is the composition root: it opens the database and hands it, as
// repository interfaces, to the services, which in turn are handed to the
// HTTP handlers and the chat bot. Nothing else in the module constructs
// dependencies.
//
//	sqlite.DB ─▶ UserService, ListingService ─▶ handlers, bot
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/giftmarket/internal/auth"
	"github.com/sakif/giftmarket/internal/bot"
	"github.com/sakif/giftmarket/internal/config"
	"github.com/sakif/giftmarket/internal/handler"
	"github.com/sakif/giftmarket/internal/middleware"
	sqliteRepo "github.com/sakif/giftmarket/internal/repository/sqlite"
	"github.com/sakif/giftmarket/internal/service"
)

const shutdownTimeout = 30 * time.Second

// Server owns the database, the router and, when a bot token is set, the bot.
type Server struct {
	router   *chi.Mux
	config   *config.Config
	logger   *slog.Logger
	db       *sqliteRepo.DB // closed when Start returns
	users    *service.UserService
	listings *service.ListingService
}

// New opens the database and builds the router.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router:   chi.NewRouter(),
		config:   cfg,
		logger:   logger,
		db:       db,
		users:    service.NewUserService(db, logger),
		listings: service.NewListingService(db, cfg.DefaultCurrency, logger),
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler returns the router. Used by tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database. Start calls it on the way out.
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes configures middleware and routes.
//
// MIDDLEWARE ORDER:
// 1. RequestID: assigns an id to each request, picked up by the logger
// 2. RealIP: takes the client IP from proxy headers
// 3. Logger: one line per request
// 4. Recoverer: turns panics into 500s
// 5. WebAppIdentity: the Telegram user, if the request carries init data
//
// Paths are the ones the mini-app script calls, so they are flat rather
// than grouped under /api.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(auth.WebAppIdentity(s.config.Telegram.BotToken, s.config.Telegram.InitMaxAge, s.logger))

	webapp, err := handler.NewWebAppHandler(s.users, s.config.DefaultCurrency, "/tonconnect-manifest.json", s.logger)
	if err != nil {
		return fmt.Errorf("creating webapp handler: %w", err)
	}
	users := handler.NewUserHandler(s.users, s.logger)
	listings := handler.NewListingHandler(s.listings, s.logger)

	// === Page ===
	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/webapp", http.StatusFound)
	})
	s.router.Get("/webapp", webapp.HandleWebApp)
	s.router.Post("/webapp-data", webapp.HandleWebAppData)
	s.router.Get("/tonconnect-manifest.json", handler.ManifestHandler(handler.Manifest{
		URL:     s.config.Manifest.AppURL,
		Name:    s.config.Manifest.Name,
		IconURL: s.config.Manifest.IconURL,
	}))

	// === Users ===
	s.router.Post("/get_user_data", users.HandleGetUserData)
	s.router.Post("/update_user_wallet", users.HandleUpdateWallet)
	s.router.Post("/get_registration_date", users.HandleGetRegistrationDate)
	s.router.Post("/get_user_stats", users.HandleGetUserStats)
	s.router.Post("/save_user", users.HandleSaveUser)
	s.router.Post("/check_username", users.HandleCheckUsername)

	// === Listings ===
	s.router.Get("/get_active_ads", listings.HandleGetActiveAds)
	s.router.Post("/get_user_ads", listings.HandleGetUserAds)
	s.router.Post("/save_ad", listings.HandleSaveAd)
	s.router.Post("/delete_ad", listings.HandleDeleteAd)
	s.router.Post("/update_ad_price", listings.HandleUpdateAdPrice)
	s.router.Post("/buy_ad", listings.HandleBuyAd)

	// === Misc ===
	s.router.Get("/api/collections", handler.HandleCollections)
	s.router.Get("/health", handler.HealthHandler(s.db, s.logger))

	return nil
}

// Start runs the HTTP server, and the bot when a token is configured,
// until SIGINT or SIGTERM.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting connections and wait for in-flight requests (30s)
// 2. Stop the bot and wait for its current update to finish
// 3. Close the database (flushes the WAL, releases the file)
func (s *Server) Start() error {
	defer s.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	botCtx, stopBot := context.WithCancel(ctx)
	defer func() {
		stopBot()
		wg.Wait()
	}()
	s.startBot(botCtx, &wg)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d/webapp", s.config.Port)),
			slog.String("database", s.config.DBPath),
			slog.Bool("bot", s.config.BotEnabled()),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

// startBot launches the chat bot in the background. A bot that cannot
// connect is logged and skipped; the mini-app works without it.
func (s *Server) startBot(ctx context.Context, wg *sync.WaitGroup) {
	if !s.config.BotEnabled() {
		s.logger.Info("BOT_TOKEN not set, chat bot disabled")
		return
	}

	b, err := bot.New(s.config.Telegram.BotToken, s.config.Telegram.WebAppURL, s.users, s.listings, s.logger)
	if err != nil {
		s.logger.Warn("chat bot unavailable", slog.String("error", err.Error()))
		return
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		b.Start(ctx)
	}()
}
