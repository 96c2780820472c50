package mockapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"contentadmin/internal/config"
	"contentadmin/internal/content"
)

// Seed makes sure the admin account exists with the given password and, on
// an empty database, adds a few sample categories and posts.
func Seed(store *Store, email, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	if err := store.UpsertUser(&User{Name: "Admin", Email: email, Role: "ADMIN", PasswordHash: hash}); err != nil {
		return err
	}

	_, total, err := store.ListCategories(0, 1)
	if err != nil || total > 0 {
		return err
	}
	for _, c := range []content.Category{
		{Title: "Milk Sweets", Slug: "milk-sweets", Description: "Rasgulla, rasmalai and other milk based sweets."},
		{Title: "Dry Sweets", Slug: "dry-sweets", Description: "Barfi, laddu and sweets that keep."},
		{Title: "Snacks", Slug: "snacks", Description: "Savoury bites for tea time."},
	} {
		c := c
		if err := store.CreateCategory(&c); err != nil {
			return err
		}
	}
	return store.CreateBlog(&content.Blog{
		Title:             "Welcome to the kitchen",
		Slug:              "welcome-to-the-kitchen",
		Excerpt:           "How our sweets are made.",
		Description:       "<p>Every batch starts with fresh milk.</p>",
		EstimatedReadTime: content.DefaultReadTime,
	})
}

// Run opens the database, seeds it and serves until ctx is cancelled.
// ready, when non-nil, receives the bound address once listening.
func Run(ctx context.Context, cfg config.MockAPIConfig, logger *zap.Logger, ready func(addr string)) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	store, err := OpenStore(cfg.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := Seed(store, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           NewServer(store, NewTokens(cfg.JWTSecret, cfg.TokenTTL), logger).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info("mock API listening", zap.String("addr", ln.Addr().String()), zap.String("db", cfg.DB))
	if ready != nil {
		ready(ln.Addr().String())
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
