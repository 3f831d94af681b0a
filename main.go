package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"todo-auth-api/api"
	"todo-auth-api/auth"
	"todo-auth-api/cache"
	"todo-auth-api/config"
	"todo-auth-api/server"
	"todo-auth-api/store"
)

func main() {
	envFileFlag := flag.String("env-file", "", "dotenv file to load before reading the environment")
	driverFlag := flag.String("db-driver", "", "database driver: postgres, mysql, sqlite or sqlite3")
	dbFlag := flag.String("db", "", "database source (overrides DB_SOURCE)")
	redisFlag := flag.String("redis", "", "redis address (overrides REDIS_ADDR)")
	addrFlag := flag.String("addr", "", "listen address (overrides ADDR)")
	flag.Parse()

	cfg := config.Default()
	if *envFileFlag != "" {
		cfg.EnvFile = *envFileFlag
	} else if v := os.Getenv("ENV_FILE"); v != "" {
		cfg.EnvFile = v
	}
	if err := config.LoadEnvFile(cfg.EnvFile); err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	cfg, err := config.FromEnv(cfg, os.Getenv)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	if *driverFlag != "" {
		cfg.DBDriver = *driverFlag
	}
	if *dbFlag != "" {
		cfg.DBSource = *dbFlag
	}
	if *redisFlag != "" {
		cfg.RedisAddr = *redisFlag
	}
	if *addrFlag != "" {
		cfg.Addr = *addrFlag
	}
	if err := cfg.Validate(store.Drivers()); err != nil {
		log.Fatalf("FATAL: invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

// app holds everything a running server owns.
type app struct {
	store    *store.Store
	accounts *cache.Accounts
	handler  http.Handler
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	st, err := store.Open(ctx, cfg.DBDriver, cfg.DBSource)
	if err != nil {
		return nil, fmt.Errorf("could not initialize database: %w", err)
	}
	log.Printf("Database connection successful (%s) and tables created.", cfg.DBDriver)

	if cfg.AdminName != "" {
		created, err := ensureAdmin(ctx, st, cfg.AdminName, cfg.AdminPassword)
		if err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("could not create admin account: %w", err)
		}
		if created {
			log.Printf("Created admin account %q.", cfg.AdminName)
		}
	}

	accounts, err := cache.Open(ctx, cfg.RedisAddr, cfg.CacheTTL)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	if accounts != nil {
		log.Println("Redis connection successful.")
	} else {
		log.Println("REDIS_ADDR not set, account cache disabled.")
	}

	tokens, err := auth.NewTokens(cfg.SecretKey, cfg.TokenTTL)
	if err != nil {
		_ = accounts.Close()
		_ = st.Close()
		return nil, err
	}

	return &app{
		store:    st,
		accounts: accounts,
		handler:  server.NewServer(st, tokens, accounts, cfg.RequestTimeout).Handler(),
	}, nil
}

func (a *app) Close() {
	if err := a.accounts.Close(); err != nil {
		log.Printf("WARN: closing redis: %v", err)
	}
	if err := a.store.Close(); err != nil {
		log.Printf("WARN: closing database: %v", err)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           a.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
	}

	log.Println("Shutting down.")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// ensureAdmin creates an admin account called name unless one with that
// name already exists. It reports whether an account was created.
func ensureAdmin(ctx context.Context, st *store.Store, name, password string) (bool, error) {
	_, err := st.GetAccountByName(ctx, name)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}
	_, err = st.CreateAccount(ctx, api.Account{
		PublicID:     uuid.NewString(),
		Name:         name,
		PasswordHash: hashed,
		Admin:        true,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
