package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	rdb "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/prism/internal/accounts"
	"github.com/dropDatabas3/prism/internal/config"
	"github.com/dropDatabas3/prism/internal/email"
	"github.com/dropDatabas3/prism/internal/http/middlewares"
	"github.com/dropDatabas3/prism/internal/http/router"
	"github.com/dropDatabas3/prism/internal/metrics"
	"github.com/dropDatabas3/prism/internal/observability/logger"
	"github.com/dropDatabas3/prism/internal/prism"
	"github.com/dropDatabas3/prism/internal/rate"
	"github.com/dropDatabas3/prism/internal/roles"
	"github.com/dropDatabas3/prism/internal/security/password"
	"github.com/dropDatabas3/prism/internal/store"
	"github.com/dropDatabas3/prism/internal/store/memory"
	"github.com/dropDatabas3/prism/internal/store/pg"
	"github.com/dropDatabas3/prism/internal/tokens"
)

func main() {
	// .env es opcional; las env vars reales siempre ganan.
	if err := godotenv.Load(); err != nil {
		log.Printf("godotenv: no .env file loaded: %v", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       os.Getenv("LOG_LEVEL"),
		ServiceName: "prism",
	})
	defer logger.Sync() //nolint:errcheck

	lg := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.Config{
		Driver:   cfg.Storage.Driver,
		DSN:      cfg.Storage.DSN,
		MaxConns: cfg.Storage.Postgres.MaxConns,
		MinConns: cfg.Storage.Postgres.MinConns,
	})
	if err != nil {
		lg.Fatal("store open failed", logger.Err(err))
	}
	defer st.Close() //nolint:errcheck

	if cfg.Flags.Migrate {
		if pgStore, ok := st.(*pg.Store); ok {
			n, err := pg.Migrate(ctx, pgStore.Pool())
			if err != nil {
				lg.Fatal("migrations failed", logger.Err(err))
			}
			lg.Info("migrations applied", logger.Int("count", n))
		}
	}

	// Los tokens pueden vivir en memoria aunque el contenido sea durable:
	// single-use de corta vida, perderlos en un reinicio solo obliga a
	// reemitir.
	tokenRepo := st.Tokens()
	if cfg.Tokens.Persistence == "memory" && cfg.Storage.Driver != "memory" {
		tokenRepo = memory.New().Tokens()
		lg.Info("security tokens using in-memory store")
	}

	content := prism.New(st.Content(), prism.NewSchemaValidator())
	if err := prism.SeedBuiltins(ctx, content); err != nil {
		lg.Fatal("seeding builtin definitions failed", logger.Err(err))
	}

	tokSvc := tokens.New(tokenRepo)
	rolesSvc := roles.New(st.Roles())

	var sender email.Sender = email.NoopSender{}
	if cfg.SMTP.Host != "" {
		s := email.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From, cfg.SMTP.Username, cfg.SMTP.Password)
		s.TLSMode = cfg.SMTP.TLS
		s.InsecureSkipVerify = cfg.SMTP.InsecureSkipVerify
		sender = s
	}
	mailSvc := email.NewService(sender, cfg.Email.BaseURL)

	acct := accounts.New(accounts.Deps{
		Content: content,
		Tokens:  tokSvc,
		Roles:   st.Roles(),
		Mail:    mailSvc,
		Policy: password.Policy{
			MinLength:     cfg.Security.PasswordPolicy.MinLength,
			RequireUpper:  cfg.Security.PasswordPolicy.RequireUpper,
			RequireLower:  cfg.Security.PasswordPolicy.RequireLower,
			RequireDigit:  cfg.Security.PasswordPolicy.RequireDigit,
			RequireSymbol: cfg.Security.PasswordPolicy.RequireSymbol,
		},
		InviteTTL: cfg.Tokens.InviteTTL,
		ResetTTL:  cfg.Tokens.ResetTTL,
	})

	if err := metrics.Register(nil); err != nil {
		lg.Warn("metrics registration", logger.Err(err))
	}

	globalLimiter, flowLimiter := buildLimiters(cfg)

	handler := router.New(router.Deps{
		Store:    st,
		Content:  content,
		Roles:    rolesSvc,
		Accounts: acct,
		Mail:     mailSvc,
		Auth: middlewares.AuthConfig{
			Secret: []byte(cfg.JWT.Secret),
			Issuer: cfg.JWT.Issuer,
		},
		GlobalLimiter:  globalLimiter,
		FlowLimiter:    flowLimiter,
		DebugEchoLinks: cfg.Email.DebugEchoLinks,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("http server listening", logger.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		lg.Info("shutting down")
		return srv.Shutdown(shCtx)
	})

	if err := g.Wait(); err != nil {
		lg.Fatal("server exited", logger.Err(err))
	}
}

// loadConfig lee CONFIG_PATH (default config.yaml). Sin archivo corre con
// defaults + env, que alcanza para dev con storage memory.
func loadConfig() (*config.Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config.Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// buildLimiters arma los limiters global y de flujos públicos según config.
// Retorna nils si el rate limiting está deshabilitado.
func buildLimiters(cfg *config.Config) (rate.Limiter, rate.Limiter) {
	if !cfg.Rate.Enabled {
		return nil, nil
	}
	window, _ := time.ParseDuration(cfg.Rate.Window)
	flowWindow, _ := time.ParseDuration(cfg.Rate.Forgot.Window)

	if cfg.Rate.Backend == "redis" && cfg.Rate.Redis.Addr != "" {
		client := rdb.NewClient(&rdb.Options{
			Addr: cfg.Rate.Redis.Addr,
			DB:   cfg.Rate.Redis.DB,
		})
		return rate.NewRedisLimiter(client, cfg.Rate.Redis.Prefix, cfg.Rate.MaxRequests, window),
			rate.NewRedisLimiter(client, cfg.Rate.Redis.Prefix+":flows", cfg.Rate.Forgot.Limit, flowWindow)
	}
	return rate.NewMemoryLimiter(cfg.Rate.MaxRequests, window),
		rate.NewMemoryLimiter(cfg.Rate.Forgot.Limit, flowWindow)
}
