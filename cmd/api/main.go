package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/student-registry/registry-api/internal/api"
	"github.com/student-registry/registry-api/internal/api/handler"
	"github.com/student-registry/registry-api/internal/api/metrics"
	"github.com/student-registry/registry-api/internal/core/ports"
	"github.com/student-registry/registry-api/internal/core/service"
	"github.com/student-registry/registry-api/internal/infrastructure/db/gormdb"
	mongodb "github.com/student-registry/registry-api/internal/infrastructure/db/mongo"
	redisdb "github.com/student-registry/registry-api/internal/infrastructure/db/redis"
	"github.com/student-registry/registry-api/internal/infrastructure/photohost"
	"github.com/student-registry/registry-api/internal/infrastructure/token"
	"github.com/student-registry/registry-api/internal/pkg/config"
	"github.com/student-registry/registry-api/pkg/logger"
)

// @title           Student Registry API
// @version         1.0
// @description     Authorized users register students with a photo and list them.
// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT
// @BasePath        /
// @schemes         http https

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		// Falls back to stderr when the failure happened before logger.Init.
		log := logger.Get()
		log.Fatal().Err(err).Msg("registry-api stopped")
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "registry-api",
	})

	checks := make(map[string]handler.Check)

	users, students, closeStore, err := openStore(ctx, cfg, checks, log)
	if err != nil {
		return err
	}
	defer closeStore()

	photos, files, err := newPhotoHost(cfg, log)
	if err != nil {
		return err
	}

	tokens := token.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	authService := service.NewAuthService(users, tokens, log)

	if cfg.Redis.Addr != "" {
		client, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer client.Close()
		authService.WithLimiter(redisdb.NewLoginLimiter(client, cfg.Redis.LoginMaxAttempts, cfg.Redis.LoginLockout))
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		log.Info().Str("addr", cfg.Redis.Addr).Msg("login throttling enabled")
	}

	cookies := handler.CookieConfig{
		Secure:   cfg.Cookie.Secure,
		SameSite: handler.ParseSameSite(cfg.Cookie.SameSite),
	}
	if cookies.SameSite == http.SameSiteNoneMode && !cookies.Secure {
		log.Warn().Msg("COOKIE_SAMESITE=none without COOKIE_SECURE; browsers will drop the token cookies")
	}

	e := api.NewRouter(api.Options{
		Logger:         log,
		AuthService:    authService,
		StudentService: service.NewStudentService(students, metrics.InstrumentPhotoHost(photos), log),
		Tokens:         tokens,
		Cookies:        cookies,
		CORSOrigin:     cfg.CORSOrigin,
		BodyLimit:      cfg.MaxContentLength,
		Photos:         files,
		Checks:         checks,
		Registerer:     prometheus.DefaultRegisterer,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutdown signal received, stopping server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info().Msg("server stopped gracefully")
	return nil
}

// openStore picks MongoDB for mongodb:// URLs and gorm (postgres or sqlite)
// for everything else.
func openStore(ctx context.Context, cfg *config.Config, checks map[string]handler.Check, log zerolog.Logger) (ports.UserRepository, ports.StudentRepository, func(), error) {
	if strings.HasPrefix(cfg.DatabaseURL, "mongodb://") || strings.HasPrefix(cfg.DatabaseURL, "mongodb+srv://") {
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.DatabaseURL, Database: cfg.MongoDB})
		if err != nil {
			return nil, nil, nil, err
		}
		checks["database"] = func(ctx context.Context) error { return mongodb.Ping(ctx, db) }
		log.Info().Str("database", cfg.MongoDB).Msg("using mongodb store")
		closeFn := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(ctx); err != nil {
				log.Warn().Err(err).Msg("mongo disconnect")
			}
		}
		return mongodb.NewUserRepository(db), mongodb.NewStudentRepository(db), closeFn, nil
	}

	db, err := gormdb.Open(ctx, gormdb.Config{DSN: cfg.DatabaseURL, Debug: strings.EqualFold(cfg.LogLevel, "debug")})
	if err != nil {
		return nil, nil, nil, err
	}
	checks["database"] = func(ctx context.Context) error { return gormdb.Ping(ctx, db) }
	log.Info().Msg("using relational store")
	closeFn := func() {
		if err := gormdb.Close(db); err != nil {
			log.Warn().Err(err).Msg("database close")
		}
	}
	return gormdb.NewUserRepository(db), gormdb.NewStudentRepository(db), closeFn, nil
}

// newPhotoHost returns Cloudinary when credentials are configured. Otherwise
// photos go to UPLOAD_FOLDER and the returned PhotoFiles serves them.
func newPhotoHost(cfg *config.Config, log zerolog.Logger) (ports.PhotoHost, handler.PhotoFiles, error) {
	cld := photohost.CloudinaryConfig{
		CloudName: cfg.Cloudinary.CloudName,
		APIKey:    cfg.Cloudinary.APIKey,
		APISecret: cfg.Cloudinary.APISecret,
	}
	if cld.Enabled() {
		host, err := photohost.NewCloudinary(cld)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("cloud", cld.CloudName).Msg("photos hosted on cloudinary")
		return host, nil, nil
	}

	baseURL := strings.TrimRight(cfg.Uploads.PublicBaseURL, "/") + "/uploads"
	local, err := photohost.NewLocal(cfg.Uploads.Folder, baseURL, log)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("folder", cfg.Uploads.Folder).Msg("photos stored on local disk")
	return local, local, nil
}
