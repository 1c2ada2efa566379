// Server runs the daily-logger HTTP API.
// Requires DATABASE_URL, ENCRYPTION_SECRET and either ACCESS_SECRET/REFRESH_SECRET or a JWT key pair.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	adminhandler "daily-logger/internal/admin/handler"
	"daily-logger/internal/audit"
	auditrepo "daily-logger/internal/audit/repository"
	authhandler "daily-logger/internal/auth/handler"
	authservice "daily-logger/internal/auth/service"
	"daily-logger/internal/config"
	"daily-logger/internal/db"
	healthhandler "daily-logger/internal/health/handler"
	journalhandler "daily-logger/internal/journal/handler"
	journalrepo "daily-logger/internal/journal/repository"
	journalservice "daily-logger/internal/journal/service"
	"daily-logger/internal/logger"
	"daily-logger/internal/platform/cookie"
	"daily-logger/internal/policy/engine"
	"daily-logger/internal/ratelimit"
	"daily-logger/internal/security"
	"daily-logger/internal/server"
	"daily-logger/internal/server/middleware"
	sleepdomain "daily-logger/internal/sleep/domain"
	sleephandler "daily-logger/internal/sleep/handler"
	sleeprepo "daily-logger/internal/sleep/repository"
	sleepservice "daily-logger/internal/sleep/service"
	taskhandler "daily-logger/internal/task/handler"
	taskrepo "daily-logger/internal/task/repository"
	"daily-logger/internal/telemetry"
	telemetryotel "daily-logger/internal/telemetry/otel"
	"daily-logger/internal/telemetry/producer"
	userhandler "daily-logger/internal/user/handler"
	userrepo "daily-logger/internal/user/repository"
	userservice "daily-logger/internal/user/service"
)

const (
	serviceName     = "daily-logger"
	shutdownTimeout = 10 * time.Second
	authRateWindow  = time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Fatalf("config: %v", err)
	}
	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zlog); err != nil {
		zlog.Fatal("server exited", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, zlog *zap.Logger) error {
	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	tokens, err := newTokenProvider(cfg)
	if err != nil {
		return err
	}
	cipher, err := security.NewCipher(cfg.EncryptionSecret)
	if err != nil {
		return err
	}
	policy, err := engine.NewOPAEvaluator(ctx, engine.DefaultAdminPolicy)
	if err != nil {
		return err
	}

	providers, err := telemetryotel.NewProviders(ctx, cfg.OTLPEndpoint, serviceName, cfg.OTLPInsecure)
	if err != nil {
		return err
	}
	providers.SetGlobal()

	events := telemetry.Fanout{telemetryotel.NewEventEmitter(providers.LoggerProvider)}
	if brokers := cfg.TelemetryKafkaBrokersList(); len(brokers) > 0 {
		kafkaProducer, err := producer.NewKafkaProducer(brokers, cfg.TelemetryKafkaTopic)
		if err != nil {
			return err
		}
		defer kafkaProducer.Close()
		events = append(events, kafkaProducer)
		zlog.Info("kafka event fan-out enabled", zap.String("topic", cfg.TelemetryKafkaTopic))
	}

	var limiter *ratelimit.Limiter
	if cfg.RedisAddr != "" {
		rdb := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer rdb.Close()
		limiter = ratelimit.NewLimiter(ratelimit.NewRedisStore(rdb), cfg.AuthRateLimit, authRateWindow)
		zlog.Info("auth rate limiting enabled", zap.Int("per_minute", cfg.AuthRateLimit))
	}

	router := newRouter(cfg, database, tokens, cipher, policy, events, limiter, providers, zlog)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zlog.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zlog.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	serveErr := g.Wait()

	// Let in-flight async emits finish before the exporters go away.
	time.Sleep(telemetry.ShutdownDrainDuration)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := providers.Shutdown(shutdownCtx); err != nil {
		zlog.Warn("telemetry shutdown", zap.Error(err))
	}
	zlog.Info("http server stopped")
	return serveErr
}

func newTokenProvider(cfg *config.Config) (*security.TokenProvider, error) {
	if cfg.UsesKeyPair() {
		priv, pub, err := security.LoadKeyPair(cfg.JWTPrivateKey, cfg.JWTPublicKey)
		if err != nil {
			return nil, err
		}
		return security.NewKeyPairTokenProvider(priv, pub, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL(), cfg.RefreshTTL())
	}
	return security.NewHMACTokenProvider(cfg.AccessSecret, cfg.RefreshSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL(), cfg.RefreshTTL())
}

func newRouter(
	cfg *config.Config,
	database *sql.DB,
	tokens *security.TokenProvider,
	cipher *security.Cipher,
	policy *engine.OPAEvaluator,
	events telemetry.EventEmitter,
	limiter *ratelimit.Limiter,
	providers *telemetryotel.Providers,
	zlog *zap.Logger,
) http.Handler {
	users := userrepo.NewPostgresRepository(database)
	auditLogger := audit.NewLogger(auditrepo.NewPostgresRepository(database), middleware.ClientIP, zlog.Named("audit"))

	authSvc := authservice.NewAuthService(users, security.NewHasher(cfg.BcryptCost), tokens, auditLogger, events, zlog.Named("auth"))
	sleepSvc := sleepservice.NewService(sleeprepo.NewPostgresRepository(database), sleepdomain.NewValidator(time.Now), events, zlog.Named("sleep"))
	journalSvc := journalservice.NewService(journalrepo.NewPostgresRepository(database), cipher, events, zlog.Named("journal"))

	journal := journalhandler.NewHandler(journalSvc, zlog.Named("journal"))

	return server.NewRouter(server.Deps{
		Tokens:         tokens,
		Audit:          auditLogger,
		AuthLimiter:    limiter,
		Health:         healthhandler.NewHandler(database, policy, zlog.Named("health")),
		Auth:           authhandler.NewHandler(authSvc, cookie.Jar{Secure: cfg.IsProduction()}, zlog.Named("auth")).Routes,
		Sleep:          sleephandler.NewHandler(sleepSvc, zlog.Named("sleep")).Routes,
		Tasks:          taskhandler.NewHandler(taskrepo.NewPostgresRepository(database), events, zlog.Named("tasks")).Routes,
		Logs:           journal.Routes,
		Ratings:        journal.RatingRoutes,
		Profile:        userhandler.NewHandler(userservice.NewProfileService(users), zlog.Named("user")).Routes,
		Admin:          mountAdmin(cfg, users, policy, events, zlog),
		TracerProvider: providers.TracerProvider,
		MeterProvider:  providers.MeterProvider,
		Log:            zlog,
	})
}

// mountAdmin leaves /api/admin unmounted when no ADMIN_SECRET is configured.
func mountAdmin(cfg *config.Config, users adminhandler.UserAdmin, policy engine.Evaluator, events telemetry.EventEmitter, zlog *zap.Logger) func(chi.Router) {
	if cfg.AdminSecret == "" {
		zlog.Warn("ADMIN_SECRET not set; admin routes disabled")
		return nil
	}
	return adminhandler.NewHandler(users, policy, cfg.AdminSecret, events, zlog.Named("admin")).Routes
}
