package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/slotsmith/slotsmith/libs/config"
	"github.com/slotsmith/slotsmith/libs/db"
	"github.com/slotsmith/slotsmith/libs/httpx"
	"github.com/slotsmith/slotsmith/libs/kafkax"
	otelx "github.com/slotsmith/slotsmith/libs/otel"
	"github.com/slotsmith/slotsmith/libs/runtime"
	"github.com/slotsmith/slotsmith/services/scheduling-service/internal/calendar"
	"github.com/slotsmith/slotsmith/services/scheduling-service/internal/handlers"
	"github.com/slotsmith/slotsmith/services/scheduling-service/internal/outbox"
	"github.com/slotsmith/slotsmith/services/scheduling-service/internal/resolver"
	"github.com/slotsmith/slotsmith/services/scheduling-service/internal/storage"
)

// newCalendarProvider picks the busy-interval source for this
// deployment: Google credentials win, then the calendar-sync gRPC
// service, then none (no busy intervals).
func newCalendarProvider(logger *slog.Logger) calendar.Provider {
	clientID := config.String("GOOGLE_CLIENT_ID", "")
	clientSecret := config.String("GOOGLE_CLIENT_SECRET", "")
	if clientID != "" && clientSecret != "" {
		provider, err := calendar.NewGoogleProvider(calendar.GoogleConfig{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenDir:     config.String("GOOGLE_TOKEN_DIR", "."),
		}, logger)
		if err != nil {
			logger.Error("google calendar provider init failed", "err", err)
		} else {
			logger.Info("calendar provider: google")
			return provider
		}
	}

	if addr := config.String("CALENDAR_SYNC_GRPC_ADDR", ""); addr != "" {
		provider, err := calendar.NewSyncProvider(addr)
		if err != nil {
			logger.Error("calendar-sync provider init failed", "err", err, "addr", addr)
		} else if provider != nil {
			logger.Info("calendar provider: calendar-sync", "addr", addr)
			return provider
		}
	}

	logger.Warn("no calendar integration configured; resolving against schedules only")
	return calendar.NoneProvider{}
}

func publicSlotsHandler(h http.HandlerFunc, logger *slog.Logger) http.Handler {
	var limiter httpx.Middleware
	limit := config.Int("PUBLIC_RATE_LIMIT", 60)
	window := config.Duration("PUBLIC_RATE_WINDOW", time.Minute)
	if redisAddr := config.String("REDIS_ADDR", ""); redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
		limiter = httpx.NewRedisRateLimiter(rdb, limit, window, "slots").Middleware(logger, true)
	} else {
		limiter = httpx.NewRateLimiter(limit, window).Middleware()
	}

	cors := httpx.WithCORS(httpx.CORSPolicy{
		AllowedOrigins: strings.Split(config.String("PUBLIC_CORS_ORIGINS", ""), ","),
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         time.Hour,
	})

	return httpx.Chain(h, cors, limiter)
}

func main() {
	service := config.String("SERVICE_NAME", "scheduling-service")
	port, err := config.Port("PORT", "8084")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	pool, err := db.Open(ctx, dbURL, int32(config.Int("DB_MAX_CONNS", 10)))
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	outboxRepo := outbox.NewRepository(pool)
	scheduleRepo := storage.NewScheduleRepository(pool, outboxRepo)
	eventRepo := storage.NewEventRepository(pool, outboxRepo)

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: config.Duration("OUTBOX_POLL_INTERVAL", 2*time.Second),
		BatchSize: config.Int("OUTBOX_BATCH_SIZE", 50),
	})
	go outboxPublisher.Run(ctx)

	provider := newCalendarProvider(logger)
	slotService := resolver.New(scheduleRepo, provider, logger)

	scheduleHandler := handlers.NewScheduleHandler(scheduleRepo, logger)
	eventHandler := handlers.NewEventHandler(eventRepo, logger)
	slotHandler := handlers.NewSlotHandler(slotService, eventRepo, logger)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)
	mux.HandleFunc("/api/v1/schedule", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			scheduleHandler.Save(w, r)
			return
		}
		scheduleHandler.Get(w, r)
	})
	mux.HandleFunc("/api/v1/events", eventHandler.CreateOrList)
	mux.HandleFunc("/api/v1/events/update", eventHandler.Update)
	mux.HandleFunc("/api/v1/events/delete", eventHandler.Delete)
	mux.HandleFunc("/api/v1/slots/resolve", slotHandler.Resolve)
	mux.Handle("/api/v1/public/slots", publicSlotsHandler(slotHandler.PublicSlots, logger))

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(1<<20),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "scheduling")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
