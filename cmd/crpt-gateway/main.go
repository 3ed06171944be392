package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"crpt-gateway/client/crpt"
	"crpt-gateway/client/crpt/domain"
	"crpt-gateway/client/crpt/infra"

	"github.com/hashicorp/go-hclog"
	"github.com/redis/go-redis/v9"
)

func main() {
	log := hclog.New(&hclog.LoggerOptions{
		Name:  "crpt-gateway",
		Level: hclog.LevelFromString(getenvDefault("LOG_LEVEL", "info")),
	})

	if err := run(log); err != nil {
		log.Error("gateway stopped", "error", err)
		os.Exit(1)
	}
}

// run devolve o erro em vez de sair, para que os defers (redis, sinais) rodem.
func run(log hclog.Logger) error {
	cfg, err := readConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	var stats domain.StatsStore
	if cfg.statsEnabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.statsRedisAddr,
			Password: cfg.statsRedisPassword,
			DB:       cfg.statsRedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			return fmt.Errorf("redis stats ping: %w", err)
		}

		stats = infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.statsPrefix),
			infra.WithStatsTTL(cfg.statsTTL),
			infra.WithStatsPerMinute(cfg.statsPerMinute),
		)
	}

	client, err := crpt.NewClient(crpt.Options{
		BaseURL:        cfg.baseURL,
		TimeUnit:       cfg.timeUnit,
		RequestLimit:   cfg.requestLimit,
		TimeDelay:      cfg.timeDelay,
		AcquireTimeout: cfg.acquireTimeout,
		Tokens:         infra.StaticTokens(cfg.token),
		HTTPTimeout:    cfg.httpTimeout,
		Stats:          stats,
		Logger:         log,
	})
	if err != nil {
		return fmt.Errorf("client: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	h := crpt.NewHandler(client, crpt.HandlerOptions{Logger: log})
	h = crpt.WaitingRoom(crpt.WaitingRoomOptions{
		Max:            cfg.waitingMax,
		AcquireTimeout: cfg.waitingTimeout,
	})(h)
	if cfg.callerRateEnabled {
		store := infra.NewCallerStore(cfg.callerRateEvery, cfg.callerRateBurst)
		store.StartJanitor(ctx)
		h = crpt.CallerLimit(crpt.CallerLimitOptions{
			Store:               store,
			KeyHeader:           cfg.callerKeyHeader,
			TrustXForwardedFor:  cfg.trustXFF,
			RetryAfter:          cfg.callerRateEvery,
			AddRateLimitHeaders: cfg.addHeaders,
			Logger:              log,
		})(h)
	}

	srv := &http.Server{
		Addr:              cfg.listenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// a escrita pode esperar a janela do gate + a chamada à API
		WriteTimeout: cfg.httpTimeout + client.Window() + 10*time.Second,
		IdleTimeout:  90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("gateway listening", "addr", cfg.listenAddr, "upstream", cfg.baseURL)
	log.Info("quota", "limit", cfg.requestLimit, "window", client.Window(), "acquire_timeout", cfg.acquireTimeout)
	log.Info("waiting room", "max", cfg.waitingMax, "acquire_timeout", cfg.waitingTimeout)
	log.Info("caller rate", "enabled", cfg.callerRateEnabled, "every", cfg.callerRateEvery, "burst", cfg.callerRateBurst, "key_header", cfg.callerKeyHeader, "trust_xff", cfg.trustXFF)
	log.Info("stats", "enabled", cfg.statsEnabled, "redis_addr", cfg.statsRedisAddr, "per_minute", cfg.statsPerMinute, "ttl", cfg.statsTTL)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

type config struct {
	listenAddr     string
	baseURL        string
	token          string
	timeUnit       time.Duration
	requestLimit   int
	timeDelay      int64
	acquireTimeout time.Duration
	httpTimeout    time.Duration
	waitingMax     int
	waitingTimeout time.Duration

	callerRateEnabled bool
	callerRateEvery   time.Duration
	callerRateBurst   int
	callerKeyHeader   string
	trustXFF          bool
	addHeaders        bool

	statsEnabled       bool
	statsRedisAddr     string
	statsRedisPassword string
	statsRedisDB       int
	statsPrefix        string
	statsTTL           time.Duration
	statsPerMinute     bool
}

func readConfig() (config, error) {
	cfg := config{}
	cfg.listenAddr = getenvDefault("LISTEN_ADDR", ":8080")
	cfg.baseURL = getenvDefault("CRPT_BASE_URL", crpt.DefaultBaseURL)
	cfg.token = os.Getenv("CRPT_TOKEN")

	unit, ok := domain.ParseTimeUnit(getenvDefault("CRPT_TIME_UNIT", "second"))
	if !ok {
		return config{}, errors.New("CRPT_TIME_UNIT must be one of millisecond, second, minute, hour, day")
	}
	cfg.timeUnit = unit
	cfg.requestLimit = getenvIntDefault("CRPT_REQUEST_LIMIT", 10)
	cfg.timeDelay = int64(getenvIntDefault("CRPT_TIME_DELAY", 1))
	cfg.acquireTimeout = getenvDurationDefault("CRPT_ACQUIRE_TIMEOUT", 0)
	cfg.httpTimeout = getenvDurationDefault("CRPT_HTTP_TIMEOUT", 30*time.Second)
	cfg.waitingMax = getenvIntDefault("WAITING_MAX", 100)
	cfg.waitingTimeout = getenvDurationDefault("WAITING_TIMEOUT", 0)

	cfg.callerRateEnabled = getenvBoolDefault("CALLER_RATE_ENABLED", false)
	cfg.callerRateEvery = getenvDurationDefault("CALLER_RATE_EVERY", 1*time.Second)
	cfg.callerRateBurst = getenvIntDefault("CALLER_RATE_BURST", 5)
	cfg.callerKeyHeader = getenvDefault("CALLER_KEY_HEADER", crpt.ParticipantHeader)
	cfg.trustXFF = getenvBoolDefault("TRUST_XFF", false)
	cfg.addHeaders = getenvBoolDefault("ADD_RATELIMIT_HEADERS", false)

	cfg.statsEnabled = getenvBoolDefault("STATS_ENABLED", false)
	cfg.statsRedisAddr = os.Getenv("STATS_REDIS_ADDR")
	cfg.statsRedisPassword = os.Getenv("STATS_REDIS_PASSWORD")
	cfg.statsRedisDB = getenvIntDefault("STATS_REDIS_DB", 0)
	cfg.statsPrefix = getenvDefault("STATS_PREFIX", "crpt:stats")
	cfg.statsTTL = getenvDurationDefault("STATS_TTL", 24*time.Hour)
	cfg.statsPerMinute = getenvBoolDefault("STATS_PER_MINUTE", true)

	if strings.TrimSpace(cfg.token) == "" {
		return config{}, errors.New("CRPT_TOKEN is required")
	}
	if cfg.requestLimit < 1 {
		return config{}, errors.New("CRPT_REQUEST_LIMIT must be > 0")
	}
	if cfg.timeDelay < 1 {
		return config{}, errors.New("CRPT_TIME_DELAY must be > 0")
	}
	if cfg.waitingMax < 0 {
		return config{}, errors.New("WAITING_MAX must be >= 0")
	}
	if cfg.callerRateEnabled && (cfg.callerRateEvery <= 0 || cfg.callerRateBurst <= 0) {
		return config{}, errors.New("CALLER_RATE_EVERY and CALLER_RATE_BURST must be > 0")
	}
	if cfg.statsEnabled && strings.TrimSpace(cfg.statsRedisAddr) == "" {
		return config{}, errors.New("STATS_REDIS_ADDR is required when STATS_ENABLED=true")
	}
	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
