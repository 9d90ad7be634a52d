package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"pnptv/internal/auth"
	"pnptv/internal/db"
	"pnptv/internal/hangouts"
	"pnptv/internal/ratelimiter"
	"pnptv/internal/store"
)

var version = "1.0.0"

func envInt(key string, fallback int) int {
	if val, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
		fmt.Println("Invalid "+key+", defaulting to", fallback)
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if val, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
		fmt.Println("Invalid "+key+", defaulting to", fallback)
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if val, exists := os.LookupEnv(key); exists {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		fmt.Println("Invalid "+key+", defaulting to", fallback)
	}
	return fallback
}

// LoadRateLimiterConfig retrieves rate limiter settings from environment variables
func LoadRateLimiterConfig() ratelimiter.Config {
	return ratelimiter.Config{
		RequestsPerTimeFrame: envInt("RATELIMITER_REQUESTS_COUNT", 200),
		TimeFrame:            5 * time.Second,
		Enabled:              envBool("RATE_LIMITER_ENABLED", false),
	}
}

// NewLogger creates a new zap logger with color.
func NewLogger() (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)
	level := zapcore.InfoLevel
	core := zapcore.NewCore(consoleEncoder, zapcore.NewMultiWriteSyncer(zapcore.AddSync(os.Stdout)), level)

	return zap.New(core).Sugar(), nil
}

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Fatalf("Error loading .env file: %v", err)
	}

	cfg := config{
		addr: os.Getenv("ADDR"),
		env:  os.Getenv("ENV"),
		db: dbConfig{
			addr:        os.Getenv("DB_ADDR"),
			maxConns:    int32(envInt("DB_MAX_CONNS", 25)),
			maxIdleTime: os.Getenv("DB_MAX_IDLE_TIME"),
		},
		auth: authConfig{
			token: tokenConfig{
				secret: os.Getenv("AUTH_TOKEN_SECRET"),
				exp:    envDuration("AUTH_TOKEN_EXP", time.Hour),
				iss:    "pnptv",
			},
			telegram: telegramConfig{
				botToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
				maxAuthAge: time.Duration(envInt("AUTH_DATE_MAX_AGE_SECONDS", 300)) * time.Second,
			},
		},
		rtc: rtcConfig{
			appID:          os.Getenv("RTC_APP_ID"),
			appCertificate: os.Getenv("RTC_APP_CERTIFICATE"),
			tokenTTL:       time.Duration(envInt("RTC_TOKEN_TTL_SECONDS", 1800)) * time.Second,
			channelSalt:    os.Getenv("RTC_CHANNEL_SALT"),
		},
		rateLimiter: LoadRateLimiterConfig(),
	}

	// Logger
	logger, err := NewLogger()
	if err != nil {
		fmt.Println("Error creating logger:", err)
		return
	}
	defer logger.Sync()

	// Database
	database, err := db.New(
		cfg.db.addr,
		cfg.db.maxConns,
		cfg.db.maxIdleTime,
	)
	if err != nil {
		logger.Fatal(err)
	}
	defer database.Close()
	logger.Info("database connection pool established")

	// Storage
	storage := store.NewStorage(database)

	// Rate limiter
	rateLimiter := ratelimiter.NewFixedWindowLimiter(
		cfg.rateLimiter.RequestsPerTimeFrame,
		cfg.rateLimiter.TimeFrame,
	)

	// Session token authenticator. A short secret is a deployment mistake,
	// so it kills the process before serving.
	jwtAuthenticator, err := auth.NewJWTAuthenticator(
		cfg.auth.token.secret,
		cfg.auth.token.iss,
		cfg.auth.token.iss,
		cfg.auth.token.exp,
	)
	if err != nil {
		logger.Fatal(err)
	}

	// Telegram login-widget verifier
	telegramAuthenticator, err := auth.NewTelegramAuthenticator(
		cfg.auth.telegram.botToken,
		cfg.auth.telegram.maxAuthAge,
	)
	if err != nil {
		logger.Fatal(err)
	}

	// Room channel naming
	channels, err := hangouts.NewChannelNamer(cfg.rtc.channelSalt)
	if err != nil {
		logger.Fatal(err)
	}

	app := &application{
		config:        cfg,
		logger:        logger,
		store:         storage,
		authenticator: jwtAuthenticator,
		telegram:      telegramAuthenticator,
		channels:      channels,
		rtc:           NewHMACRTCProvider(cfg.rtc.appID, cfg.rtc.appCertificate, cfg.rtc.tokenTTL),
		rateLimiter:   rateLimiter,
	}

	logger.Infow("starting api", "version", version)

	mux := app.mount()

	logger.Fatal(app.run(mux))
}
