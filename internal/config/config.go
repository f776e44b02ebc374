package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field has a sensible default; only DATABASE_URL and AMQP_URL are
// required.
type Config struct {
	// Ops HTTP server (liveness + Prometheus scrape)
	HTTPPort        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Database
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// Broker
	AMQPURL  string
	Prefetch int

	// Retry stage delays: index 0 = stage 1, etc. Must be monotonically
	// non-decreasing; the list length is the number of provisioned stages.
	RetryDelays []time.Duration

	// Delivery
	SendTimeout time.Duration
	RateLimit   int // max sends per second per channel

	// Per-channel retry budgets (maximum total delivery attempts)
	EmailMaxAttempts int
	SMSMaxAttempts   int
	PushMaxAttempts  int
	InAppMaxAttempts int

	// Email transport
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string
	LoginURL string

	// SMS gateway
	SMSGatewayURL string
	SMSUsername   string
	SMSPassword   string
	SMSEntityID   string
	SMSSender     string

	// Real-time presence fan-out (optional; disabled when addr is empty)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	amqpURL := os.Getenv("AMQP_URL")
	if amqpURL == "" {
		return nil, fmt.Errorf("AMQP_URL is required")
	}

	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8081"),
		ReadTimeout:     getDuration("READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    getDuration("WRITE_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		DatabaseURL: dbURL,
		DBMaxConns:  int32(getInt("DB_MAX_CONNS", 25)),
		DBMinConns:  int32(getInt("DB_MIN_CONNS", 5)),

		AMQPURL:  amqpURL,
		Prefetch: getInt("PREFETCH", 10),

		RetryDelays: []time.Duration{
			getDuration("RETRY_DELAY_1", 5*time.Second),
			getDuration("RETRY_DELAY_2", 30*time.Second),
			getDuration("RETRY_DELAY_3", 120*time.Second),
		},

		SendTimeout: getDuration("SEND_TIMEOUT", 30*time.Second),
		RateLimit:   getInt("RATE_LIMIT_PER_CHANNEL", 100),

		EmailMaxAttempts: getInt("EMAIL_MAX_ATTEMPTS", 5),
		SMSMaxAttempts:   getInt("SMS_MAX_ATTEMPTS", 3),
		PushMaxAttempts:  getInt("PUSH_MAX_ATTEMPTS", 3),
		InAppMaxAttempts: getInt("INAPP_MAX_ATTEMPTS", 1),

		SMTPHost: getEnv("SMTP_HOST", ""),
		SMTPPort: getInt("SMTP_PORT", 587),
		SMTPUser: getEnv("SMTP_USER", ""),
		SMTPPass: getEnv("SMTP_PASS", ""),
		SMTPFrom: getEnv("SMTP_FROM", ""),
		LoginURL: getEnv("LOGIN_URL", ""),

		SMSGatewayURL: getEnv("SMS_GATEWAY_URL", "https://itda.hmimedia.in/pushsms.php"),
		SMSUsername:   getEnv("SMS_API_USERNAME", ""),
		SMSPassword:   getEnv("SMS_API_PASSWORD", ""),
		SMSEntityID:   getEnv("SMS_API_ENTITY_ID", ""),
		SMSSender:     getEnv("SMS_SENDER", "UKITDA"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getInt("REDIS_DB", 0),
	}

	for i := 1; i < len(cfg.RetryDelays); i++ {
		if cfg.RetryDelays[i] < cfg.RetryDelays[i-1] {
			return nil, fmt.Errorf("retry delays must be non-decreasing: stage %d (%s) < stage %d (%s)",
				i+1, cfg.RetryDelays[i], i, cfg.RetryDelays[i-1])
		}
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
