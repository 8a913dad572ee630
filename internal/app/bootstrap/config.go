package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration for the accounts service.
// It merges file defaults and environment overrides to support both local and deployed runs.
type Config struct {
	ServiceID string

	HTTPPort int
	GRPCPort int

	DatabaseURL string
	RedisURL    string

	IdentityStoreURL        string
	IdentityStoreServiceKey string

	RazorpayKeyID     string
	RazorpayKeySecret string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	JWTPrivateKeyPEM  string
	JWTPublicKeyPEM   string
	JWTKeyID          string
	AllowEphemeralJWT bool

	BcryptCost int

	TokenTTL             time.Duration
	VerificationCacheTTL time.Duration
	DefaultCurrency      string

	MaxDBConns              int32
	OutboxPollInterval      time.Duration
	OutboxBatchSize         int
	OutboxMaxRetries        int
	ActivationRetryInterval time.Duration
	ActivationMaxAttempts   int
	ExpirySweepInterval     time.Duration
	ExpirySweepBatchSize    int
}

// configFile mirrors the YAML schema used by configs/default.yaml.
// It is intentionally separate from Config so runtime-only fields stay internal.
type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL      string `yaml:"postgres_url"`
		RedisURL         string `yaml:"redis_url"`
		IdentityStoreURL string `yaml:"identity_store_url"`
	} `yaml:"dependencies"`
	Payments struct {
		RazorpayKeyID string `yaml:"razorpay_key_id"`
		Currency      string `yaml:"currency"`
	} `yaml:"payments"`
	SMTP struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		From     string `yaml:"from"`
		Username string `yaml:"username"`
	} `yaml:"smtp"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
// This order keeps local bootstrap simple while allowing environment-specific overrides.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:               "accounts-service",
		HTTPPort:                8080,
		GRPCPort:                9090,
		JWTKeyID:                "accounts-key-1",
		AllowEphemeralJWT:       true,
		BcryptCost:              12,
		TokenTTL:                24 * time.Hour,
		VerificationCacheTTL:    2 * time.Minute,
		DefaultCurrency:         "INR",
		MaxDBConns:              20,
		OutboxPollInterval:      2 * time.Second,
		OutboxBatchSize:         100,
		OutboxMaxRetries:        5,
		ActivationRetryInterval: 15 * time.Second,
		ActivationMaxAttempts:   3,
		ExpirySweepInterval:     time.Hour,
		ExpirySweepBatchSize:    200,
		SMTPPort:                587,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Service.GRPCPort > 0 {
			cfg.GRPCPort = f.Service.GRPCPort
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		if f.Dependencies.IdentityStoreURL != "" {
			cfg.IdentityStoreURL = f.Dependencies.IdentityStoreURL
		}
		if f.Payments.RazorpayKeyID != "" {
			cfg.RazorpayKeyID = f.Payments.RazorpayKeyID
		}
		if f.Payments.Currency != "" {
			cfg.DefaultCurrency = f.Payments.Currency
		}
		if f.SMTP.Host != "" {
			cfg.SMTPHost = f.SMTP.Host
		}
		if f.SMTP.Port > 0 {
			cfg.SMTPPort = f.SMTP.Port
		}
		if f.SMTP.From != "" {
			cfg.SMTPFrom = f.SMTP.From
		}
		if f.SMTP.Username != "" {
			cfg.SMTPUsername = f.SMTP.Username
		}
	}

	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.IdentityStoreURL = envOrDefault("IDENTITY_STORE_URL", cfg.IdentityStoreURL)
	cfg.IdentityStoreServiceKey = envOrDefault("IDENTITY_STORE_SERVICE_KEY", cfg.IdentityStoreServiceKey)
	cfg.RazorpayKeyID = envOrDefault("RAZORPAY_KEY_ID", cfg.RazorpayKeyID)
	cfg.RazorpayKeySecret = envOrDefault("RAZORPAY_KEY_SECRET", cfg.RazorpayKeySecret)
	cfg.SMTPHost = envOrDefault("SMTP_HOST", cfg.SMTPHost)
	cfg.SMTPUsername = envOrDefault("SMTP_USERNAME", cfg.SMTPUsername)
	cfg.SMTPPassword = envOrDefault("SMTP_PASSWORD", cfg.SMTPPassword)
	cfg.SMTPFrom = envOrDefault("SMTP_FROM", cfg.SMTPFrom)
	cfg.JWTPrivateKeyPEM = envOrDefault("JWT_PRIVATE_KEY_PEM", cfg.JWTPrivateKeyPEM)
	cfg.JWTPublicKeyPEM = envOrDefault("JWT_PUBLIC_KEY_PEM", cfg.JWTPublicKeyPEM)
	cfg.JWTKeyID = envOrDefault("JWT_KEY_ID", cfg.JWTKeyID)
	cfg.AllowEphemeralJWT = envBool("JWT_ALLOW_EPHEMERAL", cfg.AllowEphemeralJWT)
	cfg.DefaultCurrency = envOrDefault("DEFAULT_CURRENCY", cfg.DefaultCurrency)

	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.SMTPPort = envInt("SMTP_PORT", cfg.SMTPPort)
	cfg.BcryptCost = envInt("BCRYPT_ROUNDS", cfg.BcryptCost)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))

	cfg.TokenTTL = time.Duration(envInt("TOKEN_EXPIRY_HOURS", int(cfg.TokenTTL.Hours()))) * time.Hour
	cfg.VerificationCacheTTL = time.Duration(envInt("VERIFICATION_CACHE_TTL_SECONDS", int(cfg.VerificationCacheTTL.Seconds()))) * time.Second
	cfg.OutboxPollInterval = time.Duration(envInt("OUTBOX_POLL_SECONDS", int(cfg.OutboxPollInterval.Seconds()))) * time.Second
	cfg.OutboxBatchSize = envInt("OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)
	cfg.OutboxMaxRetries = envInt("OUTBOX_MAX_RETRIES", cfg.OutboxMaxRetries)
	cfg.ActivationRetryInterval = time.Duration(envInt("ACTIVATION_RETRY_SECONDS", int(cfg.ActivationRetryInterval.Seconds()))) * time.Second
	cfg.ActivationMaxAttempts = envInt("ACTIVATION_MAX_ATTEMPTS", cfg.ActivationMaxAttempts)
	cfg.ExpirySweepInterval = time.Duration(envInt("EXPIRY_SWEEP_MINUTES", int(cfg.ExpirySweepInterval.Minutes()))) * time.Minute
	cfg.ExpirySweepBatchSize = envInt("EXPIRY_SWEEP_BATCH_SIZE", cfg.ExpirySweepBatchSize)

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing DB_URL/POSTGRES_URL")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("missing REDIS_URL")
	}
	if (cfg.JWTPrivateKeyPEM == "" || cfg.JWTPublicKeyPEM == "") && !cfg.AllowEphemeralJWT {
		return Config{}, fmt.Errorf("missing JWT_PRIVATE_KEY_PEM or JWT_PUBLIC_KEY_PEM")
	}
	if cfg.RazorpayKeySecret == "" {
		return Config{}, fmt.Errorf("missing RAZORPAY_KEY_SECRET")
	}

	return cfg, nil
}

// envOrDefault returns an env var when present, otherwise the provided fallback.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars with safe fallback on empty/invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// envBool parses common boolean env forms while keeping a deterministic fallback.
func envBool(name string, fallback bool) bool {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return fallback
	}
}
