// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	ReceiptSalt  string
	RedisURL     string
	SeedFile     string

	SubmitDelay        time.Duration
	SignatureThreshold float64
	QuorumPercent      float64
	MajorityPercent    float64

	RateLimit float64
	RateBurst int

	// CORSOrigins may call the API with credentials. Empty allows any
	// origin without credentials.
	CORSOrigins []string
	// TrustProxy keys clients by X-Forwarded-For / X-Real-IP. Only set it
	// behind a proxy that overwrites those headers.
	TrustProxy bool
}

const (
	defaultPort        = 3318
	defaultSQLite      = "elections.db"
	defaultSubmitDelay = 2 * time.Second
	defaultThreshold   = 20
	defaultQuorum      = 50
	defaultMajority    = 66.67
	defaultRateLimit   = 5
	defaultRateBurst   = 10
)

// ParseFlags reads flags, falling back to the environment (optionally
// populated from an .env file) and then to defaults.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var envFile string

	fs := flag.NewFlagSet("elections", flag.ContinueOnError)

	fs.StringVar(&envFile, "env", ".env", "Env file to load (missing file is ignored)")

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.RedisURL, "redis", "", "Redis URL for the results cache")
	fs.StringVar(&cfg.SeedFile, "seed", "", "YAML file with demo data")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.ReceiptSalt, "receipt-salt", "", "Voter hash salt (prefer env)")

	// Voting rules
	fs.DurationVar(&cfg.SubmitDelay, "submit-delay", -1, "Pause before a ballot is acknowledged")
	fs.Float64Var(&cfg.SignatureThreshold, "signature-threshold", 0, "Petition signature threshold, percent of members")
	fs.Float64Var(&cfg.QuorumPercent, "quorum", 0, "Impeachment quorum, percent of eligible members")
	fs.Float64Var(&cfg.MajorityPercent, "majority", 0, "Impeachment majority, percent of votes cast")
	fs.Float64Var(&cfg.RateLimit, "rate-limit", 0, "Write requests per second per client")
	fs.IntVar(&cfg.RateBurst, "rate-burst", 0, "Write request burst per client")

	// Edge
	var origins string
	fs.StringVar(&origins, "cors-origins", "", "Comma-separated origins allowed to send credentials")
	fs.BoolVar(&cfg.TrustProxy, "trust-proxy", false, "Trust X-Forwarded-For for client addresses")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Existing environment variables win over the file.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	var err error
	if cfg.Port == 0 {
		if cfg.Port, err = envInt("PORT", defaultPort); err != nil {
			return Config{}, err
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		if cfg.DatabaseType == "postgres" {
			return Config{}, errors.New("database URL required for postgres (use -d or DATABASE_URL env)")
		}
		cfg.DatabaseURL = defaultSQLite
	}

	if cfg.RedisURL == "" {
		cfg.RedisURL = os.Getenv("REDIS_URL")
	}
	if cfg.SeedFile == "" {
		cfg.SeedFile = os.Getenv("SEED_FILE")
	}

	// Secrets - MUST be provided
	if cfg.ReceiptSalt == "" {
		cfg.ReceiptSalt = os.Getenv("RECEIPT_SALT")
	}
	if cfg.ReceiptSalt == "" {
		return Config{}, errors.New("RECEIPT_SALT required")
	}

	if cfg.SubmitDelay < 0 {
		if cfg.SubmitDelay, err = envDuration("SUBMIT_DELAY", defaultSubmitDelay); err != nil {
			return Config{}, err
		}
	}

	percents := []struct {
		dst *float64
		env string
		def float64
	}{
		{&cfg.SignatureThreshold, "SIGNATURE_THRESHOLD", defaultThreshold},
		{&cfg.QuorumPercent, "QUORUM_PERCENT", defaultQuorum},
		{&cfg.MajorityPercent, "MAJORITY_PERCENT", defaultMajority},
	}
	for _, p := range percents {
		if *p.dst == 0 {
			if *p.dst, err = envFloat(p.env, p.def); err != nil {
				return Config{}, err
			}
		}
		if *p.dst <= 0 || *p.dst > 100 {
			return Config{}, fmt.Errorf("%s must be in (0, 100], got %v", p.env, *p.dst)
		}
	}

	if cfg.RateLimit == 0 {
		if cfg.RateLimit, err = envFloat("RATE_LIMIT", defaultRateLimit); err != nil {
			return Config{}, err
		}
	}
	if cfg.RateBurst == 0 {
		if cfg.RateBurst, err = envInt("RATE_BURST", defaultRateBurst); err != nil {
			return Config{}, err
		}
	}
	if cfg.RateLimit <= 0 || cfg.RateBurst <= 0 {
		return Config{}, errors.New("RATE_LIMIT and RATE_BURST must be positive")
	}

	if origins == "" {
		origins = os.Getenv("CORS_ORIGINS")
	}
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}
	if !cfg.TrustProxy {
		if cfg.TrustProxy, err = envBool("TRUST_PROXY"); err != nil {
			return Config{}, err
		}
	}

	return cfg, nil
}

func envInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return f, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return d, nil
}

func envBool(key string) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s env variable", key)
	}
	return b, nil
}
