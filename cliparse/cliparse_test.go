// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseFlags_EnvVars(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://test")
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("RECEIPT_SALT", "test-salt")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("SUBMIT_DELAY", "500ms")
	t.Setenv("QUORUM_PERCENT", "60")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "postgres" {
		t.Errorf("expected postgres, got %s", cfg.DatabaseType)
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("unexpected redis url %q", cfg.RedisURL)
	}
	if cfg.SubmitDelay != 500*time.Millisecond {
		t.Errorf("expected 500ms delay, got %v", cfg.SubmitDelay)
	}
	if cfg.QuorumPercent != 60 {
		t.Errorf("expected quorum 60, got %v", cfg.QuorumPercent)
	}
}

func TestParseFlags_Defaults(t *testing.T) {
	t.Setenv("RECEIPT_SALT", "s")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 3318 {
		t.Errorf("expected default port 3318, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "sqlite" || cfg.DatabaseURL != "elections.db" {
		t.Errorf("expected sqlite elections.db, got %s %s", cfg.DatabaseType, cfg.DatabaseURL)
	}
	if cfg.SubmitDelay != 2*time.Second {
		t.Errorf("expected 2s delay, got %v", cfg.SubmitDelay)
	}
	if cfg.SignatureThreshold != 20 || cfg.QuorumPercent != 50 || cfg.MajorityPercent != 66.67 {
		t.Errorf("unexpected thresholds %v %v %v", cfg.SignatureThreshold, cfg.QuorumPercent, cfg.MajorityPercent)
	}
	if cfg.RateLimit != 5 || cfg.RateBurst != 10 {
		t.Errorf("unexpected rate limits %v %d", cfg.RateLimit, cfg.RateBurst)
	}
	if len(cfg.CORSOrigins) != 0 || cfg.TrustProxy {
		t.Errorf("expected no CORS origins and untrusted proxy, got %v %v", cfg.CORSOrigins, cfg.TrustProxy)
	}
}

func TestParseFlags_Edge(t *testing.T) {
	t.Setenv("RECEIPT_SALT", "s")
	t.Setenv("CORS_ORIGINS", "https://vote.example.edu, ,https://admin.example.edu")
	t.Setenv("TRUST_PROXY", "true")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://admin.example.edu" {
		t.Errorf("unexpected CORS origins %q", cfg.CORSOrigins)
	}
	if !cfg.TrustProxy {
		t.Error("expected TRUST_PROXY to be honoured")
	}

	t.Setenv("TRUST_PROXY", "sometimes")
	if _, err := ParseFlags([]string{}); err == nil {
		t.Error("expected error for invalid TRUST_PROXY")
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("RECEIPT_SALT", "env-salt")

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db", "-receipt-salt", "s1", "-submit-delay", "0s"})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.ReceiptSalt != "s1" {
		t.Errorf("CLI should override env: expected s1, got %s", cfg.ReceiptSalt)
	}
	if cfg.SubmitDelay != 0 {
		t.Errorf("expected zero delay, got %v", cfg.SubmitDelay)
	}
}

func TestParseFlags_EnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	content := "RECEIPT_SALT=from-file\nPORT=7000\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "7100")
	t.Setenv("RECEIPT_SALT", "")
	os.Unsetenv("RECEIPT_SALT")

	cfg, err := ParseFlags([]string{"-env", path})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ReceiptSalt != "from-file" {
		t.Errorf("expected salt from file, got %q", cfg.ReceiptSalt)
	}
	if cfg.Port != 7100 {
		t.Errorf("environment should win over file: got %d", cfg.Port)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		args    []string
		wantErr string
	}{
		{"missing salt", nil, nil, "RECEIPT_SALT required"},
		{"bad port", map[string]string{"PORT": "abc"}, nil, "invalid PORT"},
		{"postgres without url", map[string]string{"DATABASE_TYPE": "postgres"}, nil, "database URL required"},
		{"unknown driver", nil, []string{"-t", "mysql"}, "unsupported database type"},
		{"threshold above 100", map[string]string{"SIGNATURE_THRESHOLD": "120"}, nil, "SIGNATURE_THRESHOLD"},
		{"bad delay", map[string]string{"SUBMIT_DELAY": "soon"}, nil, "invalid SUBMIT_DELAY"},
		{"negative burst", nil, []string{"-rate-burst", "-1"}, "must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.wantErr != "RECEIPT_SALT required" {
				t.Setenv("RECEIPT_SALT", "s")
			} else {
				t.Setenv("RECEIPT_SALT", "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := ParseFlags(tt.args)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}
