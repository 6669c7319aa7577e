package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleTOML = `
[app]
port = 9090

[auth]
jwt_secret = "from-file"

[identity]
strategy = "directory"

[storage]
access_key_id = "AKIAFILE"
secret_access_key = "file-secret"
region = "eu-west-1"
bucket = "intake-bucket"

[llm]
default_model = "small"

[[llm.models]]
id = "small"
name = "Small"
max_tokens = 4096

[[llm.models]]
id = "large"
name = "Large"
max_tokens = 8192
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadLayersFileAndEnv(t *testing.T) {
	t.Setenv("CONFIG_FILE", writeConfig(t, sampleTOML))
	t.Setenv("STORAGE_BUCKET", "env-bucket")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("REDIS_SESSION_TTL_MINUTES", "15")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.App.Port != 9090 {
		t.Errorf("port = %d, want 9090 from file", cfg.App.Port)
	}
	if cfg.App.Host != "0.0.0.0" {
		t.Errorf("host = %q, want default", cfg.App.Host)
	}
	if cfg.Storage.Bucket != "env-bucket" {
		t.Errorf("bucket = %q, want env override", cfg.Storage.Bucket)
	}
	if cfg.Storage.Region != "eu-west-1" {
		t.Errorf("region = %q, want file value", cfg.Storage.Region)
	}
	if cfg.Auth.JWTSecret != "from-env" {
		t.Errorf("jwt secret = %q", cfg.Auth.JWTSecret)
	}
	if cfg.Identity.Strategy != IdentityDirectory {
		t.Errorf("strategy = %q", cfg.Identity.Strategy)
	}
	if got := cfg.SessionTTL().Minutes(); got != 15 {
		t.Errorf("session ttl = %v minutes", got)
	}
	if len(cfg.LLM.Models) != 2 {
		t.Fatalf("models = %+v", cfg.LLM.Models)
	}
	if m, ok := cfg.Model("large"); !ok || m.MaxTokens != 8192 {
		t.Errorf("Model(large) = %+v, %v", m, ok)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := defaultConfig()
		cfg.Auth.JWTSecret = "s"
		cfg.Storage.AccessKeyID = "a"
		cfg.Storage.SecretAccessKey = "b"
		cfg.Storage.Bucket = "c"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing secret", mutate: func(c *Config) { c.Auth.JWTSecret = "" }, wantErr: "jwt_secret"},
		{name: "missing credentials", mutate: func(c *Config) { c.Storage.SecretAccessKey = "" }, wantErr: "storage credentials"},
		{name: "missing bucket", mutate: func(c *Config) { c.Storage.Bucket = "" }, wantErr: "storage.bucket"},
		{name: "bad strategy", mutate: func(c *Config) { c.Identity.Strategy = "oidc" }, wantErr: "identity.strategy"},
		{name: "unknown default model", mutate: func(c *Config) { c.LLM.DefaultModel = "gpt-x" }, wantErr: "default_model"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestMySQLDSN(t *testing.T) {
	cfg := defaultConfig()
	cfg.MySQL.Password = "pw"
	want := "root:pw@tcp(127.0.0.1:3306)/docintake?parseTime=true&loc=UTC&charset=utf8mb4"
	if got := cfg.MySQLDSN(); got != want {
		t.Fatalf("MySQLDSN = %q, want %q", got, want)
	}
}
