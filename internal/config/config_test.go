package config

import (
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Listen != "127.0.0.1:8090" {
		t.Fatalf("expected listen 127.0.0.1:8090, got %s", cfg.Server.Listen)
	}
	if cfg.Probe.DefaultTimeout != 30*time.Second {
		t.Fatalf("expected 30s probe timeout, got %s", cfg.Probe.DefaultTimeout)
	}
	if cfg.Probe.MaxBodyBytes != 1<<20 {
		t.Fatalf("expected 1MB probe body cap, got %d", cfg.Probe.MaxBodyBytes)
	}
	if cfg.Database.Path != "qualixa.db" {
		t.Fatalf("expected qualixa.db, got %s", cfg.Database.Path)
	}
	if cfg.Database.RetentionDays != 90 {
		t.Fatalf("expected 90 retention days, got %d", cfg.Database.RetentionDays)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("expected info log level, got %s", cfg.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return Defaults()
	}

	t.Run("valid defaults", func(t *testing.T) {
		if err := valid().Validate(); err != nil {
			t.Fatal(err)
		}
	})

	tests := []struct {
		name   string
		modify func(*Config)
		errSub string
	}{
		{
			name:   "empty listen",
			modify: func(c *Config) { c.Server.Listen = "" },
			errSub: "server.listen",
		},
		{
			name:   "zero max body size",
			modify: func(c *Config) { c.Server.MaxBodySize = 0 },
			errSub: "max_body_size",
		},
		{
			name:   "negative rate limit",
			modify: func(c *Config) { c.Server.RateLimitPerSec = -1 },
			errSub: "rate_limit_per_sec",
		},
		{
			name:   "zero rate limit burst",
			modify: func(c *Config) { c.Server.RateLimitBurst = 0 },
			errSub: "rate_limit_burst",
		},
		{
			name:   "empty database path",
			modify: func(c *Config) { c.Database.Path = "" },
			errSub: "database.path",
		},
		{
			name:   "zero read conns",
			modify: func(c *Config) { c.Database.MaxReadConns = 0 },
			errSub: "max_read_conns",
		},
		{
			name:   "zero retention days",
			modify: func(c *Config) { c.Database.RetentionDays = 0 },
			errSub: "retention_days",
		},
		{
			name:   "zero probe timeout",
			modify: func(c *Config) { c.Probe.DefaultTimeout = 0 },
			errSub: "default_timeout",
		},
		{
			name:   "zero probe body cap",
			modify: func(c *Config) { c.Probe.MaxBodyBytes = 0 },
			errSub: "max_body_bytes",
		},
		{
			name:   "invalid log level",
			modify: func(c *Config) { c.Logging.Level = "trace" },
			errSub: "logging.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.modify(c)
			err := c.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.errSub) {
				t.Fatalf("expected error containing %q, got %q", tt.errSub, err.Error())
			}
		})
	}
}

func TestValidateTokens(t *testing.T) {
	t.Run("missing name", func(t *testing.T) {
		tokens := []TokenConfig{
			{Name: "", Hash: "abc123", SuperAdmin: true},
		}
		err := validateTokens(tokens)
		if err == nil || !strings.Contains(err.Error(), "name is required") {
			t.Fatalf("expected name error, got %v", err)
		}
	})

	t.Run("missing hash", func(t *testing.T) {
		tokens := []TokenConfig{
			{Name: "test", Hash: "", SuperAdmin: true},
		}
		err := validateTokens(tokens)
		if err == nil || !strings.Contains(err.Error(), "hash is required") {
			t.Fatalf("expected hash error, got %v", err)
		}
	})

	t.Run("invalid permission", func(t *testing.T) {
		tokens := []TokenConfig{
			{Name: "test", Hash: "abc123", Permissions: []string{"fake.perm"}},
		}
		err := validateTokens(tokens)
		if err == nil || !strings.Contains(err.Error(), "invalid permission") {
			t.Fatalf("expected invalid permission error, got %v", err)
		}
	})

	t.Run("no perms and no super admin", func(t *testing.T) {
		tokens := []TokenConfig{
			{Name: "test", Hash: "abc123"},
		}
		err := validateTokens(tokens)
		if err == nil || !strings.Contains(err.Error(), "must have super_admin or permissions") {
			t.Fatalf("expected error, got %v", err)
		}
	})

	t.Run("valid scoped token", func(t *testing.T) {
		tokens := []TokenConfig{
			{Name: "ci", Hash: "abc123", Permissions: []string{"executions.run", "executions.read"}},
		}
		if err := validateTokens(tokens); err != nil {
			t.Fatal(err)
		}
	})
}

func TestHasPermission(t *testing.T) {
	t.Run("super admin has everything", func(t *testing.T) {
		tok := TokenConfig{Name: "admin", SuperAdmin: true}
		for _, p := range AllPermissions {
			if !tok.HasPermission(p) {
				t.Fatalf("expected super admin to hold %s", p)
			}
		}
	})

	t.Run("scoped token", func(t *testing.T) {
		tok := TokenConfig{Name: "ci", Permissions: []string{"executions.run"}}
		if !tok.HasPermission("executions.run") {
			t.Fatal("expected executions.run granted")
		}
		if tok.HasPermission("endpoints.write") {
			t.Fatal("expected endpoints.write denied")
		}
	})
}

func TestValidateLogLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		t.Run(level, func(t *testing.T) {
			if err := validateLogLevel(level); err != nil {
				t.Fatal(err)
			}
		})
	}

	t.Run("invalid", func(t *testing.T) {
		if err := validateLogLevel("trace"); err == nil {
			t.Fatal("expected error for invalid level")
		}
	})
}

func TestHashToken(t *testing.T) {
	h1 := HashToken("test-token")
	h2 := HashToken("test-token")
	if h1 != h2 {
		t.Fatal("expected deterministic hash")
	}
	if len(h1) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(h1))
	}

	h3 := HashToken("different-token")
	if h1 == h3 {
		t.Fatal("different tokens should produce different hashes")
	}
}

func TestLookupToken(t *testing.T) {
	cfg := Defaults()
	hash := HashToken("my-secret")
	cfg.Auth.Tokens = []TokenConfig{
		{Name: "admin", Hash: hash, SuperAdmin: true},
	}

	t.Run("matching token", func(t *testing.T) {
		found, ok := cfg.LookupToken("my-secret")
		if !ok || found == nil {
			t.Fatal("expected to find token")
		}
		if found.Name != "admin" {
			t.Fatalf("expected admin, got %s", found.Name)
		}
	})

	t.Run("wrong token", func(t *testing.T) {
		_, ok := cfg.LookupToken("wrong-secret")
		if ok {
			t.Fatal("expected not found")
		}
	})
}

func TestIsTrustedProxy(t *testing.T) {
	cfg := Defaults()
	nets, err := parseTrustedProxies([]string{"10.0.0.1", "192.168.1.0/24"})
	if err != nil {
		t.Fatal(err)
	}
	cfg.trustedNets = nets

	t.Run("single IP match", func(t *testing.T) {
		if !cfg.IsTrustedProxy(net.ParseIP("10.0.0.1")) {
			t.Fatal("expected trusted")
		}
	})

	t.Run("CIDR range match", func(t *testing.T) {
		if !cfg.IsTrustedProxy(net.ParseIP("192.168.1.50")) {
			t.Fatal("expected trusted")
		}
	})

	t.Run("not trusted", func(t *testing.T) {
		if cfg.IsTrustedProxy(net.ParseIP("172.16.0.1")) {
			t.Fatal("expected not trusted")
		}
	})
}

func TestLoad(t *testing.T) {
	t.Run("valid YAML", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		data := `
server:
  listen: "0.0.0.0:9090"
database:
  path: "test.db"
probe:
  default_timeout: 10s
logging:
  level: "debug"
`
		if err := os.WriteFile(path, []byte(data), 0644); err != nil {
			t.Fatal(err)
		}
		cfg, err := Load(path)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Server.Listen != "0.0.0.0:9090" {
			t.Fatalf("expected 0.0.0.0:9090, got %s", cfg.Server.Listen)
		}
		if cfg.Database.Path != "test.db" {
			t.Fatalf("expected test.db, got %s", cfg.Database.Path)
		}
		if cfg.Probe.DefaultTimeout != 10*time.Second {
			t.Fatalf("expected 10s, got %s", cfg.Probe.DefaultTimeout)
		}
	})

	t.Run("env var expansion", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		t.Setenv("QUALIXA_TEST_PORT", "7777")
		data := `
server:
  listen: "0.0.0.0:${QUALIXA_TEST_PORT}"
database:
  path: "test.db"
`
		if err := os.WriteFile(path, []byte(data), 0644); err != nil {
			t.Fatal(err)
		}
		cfg, err := Load(path)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Server.Listen != "0.0.0.0:7777" {
			t.Fatalf("expected 0.0.0.0:7777, got %s", cfg.Server.Listen)
		}
	})

	t.Run("invalid YAML", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		if err := os.WriteFile(path, []byte("{{invalid"), 0644); err != nil {
			t.Fatal(err)
		}
		_, err := Load(path)
		if err == nil {
			t.Fatal("expected error for invalid YAML")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load("/nonexistent/config.yaml")
		if err == nil {
			t.Fatal("expected error for missing file")
		}
	})
}
