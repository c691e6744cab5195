package config

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Probe    ProbeConfig    `yaml:"probe"`
	Logging  LoggingConfig  `yaml:"logging"`

	trustedNets []net.IPNet
}

type ServerConfig struct {
	Listen          string        `yaml:"listen"`
	TLSCert         string        `yaml:"tls_cert"`
	TLSKey          string        `yaml:"tls_key"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	MaxBodySize     int64         `yaml:"max_body_size"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	RateLimitPerSec float64       `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int           `yaml:"rate_limit_burst"`
	TrustedProxies  []string      `yaml:"trusted_proxies"`
}

type DatabaseConfig struct {
	Path            string        `yaml:"path"`
	MaxReadConns    int           `yaml:"max_read_conns"`
	RetentionDays   int           `yaml:"retention_days"`
	RetentionPeriod time.Duration `yaml:"retention_period"`
}

type AuthConfig struct {
	Tokens []TokenConfig `yaml:"tokens"`
}

type TokenConfig struct {
	Name        string   `yaml:"name"`
	Hash        string   `yaml:"hash"`
	SuperAdmin  bool     `yaml:"super_admin,omitempty"`
	Permissions []string `yaml:"permissions,omitempty"`
}

var AllPermissions = []string{
	"endpoints.read", "endpoints.write",
	"plans.read", "plans.write",
	"executions.read", "executions.run",
}

func (k *TokenConfig) HasPermission(perm string) bool {
	if k.SuperAdmin {
		return true
	}
	for _, p := range k.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// ProbeConfig controls outbound test dispatch.
type ProbeConfig struct {
	DefaultTimeout      time.Duration `yaml:"default_timeout"`
	MaxBodyBytes        int64         `yaml:"max_body_bytes"`
	AllowPrivateTargets bool          `yaml:"allow_private_targets"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Listen:          "127.0.0.1:8090",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     120 * time.Second,
			MaxBodySize:     1 << 20, // 1MB
			CORSOrigins:     []string{"*"},
			RateLimitPerSec: 30,
			RateLimitBurst:  60,
		},
		Database: DatabaseConfig{
			Path:            "qualixa.db",
			MaxReadConns:    4,
			RetentionDays:   90,
			RetentionPeriod: 1 * time.Hour,
		},
		Probe: ProbeConfig{
			DefaultTimeout: 30 * time.Second,
			MaxBodyBytes:   1 << 20, // 1MB
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	nets, err := parseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("parse trusted_proxies: %w", err)
	}
	cfg.trustedNets = nets

	return cfg, nil
}

func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateProbe(); err != nil {
		return err
	}
	if err := validateTokens(c.Auth.Tokens); err != nil {
		return err
	}
	return validateLogLevel(c.Logging.Level)
}

func (c *Config) validateServer() error {
	if c.Server.Listen == "" {
		return fmt.Errorf("server.listen is required")
	}
	if c.Server.MaxBodySize <= 0 {
		return fmt.Errorf("server.max_body_size must be positive")
	}
	if c.Server.RateLimitPerSec <= 0 {
		return fmt.Errorf("server.rate_limit_per_sec must be positive")
	}
	if c.Server.RateLimitBurst <= 0 {
		return fmt.Errorf("server.rate_limit_burst must be positive")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Database.MaxReadConns <= 0 {
		return fmt.Errorf("database.max_read_conns must be positive")
	}
	if c.Database.RetentionDays <= 0 {
		return fmt.Errorf("database.retention_days must be positive")
	}
	return nil
}

func (c *Config) validateProbe() error {
	if c.Probe.DefaultTimeout <= 0 {
		return fmt.Errorf("probe.default_timeout must be positive")
	}
	if c.Probe.MaxBodyBytes <= 0 {
		return fmt.Errorf("probe.max_body_bytes must be positive")
	}
	return nil
}

func validateTokens(tokens []TokenConfig) error {
	validPerms := make(map[string]bool)
	for _, p := range AllPermissions {
		validPerms[p] = true
	}

	for i := range tokens {
		tok := &tokens[i]
		if tok.Name == "" {
			return fmt.Errorf("auth.tokens[%d].name is required", i)
		}
		if tok.Hash == "" {
			return fmt.Errorf("auth.tokens[%d].hash is required", i)
		}
		if !tok.SuperAdmin && len(tok.Permissions) == 0 {
			return fmt.Errorf("auth.tokens[%d] must have super_admin or permissions", i)
		}
		for _, p := range tok.Permissions {
			if !validPerms[p] {
				return fmt.Errorf("auth.tokens[%d] invalid permission: %s", i, p)
			}
		}
	}
	return nil
}

func validateLogLevel(level string) error {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
}

func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// LookupToken checks if the given bearer token matches any configured token
// and returns the token config if found.
func (c *Config) LookupToken(token string) (*TokenConfig, bool) {
	hash := HashToken(token)
	for i := range c.Auth.Tokens {
		if subtle.ConstantTimeCompare([]byte(c.Auth.Tokens[i].Hash), []byte(hash)) == 1 {
			return &c.Auth.Tokens[i], true
		}
	}
	return nil, false
}

func (c *Config) TrustedNets() []net.IPNet {
	return c.trustedNets
}

func (c *Config) IsTrustedProxy(ip net.IP) bool {
	for i := range c.trustedNets {
		if c.trustedNets[i].Contains(ip) {
			return true
		}
	}
	return false
}

func parseTrustedProxies(proxies []string) ([]net.IPNet, error) {
	var nets []net.IPNet
	for _, p := range proxies {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.Contains(p, "/") {
			ip := net.ParseIP(p)
			if ip == nil {
				return nil, fmt.Errorf("invalid IP: %s", p)
			}
			if ip.To4() != nil {
				p += "/32"
			} else {
				p += "/128"
			}
		}
		_, ipNet, err := net.ParseCIDR(p)
		if err != nil {
			return nil, fmt.Errorf("invalid CIDR: %s", p)
		}
		nets = append(nets, *ipNet)
	}
	return nets, nil
}
