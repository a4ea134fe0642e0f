// Package config loads server settings. Sources are applied in order, each
// overriding the previous: built-in defaults, an optional .env file, the
// process environment, command-line flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// DefaultEnvFile is read when present.
const DefaultEnvFile = ".env"

// Config holds every runtime setting of the server.
type Config struct {
	Addr     string
	GRPCAddr string // empty disables the gRPC health endpoint
	GRPCCert string
	GRPCKey  string

	DatabaseDSN string // empty selects the in-memory store

	SessionSecret string
	CookiePath    string
	CookieSecure  bool
	SessionTTL    time.Duration

	LoginMaxFails int // 0 disables login throttling
	LoginWindow   time.Duration
	LoginBlockFor time.Duration

	Dev bool
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:          ":8080",
		CookiePath:    "/jokes",
		CookieSecure:  true,
		SessionTTL:    time.Hour,
		LoginMaxFails: 5,
		LoginWindow:   15 * time.Minute,
		LoginBlockFor: 15 * time.Minute,
	}
}

// Load builds a Config from envFile, getenv and args (without the program
// name). A missing envFile is ignored. The result is validated.
func Load(args []string, getenv func(string) string, envFile string) (*Config, error) {
	cfg := Default()

	fileEnv := map[string]string{}
	if envFile != "" {
		m, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			fileEnv = m
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read %s: %w", envFile, err)
		}
	}
	lookup := func(key string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return fileEnv[key]
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.parseFlags(args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv(get func(string) string) error {
	setString := func(key string, dst *string) {
		if v := get(key); v != "" {
			*dst = v
		}
	}
	setString("ADDR", &c.Addr)
	setString("GRPC_ADDR", &c.GRPCAddr)
	setString("GRPC_TLS_CERT", &c.GRPCCert)
	setString("GRPC_TLS_KEY", &c.GRPCKey)
	setString("DATABASE_DSN", &c.DatabaseDSN)
	setString("SESSION_SECRET", &c.SessionSecret)
	setString("COOKIE_PATH", &c.CookiePath)

	if v := get("COOKIE_SECURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("COOKIE_SECURE: %w", err)
		}
		c.CookieSecure = b
	}
	if v := get("LOGIN_MAX_FAILS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LOGIN_MAX_FAILS: %w", err)
		}
		c.LoginMaxFails = n
	}
	for key, dst := range map[string]*time.Duration{
		"SESSION_TTL":     &c.SessionTTL,
		"LOGIN_WINDOW":    &c.LoginWindow,
		"LOGIN_BLOCK_FOR": &c.LoginBlockFor,
	} {
		v := get(key)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
	}
	return nil
}

func (c *Config) parseFlags(args []string) error {
	fs := pflag.NewFlagSet("jokes-server", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&c.Addr, "addr", c.Addr, "HTTP listen address")
	fs.StringVar(&c.GRPCAddr, "grpc-addr", c.GRPCAddr, "gRPC health listen address (empty disables)")
	fs.StringVar(&c.GRPCCert, "grpc-tls-cert", c.GRPCCert, "gRPC TLS certificate (PEM)")
	fs.StringVar(&c.GRPCKey, "grpc-tls-key", c.GRPCKey, "gRPC TLS private key (PEM)")
	fs.StringVar(&c.DatabaseDSN, "dsn", c.DatabaseDSN, "PostgreSQL DSN (empty uses in-memory storage)")
	fs.StringVar(&c.SessionSecret, "session-secret", c.SessionSecret, "session signing secret (required)")
	fs.StringVar(&c.CookiePath, "cookie-path", c.CookiePath, "session cookie path")
	fs.BoolVar(&c.CookieSecure, "cookie-secure", c.CookieSecure, "mark the session cookie Secure")
	fs.DurationVar(&c.SessionTTL, "session-ttl", c.SessionTTL, "session lifetime")
	fs.IntVar(&c.LoginMaxFails, "login-max-fails", c.LoginMaxFails, "failed logins before lockout (0 disables)")
	fs.DurationVar(&c.LoginWindow, "login-window", c.LoginWindow, "window for counting failed logins")
	fs.DurationVar(&c.LoginBlockFor, "login-block-for", c.LoginBlockFor, "lockout duration")
	fs.BoolVar(&c.Dev, "dev", c.Dev, "development logging and gRPC reflection")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET must be set")
	}
	if c.Addr == "" {
		return errors.New("listen address must be set")
	}
	if c.SessionTTL <= 0 {
		return errors.New("session TTL must be positive")
	}
	if c.CookiePath != "/" && c.CookiePath != "/jokes" {
		return fmt.Errorf("COOKIE_PATH %q must be / or /jokes: the session is needed on every /jokes route", c.CookiePath)
	}
	if c.LoginMaxFails < 0 {
		return errors.New("login max fails must not be negative")
	}
	if c.LoginMaxFails > 0 && (c.LoginWindow <= 0 || c.LoginBlockFor <= 0) {
		return errors.New("login window and block duration must be positive")
	}
	if (c.GRPCCert == "") != (c.GRPCKey == "") {
		return errors.New("gRPC TLS needs both certificate and key")
	}
	return nil
}
