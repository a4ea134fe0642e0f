package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil, envMap(map[string]string{"SESSION_SECRET": "s"}), "")
	require.NoError(t, err)

	want := Default()
	want.SessionSecret = "s"
	require.Equal(t, want, *cfg)
}

func TestLoad_SecretRequired(t *testing.T) {
	_, err := Load(nil, envMap(nil), "")
	require.ErrorContains(t, err, "SESSION_SECRET")
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"SESSION_SECRET=from-file\nADDR=:7000\nDATABASE_DSN=postgres://file\nCOOKIE_SECURE=false\n"), 0o600))

	env := envMap(map[string]string{
		"ADDR":            ":7001",
		"LOGIN_MAX_FAILS": "3",
		"LOGIN_WINDOW":    "1m",
	})
	cfg, err := Load([]string{"--addr", ":7002", "--session-ttl", "30m", "--dev"}, env, envFile)
	require.NoError(t, err)

	require.Equal(t, ":7002", cfg.Addr, "flags beat env")
	require.Equal(t, "from-file", cfg.SessionSecret)
	require.Equal(t, "postgres://file", cfg.DatabaseDSN)
	require.False(t, cfg.CookieSecure)
	require.Equal(t, 3, cfg.LoginMaxFails)
	require.Equal(t, time.Minute, cfg.LoginWindow)
	require.Equal(t, 30*time.Minute, cfg.SessionTTL)
	require.True(t, cfg.Dev)

	cfg, err = Load(nil, env, envFile)
	require.NoError(t, err)
	require.Equal(t, ":7001", cfg.Addr, "env beats .env")
}

func TestLoad_MissingEnvFileIgnored(t *testing.T) {
	_, err := Load(nil, envMap(map[string]string{"SESSION_SECRET": "s"}), filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
}

func TestLoad_BadValues(t *testing.T) {
	cases := map[string]map[string]string{
		"bool":     {"SESSION_SECRET": "s", "COOKIE_SECURE": "maybe"},
		"int":      {"SESSION_SECRET": "s", "LOGIN_MAX_FAILS": "many"},
		"duration": {"SESSION_SECRET": "s", "SESSION_TTL": "forever"},
		"negative": {"SESSION_SECRET": "s", "LOGIN_MAX_FAILS": "-1"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(nil, envMap(env), "")
			require.Error(t, err)
		})
	}

	_, err := Load([]string{"--unknown"}, envMap(map[string]string{"SESSION_SECRET": "s"}), "")
	require.Error(t, err)
}

func TestValidate_TLSPair(t *testing.T) {
	cfg := Default()
	cfg.SessionSecret = "s"
	cfg.GRPCCert = "cert.pem"
	require.Error(t, cfg.Validate())
	cfg.GRPCKey = "key.pem"
	require.NoError(t, cfg.Validate())
}

func TestValidate_ThrottleDisabled(t *testing.T) {
	cfg := Default()
	cfg.SessionSecret = "s"
	cfg.LoginMaxFails = 0
	cfg.LoginWindow = 0
	require.NoError(t, cfg.Validate())
}

func TestValidate_CookiePath(t *testing.T) {
	for path, ok := range map[string]bool{
		"/":       true,
		"/jokes":  true,
		"/jokes/": false,
		"/app":    false,
		"/jo":     false,
		"":        false,
	} {
		cfg := Default()
		cfg.SessionSecret = "s"
		cfg.CookiePath = path
		if ok {
			require.NoError(t, cfg.Validate(), path)
		} else {
			require.Error(t, cfg.Validate(), path)
		}
	}

	_, err := Load([]string{"--cookie-path", "/app"}, envMap(map[string]string{"SESSION_SECRET": "s"}), "")
	require.ErrorContains(t, err, "COOKIE_PATH")
}
