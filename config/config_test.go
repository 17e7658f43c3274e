package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"quandlapi/config"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestDefault_IsValid(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, "object", cfg.Format)
	require.Equal(t, "v1", cfg.APIVersion)
	require.Equal(t, "v2", cfg.ListAPIVersion)
}

func TestLoad_Formats(t *testing.T) {
	files := map[string]string{
		"quandl.json": `{"api_key":"k","format":"csv","transport":{"force_fallback":true},"cache":{"kind":"memory","ttl_sec":60}}`,
		"quandl.yaml": "api_key: k\nformat: csv\ntransport:\n  force_fallback: true\ncache:\n  kind: memory\n  ttl_sec: 60\n",
		"quandl.toml": "api_key = \"k\"\nformat = \"csv\"\n[transport]\nforce_fallback = true\n[cache]\nkind = \"memory\"\nttl_sec = 60\n",
	}
	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			cfg, err := config.Load(writeFile(t, name, content))
			require.NoError(t, err)

			require.Equal(t, "k", cfg.APIKey)
			require.Equal(t, "csv", cfg.Format)
			require.True(t, cfg.Transport.ForceFallback)
			require.Equal(t, "memory", cfg.Cache.Kind)
			require.Equal(t, 60, cfg.Cache.TTLSeconds)
			// Assert: untouched fields keep their defaults.
			require.Equal(t, "https://www.quandl.com/api", cfg.BaseURL)
			require.Equal(t, 30, cfg.Transport.TimeoutSec)
		})
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "quandl.json", `{"api_key":"from-file","format":"json"}`)
	t.Setenv("QUANDL_API_KEY", "from-env")
	t.Setenv("QUANDL_FORMAT", "XML")
	t.Setenv("QUANDL_SKIP_TLS_VERIFY", "yes")
	t.Setenv("QUANDL_MAX_RPM", "30")
	t.Setenv("QUANDL_CACHE_KIND", "badger")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, "from-env", cfg.APIKey)
	require.Equal(t, "xml", cfg.Format)
	require.True(t, cfg.Transport.SkipTLSVerify)
	require.Equal(t, 30, cfg.RateLimit.MaxRequestsPerMinute)
	require.Equal(t, "badger", cfg.Cache.Kind)
}

func TestLoad_IgnoresMalformedEnvNumbers(t *testing.T) {
	t.Setenv("QUANDL_API_KEY", "")
	t.Setenv("QUANDL_FORMAT", "")
	t.Setenv("QUANDL_TIMEOUT_SEC", "10abc")
	t.Setenv("QUANDL_MAX_RPM", "12.5")
	t.Setenv("QUANDL_CACHE_TTL_SEC", " 90 ")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	require.Equal(t, 30, cfg.Transport.TimeoutSec)
	require.Equal(t, 0, cfg.RateLimit.MaxRequestsPerMinute)
	require.Equal(t, 90, cfg.Cache.TTLSeconds)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("QUANDL_API_KEY", "")
	t.Setenv("QUANDL_FORMAT", "")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"format":      `{"format":"yaml"}`,
		"cache kind":  `{"cache":{"kind":"redis"}}`,
		"cache path":  `{"cache":{"kind":"sqlite"}}`,
		"base url":    `{"base_url":"not a url"}`,
		"bad json":    `{"format":`,
		"neg timeout": `{"transport":{"timeout_sec":-1}}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Load(writeFile(t, "quandl.json", content))
			require.Error(t, err)
		})
	}
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	_, err := config.Load(writeFile(t, "quandl.ini", "api_key=k"))
	require.ErrorContains(t, err, "unsupported extension")
}

func TestLoadDotEnv(t *testing.T) {
	const fresh, preset = "QUANDL_TEST_DOTENV_FRESH", "QUANDL_TEST_DOTENV_PRESET"
	t.Setenv(preset, "kept")
	t.Cleanup(func() { os.Unsetenv(fresh) })

	path := writeFile(t, ".env", fresh+"=loaded\n"+preset+"=replaced\n")

	// Act: missing files are skipped, existing ones are loaded.
	require.NoError(t, config.LoadDotEnv(filepath.Join(t.TempDir(), "none.env"), path))

	// Assert: .env never overrides variables already set.
	require.Equal(t, "loaded", os.Getenv(fresh))
	require.Equal(t, "kept", os.Getenv(preset))
}
