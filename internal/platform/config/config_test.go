package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tedbot101/Stalker-Recon/internal/platform/errors"
	"github.com/tedbot101/Stalker-Recon/internal/testutil"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	testutil.AssertEqual(t, cfg.RateLimit, 3.0, "default rate limit")
	testutil.AssertEqual(t, len(cfg.Ports), 3, "default port count")
	testutil.AssertEqual(t, cfg.Ports[0], 8443, "first default port")
	testutil.AssertEqual(t, cfg.UserAgent, DefaultUserAgent, "default user agent")
	testutil.AssertEqual(t, cfg.Services["certspotter"].Budget, 10, "certspotter budget")
	testutil.AssertEqual(t, cfg.Services["virustotal"].Budget, 4, "virustotal budget")
}

func TestLoad_Flags(t *testing.T) {
	cfg, err := Load([]string{
		"-d", "example.com",
		"--ports", "443,80",
		"--rate-limit", "5",
		"--debug",
		"--csv",
		"--out", "results",
	})

	testutil.AssertNoError(t, err, "load")
	testutil.AssertEqual(t, cfg.Domain, "example.com", "domain flag")
	testutil.AssertEqual(t, len(cfg.Ports), 2, "ports flag overrides defaults")
	testutil.AssertEqual(t, cfg.RateLimit, 5.0, "rate limit flag")
	testutil.AssertTrue(t, cfg.Debug, "debug flag")
	testutil.AssertTrue(t, cfg.CSV, "csv flag")
	testutil.AssertEqual(t, cfg.OutputDir, "results", "output dir flag")
}

func TestLoad_EnvPrecedence(t *testing.T) {
	t.Setenv("STALKER_DOMAIN", "env.example.com")
	t.Setenv("STALKER_RATE_LIMIT", "7.5")
	t.Setenv("STALKER_KEYS_CERTSPOTTER", "k1, k2 ,k3")

	cfg, err := Load(nil)
	testutil.AssertNoError(t, err, "load from env")
	testutil.AssertEqual(t, cfg.Domain, "env.example.com", "env domain applied")
	testutil.AssertEqual(t, cfg.RateLimit, 7.5, "env rate limit applied")
	testutil.AssertEqual(t, len(cfg.Services["certspotter"].Keys), 3, "env keys split on commas")
	testutil.AssertEqual(t, cfg.Services["certspotter"].Keys[1], "k2", "env keys trimmed")

	// Flags override environment.
	cfg, err = Load([]string{"-d", "flag.example.com"})
	testutil.AssertNoError(t, err, "load with flag override")
	testutil.AssertEqual(t, cfg.Domain, "flag.example.com", "flag wins over env")
}

func TestLoad_KeysFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keys.yaml")
	content := `services:
  certspotter:
    keys:
      - cs-key-1
      - cs-key-2
    budget: 20
  censys:
    keys:
      - "id:secret"
`
	testutil.AssertNoError(t, os.WriteFile(path, []byte(content), 0o600), "write keys file")

	cfg, err := Load([]string{"-d", "example.com", "--keys-file", path})
	testutil.AssertNoError(t, err, "load with keys file")

	testutil.AssertEqual(t, len(cfg.Services["certspotter"].Keys), 2, "certspotter keys loaded")
	testutil.AssertEqual(t, cfg.Services["certspotter"].Budget, 20, "budget overridden by file")
	testutil.AssertEqual(t, cfg.Services["censys"].Keys[0], "id:secret", "censys credential pair loaded")
	testutil.AssertEqual(t, cfg.Services["censys"].Budget, 10, "default budget kept when file omits it")
}

func TestLoad_MissingKeysFile(t *testing.T) {
	_, err := Load([]string{"-d", "example.com", "--keys-file", "/nonexistent/keys.yaml"})
	testutil.AssertError(t, err, "unreadable keys file is fatal")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "valid with domain",
			mutate: func(c *Config) { c.Domain = "example.com" },
		},
		{
			name:    "no domain and no file",
			mutate:  func(c *Config) {},
			wantErr: true,
		},
		{
			name: "domain and file are exclusive",
			mutate: func(c *Config) {
				c.Domain = "example.com"
				c.DomainFile = "domains.txt"
			},
			wantErr: true,
		},
		{
			name: "non-positive rate limit",
			mutate: func(c *Config) {
				c.Domain = "example.com"
				c.RateLimit = 0
			},
			wantErr: true,
		},
		{
			name: "empty ports",
			mutate: func(c *Config) {
				c.Domain = "example.com"
				c.Ports = nil
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				testutil.AssertTrue(t, errors.Is(err, errors.ErrInvalidInput), "invalid input sentinel")
				return
			}
			testutil.AssertNoError(t, err, "config should validate")
		})
	}
}

func TestConfig_Domains(t *testing.T) {
	t.Run("single domain", func(t *testing.T) {
		cfg := Config{Domain: "example.com"}
		domains, err := cfg.Domains()
		testutil.AssertNoError(t, err, "domains")
		testutil.AssertEqual(t, len(domains), 1, "one domain")
		testutil.AssertEqual(t, domains[0], "example.com", "domain value")
	})

	t.Run("domain file skips blank lines", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "domains.txt")
		content := "a.example.com\n\n  \nb.example.com\n"
		testutil.AssertNoError(t, os.WriteFile(path, []byte(content), 0o600), "write domain file")

		cfg := Config{DomainFile: path}
		domains, err := cfg.Domains()
		testutil.AssertNoError(t, err, "domains from file")
		testutil.AssertEqual(t, len(domains), 2, "blank lines skipped")
		testutil.AssertEqual(t, domains[1], "b.example.com", "order preserved")
	})

	t.Run("missing file", func(t *testing.T) {
		cfg := Config{DomainFile: "/nonexistent/domains.txt"}
		_, err := cfg.Domains()
		testutil.AssertError(t, err, "missing file surfaces")
	})
}

func TestConfig_Timeout(t *testing.T) {
	cfg := Config{TimeoutS: 90}
	testutil.AssertEqual(t, cfg.Timeout(), 90*time.Second, "seconds converted")

	cfg.TimeoutS = 0
	testutil.AssertEqual(t, cfg.Timeout(), time.Duration(0), "zero means no timeout")
}
