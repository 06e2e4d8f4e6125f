// internal/platform/config/config.go
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/tedbot101/Stalker-Recon/internal/platform/errors"
)

// DefaultUserAgent is the probe User-Agent when none is configured.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:109.0) Gecko/20100101 Firefox/113.0"

// Config holds the full run configuration. Precedence: defaults -> env
// (STALKER_*) -> flags, then the optional YAML keys file for credentials.
type Config struct {
	// Targets
	Domain     string
	DomainFile string

	// Probing
	Ports     []int
	RateLimit float64
	ProxyURL  string
	UserAgent string
	Debug     bool

	// Execution
	Workers  int
	TimeoutS int // seconds (0 = no global timeout)

	// IO
	OutputDir string
	CSV       bool

	// Credentials: per-service key lists and per-minute request budgets.
	KeysFile string
	Services map[string]ServiceCredentials

	PrintVersion bool
}

// ServiceCredentials configures one keyed service.
type ServiceCredentials struct {
	Keys   []string `yaml:"keys"`
	Budget int      `yaml:"budget"`
}

// keysFile is the YAML shape of --keys-file.
type keysFile struct {
	Services map[string]ServiceCredentials `yaml:"services"`
}

// DefaultConfig returns the documented defaults. The per-minute budgets match
// each service's published free-tier limits.
func DefaultConfig() Config {
	return Config{
		Ports:     []int{8443, 443, 80},
		RateLimit: 3.0,
		UserAgent: DefaultUserAgent,
		Workers:   4,
		TimeoutS:  0,
		OutputDir: "stalker_out",
		Services: map[string]ServiceCredentials{
			"certspotter": {Budget: 10},
			"censys":      {Budget: 10},
			"virustotal":  {Budget: 4},
		},
	}
}

// Load builds the configuration from defaults, environment, and argv.
func Load(args []string) (Config, error) {
	cfg := DefaultConfig()

	loadFromEnv(&cfg)

	if err := parseFlags(&cfg, args); err != nil {
		return cfg, err
	}

	if cfg.KeysFile != "" {
		if err := loadKeysFile(&cfg); err != nil {
			return cfg, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// loadFromEnv carga configuración desde variables de entorno.
// Credenciales: STALKER_KEYS_<SERVICE> con keys separadas por comas.
func loadFromEnv(cfg *Config) {
	if v := getenv("STALKER_DOMAIN", ""); v != "" {
		cfg.Domain = v
	}
	if v := getenv("STALKER_RATE_LIMIT", ""); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			cfg.RateLimit = f
		}
	}
	if v := getenv("STALKER_PROXY_URL", ""); v != "" {
		cfg.ProxyURL = v
	}
	if v := getenv("STALKER_USER_AGENT", ""); v != "" {
		cfg.UserAgent = v
	}
	if v := getenv("STALKER_OUTPUT_DIR", ""); v != "" {
		cfg.OutputDir = v
	}
	if v := getenv("STALKER_WORKERS", ""); v != "" {
		cfg.Workers = parseInt(v, cfg.Workers)
	}
	if v := getenv("STALKER_TIMEOUT", ""); v != "" {
		cfg.TimeoutS = parseInt(v, cfg.TimeoutS)
	}

	for name := range cfg.Services {
		envKey := fmt.Sprintf("STALKER_KEYS_%s", strings.ToUpper(name))
		if v := getenv(envKey, ""); v != "" {
			svc := cfg.Services[name]
			svc.Keys = splitKeys(v)
			cfg.Services[name] = svc
		}
	}
}

// parseFlags parsea los flags de CLI sobre la configuración ya cargada.
func parseFlags(cfg *Config, args []string) error {
	fs := pflag.NewFlagSet("stalker", pflag.ContinueOnError)

	fs.StringVarP(&cfg.Domain, "domain", "d", cfg.Domain, "Domain to enumerate subdomains for")
	fs.StringVarP(&cfg.DomainFile, "domain-file", "D", cfg.DomainFile, "File with list of domains to enumerate")
	fs.IntSliceVar(&cfg.Ports, "ports", cfg.Ports, "Ports to check for liveliness")
	fs.Float64Var(&cfg.RateLimit, "rate-limit", cfg.RateLimit, "Global rate limit for liveliness checks (requests per second)")
	fs.StringVar(&cfg.ProxyURL, "proxy", cfg.ProxyURL, "Proxy for outbound requests (e.g., http://yourproxy:port)")
	fs.StringVar(&cfg.UserAgent, "user-agent", cfg.UserAgent, "User-Agent for liveliness checks")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Keep all probe results including unreachable hosts")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "Max concurrent source fetches")
	fs.IntVar(&cfg.TimeoutS, "timeout", cfg.TimeoutS, "Global timeout in seconds (0 = none)")
	fs.StringVar(&cfg.OutputDir, "out", cfg.OutputDir, "Output directory")
	fs.BoolVar(&cfg.CSV, "csv", cfg.CSV, "Also export results as CSV")
	fs.StringVar(&cfg.KeysFile, "keys-file", cfg.KeysFile, "YAML file with per-service API credentials")
	fs.BoolVar(&cfg.PrintVersion, "version", false, "Print version and exit")

	return fs.Parse(args)
}

// loadKeysFile mezcla el fichero YAML de credenciales sobre la configuración.
func loadKeysFile(cfg *Config) error {
	data, err := os.ReadFile(cfg.KeysFile)
	if err != nil {
		return errors.Wrapf(err, "failed to read keys file %s", cfg.KeysFile)
	}

	var kf keysFile
	if err := yaml.Unmarshal(data, &kf); err != nil {
		return errors.Wrapf(err, "failed to parse keys file %s", cfg.KeysFile)
	}

	for name, creds := range kf.Services {
		name = strings.ToLower(strings.TrimSpace(name))
		existing := cfg.Services[name]
		if len(creds.Keys) > 0 {
			existing.Keys = creds.Keys
		}
		if creds.Budget > 0 {
			existing.Budget = creds.Budget
		}
		cfg.Services[name] = existing
	}

	return nil
}

// Validate rechaza configuraciones inválidas. Un rate limit no positivo o una
// lista de puertos vacía son fatales; las fuentes con keys vacías simplemente
// no se habilitan (la validación fuerte ocurre al registrarlas en el keeper).
func (c *Config) Validate() error {
	if c.Domain == "" && c.DomainFile == "" {
		return errors.Wrap(errors.ErrInvalidInput, "either --domain or --domain-file is required")
	}
	if c.Domain != "" && c.DomainFile != "" {
		return errors.Wrap(errors.ErrInvalidInput, "--domain and --domain-file are mutually exclusive")
	}
	if c.RateLimit <= 0 {
		return errors.Wrapf(errors.ErrInvalidInput, "rate limit must be positive, got %v", c.RateLimit)
	}
	if len(c.Ports) == 0 {
		return errors.Wrap(errors.ErrInvalidInput, "at least one port is required")
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.TimeoutS < 0 {
		c.TimeoutS = 0
	}
	if c.OutputDir == "" {
		c.OutputDir = "stalker_out"
	}
	return nil
}

// Domains resuelve la lista de dominios del run: el flag -d o, línea a línea,
// el fichero de -D.
func (c *Config) Domains() ([]string, error) {
	if c.Domain != "" {
		return []string{c.Domain}, nil
	}

	f, err := os.Open(c.DomainFile)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open domain file %s", c.DomainFile)
	}
	defer f.Close()

	var domains []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			domains = append(domains, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read domain file %s", c.DomainFile)
	}

	return domains, nil
}

// Timeout devuelve la duración global del run (0 = sin timeout).
func (c *Config) Timeout() time.Duration {
	if c.TimeoutS <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutS) * time.Second
}

// Helpers

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok {
		return v
	}
	return def
}

func parseInt(v string, def int) int {
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return i
}

func splitKeys(v string) []string {
	parts := strings.Split(v, ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keys = append(keys, p)
		}
	}
	return keys
}
