package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/DoyleJ11/pokeduel-backend/internal/engine"
	"github.com/DoyleJ11/pokeduel-backend/internal/storage"
)

const (
	EnvConfigPath     = "POKEDUEL_CONFIG"
	EnvAddr           = "POKEDUEL_ADDR"
	EnvDataDir        = "POKEDUEL_DATA_DIR"
	EnvBackend        = "POKEDUEL_STORAGE"
	EnvSQLitePath     = "POKEDUEL_SQLITE_PATH"
	EnvPostgresDSN    = "POKEDUEL_DATABASE_URL"
	EnvDefaultGame    = "POKEDUEL_DEFAULT_GAME"
	EnvRosterURL      = "POKEDUEL_ROSTER_URL"
	EnvRosterSize     = "POKEDUEL_ROSTER_SIZE"
	EnvRosterTimeout  = "POKEDUEL_ROSTER_TIMEOUT"
	EnvRosterShiny    = "POKEDUEL_ROSTER_SHINY"
	EnvLogLevel       = "POKEDUEL_LOG_LEVEL"
	EnvLogFormat      = "POKEDUEL_LOG_FORMAT"
	defaultDotEnvFile = ".env"
)

type RosterConfig struct {
	BaseURL string        `yaml:"base_url"`
	Size    int           `yaml:"size"`
	Timeout time.Duration `yaml:"timeout"`
	Shiny   bool          `yaml:"shiny"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" | "console"
}

type Config struct {
	Addr        string            `yaml:"addr"`
	DataDir     string            `yaml:"data_dir"`
	Backend     storage.Backend   `yaml:"storage"`
	SQLitePath  string            `yaml:"sqlite_path"`
	PostgresDSN string            `yaml:"postgres_dsn"`
	DefaultGame string            `yaml:"default_game"`
	Games       map[string]string `yaml:"games"` // game name -> engine variant
	Roster      RosterConfig      `yaml:"roster"`
	Log         LogConfig         `yaml:"log"`
}

func Default() *Config {
	return &Config{
		Addr:        ":8080",
		DataDir:     "./data",
		Backend:     storage.BackendFile,
		DefaultGame: "swipe",
		Games: map[string]string{
			"swipe":      string(engine.VariantQueue),
			"tournament": string(engine.VariantBracket),
		},
		Roster: RosterConfig{
			BaseURL: "https://pokeapi.co/api/v2",
			Size:    151,
			Timeout: 5 * time.Second,
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in that order. A .env file in the working directory is read
// first if present. An empty path falls back to $POKEDUEL_CONFIG.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(defaultDotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", defaultDotEnvFile, err)
	}

	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Addr, EnvAddr)
	setString(&c.DataDir, EnvDataDir)
	if v := os.Getenv(EnvBackend); v != "" {
		c.Backend = storage.Backend(strings.ToLower(v))
	}
	setString(&c.SQLitePath, EnvSQLitePath)
	setString(&c.PostgresDSN, EnvPostgresDSN)
	setString(&c.DefaultGame, EnvDefaultGame)
	setString(&c.Roster.BaseURL, EnvRosterURL)
	setString(&c.Log.Level, EnvLogLevel)
	setString(&c.Log.Format, EnvLogFormat)

	if v := os.Getenv(EnvRosterSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRosterSize, err)
		}
		c.Roster.Size = n
	}
	if v := os.Getenv(EnvRosterTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRosterTimeout, err)
		}
		c.Roster.Timeout = d
	}
	if v := os.Getenv(EnvRosterShiny); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRosterShiny, err)
		}
		c.Roster.Shiny = b
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Backend {
	case storage.BackendFile, storage.BackendMemory:
	case storage.BackendSQLite:
		if c.SQLitePath == "" {
			c.SQLitePath = strings.TrimRight(c.DataDir, "/") + "/pokeduel.db"
		}
	case storage.BackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("storage %q requires %s", c.Backend, EnvPostgresDSN)
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Backend)
	}

	if len(c.Games) == 0 {
		return errors.New("no games configured")
	}
	for name, v := range c.Games {
		if _, err := engine.ParseVariant(v); err != nil {
			return fmt.Errorf("game %q: %w", name, err)
		}
	}
	if _, ok := c.Games[c.DefaultGame]; !ok {
		return fmt.Errorf("default game %q is not one of %v", c.DefaultGame, c.GameNames())
	}
	if c.Roster.Size <= 0 {
		return fmt.Errorf("roster size must be positive, got %d", c.Roster.Size)
	}
	if c.Roster.Timeout <= 0 {
		return fmt.Errorf("roster timeout must be positive, got %s", c.Roster.Timeout)
	}
	return nil
}

// GameNames lists configured games in a stable order.
func (c *Config) GameNames() []string {
	names := make([]string, 0, len(c.Games))
	for name := range c.Games {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Backend:  c.Backend,
		DataDir:  c.DataDir,
		SQLite:   c.SQLitePath,
		Postgres: c.PostgresDSN,
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
