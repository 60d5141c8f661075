package bot

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/m3rciful/quizbot/core/config"
	coredatabase "github.com/m3rciful/quizbot/core/database"
	"github.com/m3rciful/quizbot/internal/quiz"
	"github.com/m3rciful/quizbot/internal/quiz/id"
)

const (
	// BackendFile persists quizzes in a YAML document.
	BackendFile = "file"
	// BackendSQLite persists quizzes in an embedded SQLite database.
	BackendSQLite = "sqlite"
	// BackendPostgres persists quizzes in PostgreSQL.
	BackendPostgres = "postgres"
)

// StoreConfig selects and configures the durable quiz store backend.
type StoreConfig struct {
	Backend string `yaml:"backend" envconfig:"STORE_BACKEND"`
	// Path is the YAML document location for the file backend.
	Path string `yaml:"path" envconfig:"STORE_PATH"`
}

// QuizConfig shapes the authoring flow and identifier generation.
type QuizConfig struct {
	MaxOptions        int    `yaml:"max_options" envconfig:"QUIZ_MAX_OPTIONS"`
	Categories        bool   `yaml:"categories" envconfig:"QUIZ_CATEGORIES"`
	SingleQuestion    bool   `yaml:"single_question" envconfig:"QUIZ_SINGLE_QUESTION"`
	SessionTTLMinutes int    `yaml:"session_ttl_minutes" envconfig:"QUIZ_SESSION_TTL_MINUTES"`
	IDScheme          string `yaml:"id_scheme" envconfig:"QUIZ_ID_SCHEME"`
	IDPrefix          string `yaml:"id_prefix" envconfig:"QUIZ_ID_PREFIX"`
	CorrectMarker     string `yaml:"correct_marker" envconfig:"QUIZ_CORRECT_MARKER"`
}

// Config aggregates the core bot configuration with quiz-specific sections.
type Config struct {
	Core     coreconfig.Config   `yaml:",inline"`
	Database coredatabase.Config `yaml:"database"`
	Store    StoreConfig         `yaml:"store"`
	Quiz     QuizConfig          `yaml:"quiz"`
}

// CoreConfig exposes the embedded core configuration for the runner.
func (c *Config) CoreConfig() *coreconfig.Config { return &c.Core }

// LoadConfig reads configuration from a YAML file and environment variables
// and validates both the core and the quiz sections.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return nil, err
	}
	if err := normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// normalize validates quiz-specific sections and fills defaults.
func normalize(cfg *Config) error {
	backend := strings.ToLower(strings.TrimSpace(cfg.Store.Backend))
	if backend == "" {
		backend = BackendFile
	}
	switch backend {
	case BackendFile:
		if strings.TrimSpace(cfg.Store.Path) == "" {
			cfg.Store.Path = "data/quizzes.yaml"
		}
	case BackendSQLite:
		cfg.Database.Driver = coredatabase.DriverSQLite
		if strings.TrimSpace(cfg.Database.Path) == "" {
			cfg.Database.Path = "data/quizbot.db"
		}
	case BackendPostgres:
		cfg.Database.Driver = coredatabase.DriverPostgres
		if strings.TrimSpace(cfg.Database.Host) == "" {
			return fmt.Errorf("database.host is required when store.backend is 'postgres'")
		}
	default:
		return fmt.Errorf("invalid store.backend %q; allowed: file, sqlite, postgres", cfg.Store.Backend)
	}
	cfg.Store.Backend = backend

	if cfg.Quiz.MaxOptions == 0 {
		cfg.Quiz.MaxOptions = quiz.DefaultMaxOptions
	}
	if cfg.Quiz.MaxOptions < quiz.MinOptions || cfg.Quiz.MaxOptions > 10 {
		return fmt.Errorf("quiz.max_options must be between %d and 10", quiz.MinOptions)
	}
	if cfg.Quiz.SessionTTLMinutes < 0 {
		return fmt.Errorf("quiz.session_ttl_minutes must be >= 0")
	}

	scheme := strings.ToLower(strings.TrimSpace(cfg.Quiz.IDScheme))
	if scheme == "" {
		scheme = id.SchemeSequential
	}
	if scheme != id.SchemeSequential && scheme != id.SchemeRandom {
		return fmt.Errorf("invalid quiz.id_scheme %q; allowed: sequential, random", cfg.Quiz.IDScheme)
	}
	cfg.Quiz.IDScheme = scheme

	if strings.TrimSpace(cfg.Quiz.IDPrefix) == "" {
		cfg.Quiz.IDPrefix = id.DefaultPrefix
	}
	if strings.TrimSpace(cfg.Quiz.CorrectMarker) == "" {
		cfg.Quiz.CorrectMarker = quiz.DefaultCorrectMarker
	}
	return nil
}
