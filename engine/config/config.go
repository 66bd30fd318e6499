package config

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config is the engine configuration.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	DataDir    string `yaml:"data_dir"`

	// DatasetPath optionally overrides the built-in recommendation seed data.
	DatasetPath string `yaml:"dataset_path"`

	Sentiment   SentimentConfig   `yaml:"sentiment"`
	Suggestions SuggestionsConfig `yaml:"suggestions"`
	Archive     ArchiveConfig     `yaml:"archive"`
}

// SentimentConfig holds the lexicons driving comment sentiment and issue
// detection. These are tuning tables, not code.
type SentimentConfig struct {
	PositiveKeywords []string     `yaml:"positive_keywords"`
	NegativeKeywords []string     `yaml:"negative_keywords"`
	IssueThemes      []IssueTheme `yaml:"issue_themes"`
}

// IssueTheme is a named group of keywords scanned for in feedback comments.
// A theme is flagged when it appears in at least 10% of the feedback set.
type IssueTheme struct {
	Name       string   `yaml:"name"`
	Keywords   []string `yaml:"keywords"`
	Suggestion string   `yaml:"suggestion"`
}

// SuggestionsConfig holds canned improvement suggestions per feedback type
// and the static long-term goals appended to every roadmap.
type SuggestionsConfig struct {
	MaxSuggestions  int                 `yaml:"max_suggestions"`
	TypeSuggestions map[string][]string `yaml:"type_suggestions"`
	LongTermGoals   []string            `yaml:"long_term_goals"`
}

// ArchiveConfig enables the optional PostgreSQL archive sink. The JSON file
// store remains the source of truth; the archive is for dashboarding.
type ArchiveConfig struct {
	Enabled    bool             `yaml:"enabled"`
	PostgreSQL PostgreSQLConfig `yaml:"postgresql"`
}

// PostgreSQLConfig contains connection settings for the archive database.
type PostgreSQLConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Database     string `yaml:"database"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	SSLMode      string `yaml:"ssl_mode"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// ConnectionString returns the PostgreSQL connection string.
func (c *PostgreSQLConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Validate validates the PostgreSQL configuration.
func (c *PostgreSQLConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	if c.Database == "" {
		return fmt.Errorf("database is required")
	}
	if c.User == "" {
		return fmt.Errorf("user is required")
	}
	return nil
}

// Default returns the default engine configuration, including the stock
// sentiment lexicons and issue themes.
func Default() *Config {
	return &Config{
		ListenAddr: ":8080",
		DataDir:    "data",
		Sentiment: SentimentConfig{
			PositiveKeywords: []string{
				"good", "great", "excellent", "helpful", "useful",
				"accurate", "love", "amazing",
			},
			NegativeKeywords: []string{
				"bad", "terrible", "useless", "wrong", "inaccurate",
				"hate", "awful", "confusing",
			},
			IssueThemes: []IssueTheme{
				{
					Name:       "Performance Issues",
					Keywords:   []string{"slow", "loading"},
					Suggestion: "Optimize system performance and reduce loading times",
				},
				{
					Name:       "Usability Issues",
					Keywords:   []string{"confusing", "unclear"},
					Suggestion: "Improve user interface and user experience design",
				},
				{
					Name:       "Accuracy Issues",
					Keywords:   []string{"wrong", "inaccurate"},
					Suggestion: "Enhance recommendation accuracy and data quality",
				},
				{
					Name:       "Missing Information",
					Keywords:   []string{"missing", "not found"},
					Suggestion: "Expand content and information coverage",
				},
			},
		},
		Suggestions: SuggestionsConfig{
			MaxSuggestions: 5,
			TypeSuggestions: map[string][]string{
				"recommendation": {
					"Implement more personalized recommendation algorithms",
					"Add more diverse recommendation options",
					"Improve recommendation explanation and reasoning",
				},
				"quiz": {
					"Optimize quiz questions for better user engagement",
					"Improve quiz result explanations",
					"Add more interactive elements to the quiz",
				},
				"college": {
					"Enhance college search and filtering capabilities",
					"Add more detailed college information",
					"Improve college comparison features",
				},
				"career": {
					"Expand career information and pathways",
					"Add more interactive career exploration tools",
					"Improve career guidance and counseling features",
				},
			},
			LongTermGoals: []string{
				"Implement advanced ML models for better recommendations",
				"Develop comprehensive user personalization system",
				"Build advanced analytics and reporting dashboard",
				"Create mobile app for better accessibility",
			},
		},
		Archive: ArchiveConfig{
			Enabled: false,
			PostgreSQL: PostgreSQLConfig{
				Host:         "localhost",
				Port:         5432,
				Database:     "guidance",
				User:         "postgres",
				SSLMode:      "disable",
				MaxOpenConns: 10,
				MaxIdleConns: 5,
			},
		},
	}
}

// LoadFromFile loads configuration from a YAML file, applying environment
// variable substitution and filling unset fields from the defaults.
func LoadFromFile(path string, log logrus.FieldLogger) (*Config, error) {
	log = log.WithField("component", "config")

	if path == "" {
		log.Info("No config path provided, using defaults")
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	content, err := SubstituteEnvVars(string(data))
	if err != nil {
		return nil, fmt.Errorf("environment substitution failed: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"listen_addr":     cfg.ListenAddr,
		"data_dir":        cfg.DataDir,
		"archive_enabled": cfg.Archive.Enabled,
	}).Info("Loaded configuration")

	return cfg, nil
}

// applyDefaults fills fields the YAML file left unset.
func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = def.ListenAddr
	}
	if cfg.DataDir == "" {
		cfg.DataDir = def.DataDir
	}
	if len(cfg.Sentiment.PositiveKeywords) == 0 {
		cfg.Sentiment.PositiveKeywords = def.Sentiment.PositiveKeywords
	}
	if len(cfg.Sentiment.NegativeKeywords) == 0 {
		cfg.Sentiment.NegativeKeywords = def.Sentiment.NegativeKeywords
	}
	if len(cfg.Sentiment.IssueThemes) == 0 {
		cfg.Sentiment.IssueThemes = def.Sentiment.IssueThemes
	}
	if cfg.Suggestions.MaxSuggestions == 0 {
		cfg.Suggestions.MaxSuggestions = def.Suggestions.MaxSuggestions
	}
	if len(cfg.Suggestions.TypeSuggestions) == 0 {
		cfg.Suggestions.TypeSuggestions = def.Suggestions.TypeSuggestions
	}
	if len(cfg.Suggestions.LongTermGoals) == 0 {
		cfg.Suggestions.LongTermGoals = def.Suggestions.LongTermGoals
	}
	if cfg.Archive.PostgreSQL.Host == "" {
		cfg.Archive.PostgreSQL = def.Archive.PostgreSQL
	}
}

// Validate validates the loaded configuration.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.Suggestions.MaxSuggestions <= 0 {
		return fmt.Errorf("max_suggestions must be greater than 0")
	}
	for _, theme := range c.Sentiment.IssueThemes {
		if theme.Name == "" {
			return fmt.Errorf("issue theme name is required")
		}
		if len(theme.Keywords) == 0 {
			return fmt.Errorf("issue theme %q has no keywords", theme.Name)
		}
	}
	if c.Archive.Enabled {
		if err := c.Archive.PostgreSQL.Validate(); err != nil {
			return fmt.Errorf("invalid archive configuration: %w", err)
		}
	}
	return nil
}
