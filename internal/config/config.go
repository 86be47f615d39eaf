package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/phennylalanine/jhvocab/internal/hub"
	"github.com/phennylalanine/jhvocab/internal/questionbank"
	"github.com/phennylalanine/jhvocab/internal/store"
)

// EnvPrefix prefixes every environment override, e.g. JHVOCAB_STORAGE_DRIVER.
const EnvPrefix = "JHVOCAB"

type Config struct {
	Storage   StorageConfig   `mapstructure:"storage"`
	Log       LogConfig       `mapstructure:"log"`
	Server    ServerConfig    `mapstructure:"server"`
	Questions QuestionsConfig `mapstructure:"questions"`
	Speech    SpeechConfig    `mapstructure:"speech"`
	Hub       HubConfig       `mapstructure:"hub"`
	Quizzes   []QuizConfig    `mapstructure:"quizzes"`
}

type StorageConfig struct {
	Driver        string `mapstructure:"driver"`
	Path          string `mapstructure:"path"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	RedisPrefix   string `mapstructure:"redis_prefix"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	Mode           string        `mapstructure:"mode"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	// RateLimit is the sustained requests per second; 0 disables limiting.
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
}

// QuestionsConfig controls how question sources are located and parsed.
type QuestionsConfig struct {
	// Root resolves relative sources to local files when set.
	Root string `mapstructure:"root"`
	// BaseURL resolves relative sources to URLs when Root is empty.
	BaseURL    string `mapstructure:"base_url"`
	RequireIDs bool   `mapstructure:"require_ids"`
	XLSXSheet  string `mapstructure:"xlsx_sheet"`
}

// SpeechConfig names an external command that reads answers aloud. The
// answer text is appended as the last argument.
type SpeechConfig struct {
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
}

type HubConfig struct {
	Entries []hub.Entry `mapstructure:"entries"`
}

// QuizConfig describes one quiz of the catalog.
type QuizConfig struct {
	ID        string `mapstructure:"id"`
	Title     string `mapstructure:"title"`
	TitleJP   string `mapstructure:"title_jp"`
	Icon      string `mapstructure:"icon"`
	URL       string `mapstructure:"url"`
	Source    string `mapstructure:"source"`
	Fallback  string `mapstructure:"fallback"`
	Namespace string `mapstructure:"namespace"`
	LevelKey  string `mapstructure:"level_key"`
	XPKey     string `mapstructure:"xp_key"`
	// HubWeight adds the quiz's level to the overall level when positive.
	HubWeight float64 `mapstructure:"hub_weight"`
}

// DefaultQuizzes returns the built-in catalog.
func DefaultQuizzes() []QuizConfig {
	return []QuizConfig{
		{
			ID:        "lesson7-1",
			Title:     "Lesson 7-1 Quiz",
			TitleJP:   "7-1 第1戦",
			Icon:      "🏛️",
			URL:       "https://phennylalanine.github.io/JuniorHighVocab/Lesson7-1/",
			Source:    "Lesson7-1/questions.json",
			Fallback:  "Lesson7-1/questions.csv",
			Namespace: "Lesson7Vocabulary1",
			LevelKey:  "lesson7-1sLevelr",
			XPKey:     "lesson7_xp",
		},
		{
			ID:        "verb1",
			Title:     "Verbs Part 1",
			TitleJP:   "現在形と過去分詞",
			Icon:      "🏃",
			URL:       "https://phennylalanine.github.io/JuniorHighVocab/verbPractice/",
			Source:    "verbPractice/questions.json",
			Fallback:  "verbPractice/questions.csv",
			Namespace: "VerbPractice1",
			LevelKey:  "verb1Levelr",
			XPKey:     "verb1_xp",
		},
	}
}

// New returns a viper instance with defaults and environment binding, ready
// for flags to be bound before Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.driver", string(store.DriverSQLite))
	v.SetDefault("storage.path", "")
	v.SetDefault("storage.redis_addr", "localhost:6379")
	v.SetDefault("storage.redis_password", "")
	v.SetDefault("storage.redis_db", 0)
	v.SetDefault("storage.redis_prefix", "jhvocab:")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.compress", true)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.allowed_origins", []string{"https://phennylalanine.github.io"})
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.rate_limit", 20.0)
	v.SetDefault("server.rate_burst", 40)

	v.SetDefault("questions.root", "")
	v.SetDefault("questions.base_url", "https://phennylalanine.github.io/JuniorHighVocab")
	v.SetDefault("questions.require_ids", false)
	v.SetDefault("questions.xlsx_sheet", "")

	v.SetDefault("speech.command", "")
}

// Load reads .env, the config file and the environment into a Config.
// path selects an explicit file; otherwise config.yaml is searched in the
// user config directory and the working directory, and a missing file is
// not an error.
func Load(v *viper.Viper, path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		if dir, err := configDir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// configDir returns $XDG_CONFIG_HOME/jhvocab or ~/.config/jhvocab.
func configDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "jhvocab"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "jhvocab"), nil
}

func (c *Config) applyDefaults() {
	if len(c.Quizzes) == 0 {
		c.Quizzes = DefaultQuizzes()
	}
	for i := range c.Quizzes {
		q := &c.Quizzes[i]
		if q.Namespace == "" {
			q.Namespace = questionbank.SanitizeNamespace(q.ID)
		}
		if q.Title == "" {
			q.Title = q.ID
		}
	}

	if len(c.Hub.Entries) == 0 {
		c.Hub.Entries = hub.DefaultEntries()
	}
	for i := range c.Hub.Entries {
		if c.Hub.Entries[i].Weight == 0 {
			c.Hub.Entries[i].Weight = hub.WeightFor(c.Hub.Entries[i].Key)
		}
	}
}

// Validate checks the catalog and storage settings.
func (c *Config) Validate() error {
	switch store.Driver(c.Storage.Driver) {
	case store.DriverSQLite, store.DriverRedis, store.DriverMemory:
	default:
		return fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver)
	}

	seen := make(map[string]bool, len(c.Quizzes))
	for i, q := range c.Quizzes {
		switch {
		case q.ID == "":
			return fmt.Errorf("quizzes[%d]: id is required", i)
		case seen[q.ID]:
			return fmt.Errorf("quizzes[%d]: duplicate id %q", i, q.ID)
		case q.Source == "":
			return fmt.Errorf("quiz %q: source is required", q.ID)
		case q.LevelKey == "" || q.XPKey == "":
			return fmt.Errorf("quiz %q: level_key and xp_key are required", q.ID)
		case q.LevelKey == q.XPKey:
			return fmt.Errorf("quiz %q: level_key and xp_key must differ", q.ID)
		case q.Namespace == "":
			return fmt.Errorf("quiz %q: namespace is empty after sanitizing the id", q.ID)
		}
		seen[q.ID] = true
	}
	return nil
}

// NamespaceKey is the store entry recording the scheduler namespace the
// quiz's question source resolved to.
func (q QuizConfig) NamespaceKey() string {
	return q.LevelKey + ":ns"
}

// Quiz looks up a quiz by id.
func (c *Config) Quiz(id string) (QuizConfig, bool) {
	for _, q := range c.Quizzes {
		if q.ID == id {
			return q, true
		}
	}
	return QuizConfig{}, false
}

// HubEntries returns the weighted level keys of the overall level: the
// configured hub entries plus catalog quizzes with a positive hub weight.
func (c *Config) HubEntries() []hub.Entry {
	entries := append([]hub.Entry(nil), c.Hub.Entries...)
	present := make(map[string]bool, len(entries))
	for _, e := range entries {
		present[e.Key] = true
	}
	for _, q := range c.Quizzes {
		if q.HubWeight > 0 && !present[q.LevelKey] {
			entries = append(entries, hub.Entry{Key: q.LevelKey, Weight: q.HubWeight})
			present[q.LevelKey] = true
		}
	}
	return entries
}

// ResolveSource maps a quiz source to a file path or URL. Absolute paths and
// URLs are returned unchanged.
func (q QuestionsConfig) ResolveSource(src string) string {
	switch {
	case src == "":
		return ""
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"), filepath.IsAbs(src):
		return src
	case q.Root != "":
		return filepath.Join(q.Root, src)
	case q.BaseURL != "":
		return strings.TrimRight(q.BaseURL, "/") + "/" + strings.TrimLeft(src, "/")
	default:
		return src
	}
}

// ParseOptions builds question parsing options for a quiz.
func (q QuestionsConfig) ParseOptions(quiz QuizConfig) questionbank.ParseOptions {
	opts := questionbank.ParseOptions{
		DefaultNamespace: quiz.Namespace,
		RequireIDs:       q.RequireIDs,
		XLSX:             questionbank.DefaultXLSXOptions(),
	}
	opts.XLSX.SheetName = q.XLSXSheet
	return opts
}

// StoreOptions converts the storage settings; path is the resolved SQLite path.
func (s StorageConfig) StoreOptions(path string) store.Options {
	return store.Options{
		Driver:        store.Driver(s.Driver),
		Path:          path,
		RedisAddr:     s.RedisAddr,
		RedisPassword: s.RedisPassword,
		RedisDB:       s.RedisDB,
		RedisPrefix:   s.RedisPrefix,
	}
}
