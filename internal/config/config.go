package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Quiz      QuizConfig      `mapstructure:"quiz"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	KeyStore  KeyStoreConfig  `mapstructure:"keystore"`
	Results   ResultsConfig   `mapstructure:"results"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Templates TemplatesConfig `mapstructure:"templates"`
	Outputs   OutputsConfig   `mapstructure:"outputs"`
	Server    ServerConfig    `mapstructure:"server"`
}

type QuizConfig struct {
	QuestionsPerSet           int    `mapstructure:"questions_per_set" validate:"min=1,max=100"`
	QuestionsFile             string `mapstructure:"questions_file"`
	Shuffle                   bool   `mapstructure:"shuffle"`
	ExplanationTimeoutSeconds int    `mapstructure:"explanation_timeout_seconds" validate:"min=1"`
}

// ExplanationTimeout returns the explanation request timeout as a duration.
func (c QuizConfig) ExplanationTimeout() time.Duration {
	return time.Duration(c.ExplanationTimeoutSeconds) * time.Second
}

type OpenAIConfig struct {
	Model            string `mapstructure:"model" validate:"required"`
	BaseURL          string `mapstructure:"base_url" validate:"required,url"`
	MaxRetryAttempts uint   `mapstructure:"max_retry_attempts" validate:"max=10"`
}

type KeyStoreConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

const (
	ResultStoreYAML   = "yaml"
	ResultStoreSQLite = "sqlite"
	ResultStoreMySQL  = "mysql"
)

type ResultsConfig struct {
	Store      string `mapstructure:"store" validate:"oneof=yaml sqlite mysql"`
	Directory  string `mapstructure:"directory"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

type DatabaseConfig struct {
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
}

type TemplatesConfig struct {
	ResultReport string `mapstructure:"result_report" validate:"omitempty,file"`
}

type OutputsConfig struct {
	ReportDirectory string `mapstructure:"report_directory"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port" validate:"min=1,max=65535"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/eiken")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

// DefaultKeyStorePath is where the API key is stored unless configured otherwise.
func DefaultKeyStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".eiken", "credentials.yml")
	}
	return filepath.Join(home, ".config", "eiken", "credentials.yml")
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("quiz.questions_per_set", 10)
	v.SetDefault("quiz.questions_file", "")
	v.SetDefault("quiz.shuffle", false)
	v.SetDefault("quiz.explanation_timeout_seconds", 20)
	v.SetDefault("openai.model", "gpt-3.5-turbo")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.max_retry_attempts", 3)
	v.SetDefault("keystore.path", DefaultKeyStorePath())
	v.SetDefault("results.store", ResultStoreYAML)
	v.SetDefault("results.directory", "results")
	v.SetDefault("results.sqlite_path", filepath.Join("results", "eiken.db"))
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "eiken")
	v.SetDefault("database.username", "user")
	// Template is optional - if not specified, will use embedded fallback template
	v.SetDefault("templates.result_report", "")
	v.SetDefault("outputs.report_directory", filepath.Join("outputs", "reports"))
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:5173"})

	// The OpenAI API key is read by the key store, not from here
	if err := v.BindEnv("openai.model", "OPENAI_MODEL"); err != nil {
		return nil, fmt.Errorf("failed to bind OPENAI_MODEL environment variable: %w", err)
	}

	// Bind database password to environment variable
	if err := v.BindEnv("database.password", "DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind DB_PASSWORD environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil, fmt.Errorf("validator.Struct() > %w", err)
		}
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}
