package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const DefaultConfigFile = "./config/config.yaml"

var ErrMissingKey = errors.New("missing required configuration key")

type Postgres struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"database"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (p Postgres) ConnStr() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s", p.Host, p.User, p.Password, p.DBName, p.Port, p.SSLMode)
}

type OpenAI struct {
	APIKey          string `mapstructure:"apiKey"`
	BaseURL         string `mapstructure:"baseURL"`
	CompletionModel string `mapstructure:"completionModel"`
	EmbeddingModel  string `mapstructure:"embeddingModel"`
	MaxTokens       int    `mapstructure:"maxTokens"`
}

type Maps struct {
	APIKey  string `mapstructure:"apiKey"`
	BaseURL string `mapstructure:"baseURL"`
	Radius  int    `mapstructure:"radius"`
	Limit   int    `mapstructure:"limit"`
}

type History struct {
	Path string `mapstructure:"path"`
}

type Server struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type Config struct {
	Postgres Postgres `mapstructure:"postgres"`
	OpenAI   OpenAI   `mapstructure:"openai"`
	Maps     Maps     `mapstructure:"maps"`
	History  History  `mapstructure:"history"`
	Server   Server   `mapstructure:"server"`
}

// Validate reports the API keys that must be present before the process can serve requests.
func (c *Config) Validate() error {
	var missing []string
	if c.OpenAI.APIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if c.Maps.APIKey == "" {
		missing = append(missing, "MAPS_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingKey, strings.Join(missing, ", "))
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("openai.completionModel", "gpt-4o-mini")
	v.SetDefault("openai.embeddingModel", "text-embedding-3-large")
	v.SetDefault("openai.maxTokens", 1000)
	v.SetDefault("maps.baseURL", "https://maps.googleapis.com/maps/api")
	v.SetDefault("maps.radius", 10000)
	v.SetDefault("maps.limit", 20)
	v.SetDefault("history.path", "chat_history.db")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
}

// Load reads the YAML file at path when it exists and overlays environment variables.
// The API keys keep the unprefixed names they have always been exported under.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := v.BindEnv("openai.apiKey", "OPENAI_API_KEY"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("maps.apiKey", "MAPS_API_KEY"); err != nil {
		return nil, err
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return &config, nil
}

// LoadConfig loads and validates the default config file, exiting the process on failure.
func LoadConfig() *Config {
	cfg, err := Load(DefaultConfigFile)
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	return cfg
}
