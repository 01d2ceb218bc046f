package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Moderation ModerationConfig `mapstructure:"moderation"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ModerationConfig struct {
	// Engine selects the image analysis path: "local" or "remote".
	Engine       string             `mapstructure:"engine"`
	ScratchDir   string             `mapstructure:"scratch_dir"`
	ImageService ImageServiceConfig `mapstructure:"image_service"`
	TextService  TextServiceConfig  `mapstructure:"text_service"`
	Classifier   ClassifierConfig   `mapstructure:"classifier"`
}

type ImageServiceConfig struct {
	BaseURL           string `mapstructure:"base_url"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds"`
	WorkRoot          string `mapstructure:"work_root"`
	ReadyMaxAttempts  int    `mapstructure:"ready_max_attempts"`
	ReadyIntervalSecs int    `mapstructure:"ready_interval_seconds"`
}

type TextServiceConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Token   string `mapstructure:"token"`
}

// ClassifierConfig carries the local engine policy as a loose settings bag;
// classifier.PolicyFromSettings validates and decodes it.
type ClassifierConfig struct {
	Policy map[string]interface{} `mapstructure:"policy"`
}

var globalConfig Config

func Load(configPath string) error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaultValues()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// no file is fine, environment variables still apply
	}

	if err := viper.Unmarshal(&globalConfig); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return nil
}

func setDefaultValues() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("moderation.engine", "remote")
	viper.SetDefault("moderation.scratch_dir", "uploads/pending")
	viper.SetDefault("moderation.image_service.timeout_seconds", 15)
	viper.SetDefault("moderation.image_service.ready_max_attempts", 30)
	viper.SetDefault("moderation.image_service.ready_interval_seconds", 2)
}

func GetConfig() *Config {
	return &globalConfig
}
