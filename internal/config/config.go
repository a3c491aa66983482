package config

import (
	"errors"
	"fmt"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"os"
)

type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Bot       BotConfig       `mapstructure:"bot"`
	Responder ResponderConfig `mapstructure:"responder"`
	Store     StoreConfig     `mapstructure:"store"`
	Server    ServerConfig    `mapstructure:"server"`
}

var configFile = "./configs/config.yaml"

func Get() *Config {

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warnf("couldn't load .env file: %v", err)
	}

	file := configFile
	if value, ok := os.LookupEnv("CONFIG_PATH"); ok && value != "" {
		file = value
	}

	config, err := loadConfig(file)
	if err != nil {
		log.Fatal(err)
	}

	return config
}

func loadConfig(file string) (*Config, error) {

	viper.SetConfigFile(file)
	viper.AutomaticEnv()

	setDefaults()

	err := bindEnvironmentVariables()
	if err != nil {
		return nil, err
	}

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", file, err)
	}

	config := Config{}
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	err = config.validate()
	if err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("logger.log_level", LevelInfo)
	viper.SetDefault("logger.app_name", "tg-relay-bot")
	viper.SetDefault("logger.output_file", "./logs/errors.log")
	viper.SetDefault("responder.backend", BackendResponses)
	viper.SetDefault("responder.model", "gpt-4o-mini")
	viper.SetDefault("responder.timeout", "60s")
	viper.SetDefault("responder.poll_interval", "1s")
	viper.SetDefault("responder.max_polls", 30)
	viper.SetDefault("store.driver", DriverMemory)
	viper.SetDefault("server.port", 8080)
}

func bindEnvironmentVariables() error {
	var errs []error

	bot, responder, store, logger, server := BotConfig{}, ResponderConfig{}, StoreConfig{}, LoggerConfig{}, ServerConfig{}

	if err := bot.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("BotConfig: %w", err))
	}

	if err := responder.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("ResponderConfig: %w", err))
	}

	if err := store.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("StoreConfig: %w", err))
	}

	if err := logger.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("LoggerConfig: %w", err))
	}

	if err := server.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("ServerConfig: %w", err))
	}

	return createMultiError(errs)
}

func (config Config) validate() error {
	var errs []error

	if err := config.Store.validate(); err != nil {
		errs = append(errs, fmt.Errorf("StoreConfig: %w", err))
	}

	if err := config.Bot.validate(); err != nil {
		errs = append(errs, fmt.Errorf("BotConfig: %w", err))
	}

	if err := config.Responder.validate(); err != nil {
		errs = append(errs, fmt.Errorf("ResponderConfig: %w", err))
	}

	if err := config.Logger.validate(); err != nil {
		errs = append(errs, fmt.Errorf("LoggerConfig: %w", err))
	}

	if err := config.Server.validate(); err != nil {
		errs = append(errs, fmt.Errorf("ServerConfig: %w", err))
	}

	if config.Bot.WebhookURL != "" && config.Server.WebhookSecret == "" {
		errs = append(errs, errors.New("webhook_secret is required when webhook_url is set"))
	}

	return createMultiError(errs)
}

func createMultiError(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
}

func bindEnv(bindings map[string]string) error {
	var errs []error
	for key, env := range bindings {
		if err := viper.BindEnv(key, env); err != nil {
			errs = append(errs, err)
		}
	}
	return createMultiError(errs)
}
