package config

import (
	"github.com/go-playground/validator/v10"
)

type ServerConfig struct {
	Port          int    `mapstructure:"port" validate:"gte=1,lte=65535"`
	AdminToken    string `mapstructure:"admin_token"`
	WebhookSecret string `mapstructure:"webhook_secret" validate:"omitempty,alphanum"`
}

func (config ServerConfig) validate() error {
	return validator.New().Struct(config)
}

func (config ServerConfig) bindEnvironmentVariables() error {
	return bindEnv(map[string]string{
		"server.port":           "PORT",
		"server.admin_token":    "ADMIN_TOKEN",
		"server.webhook_secret": "WEBHOOK_SECRET",
	})
}
