package config

import (
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"strings"
)

type BotConfig struct {
	Token               string `mapstructure:"token"`
	AdminID             int64  `mapstructure:"admin_id" validate:"gte=0"`
	RequireExplicitMode bool   `mapstructure:"require_explicit_mode"`
	WebhookURL          string `mapstructure:"webhook_url" validate:"omitempty,url"`
	StatsReportSchedule string `mapstructure:"stats_report_schedule"`
}

func (config BotConfig) validate() error {

	var missingFields []string

	if config.Token == "" {
		missingFields = append(missingFields, "token")
	}

	if config.StatsReportSchedule != "" && config.AdminID == 0 {
		missingFields = append(missingFields, "admin_id")
	}

	if len(missingFields) > 0 {
		return fmt.Errorf("missing required variables: %s", strings.Join(missingFields, ", "))
	}

	return validator.New().Struct(config)
}

func (config BotConfig) bindEnvironmentVariables() error {
	// TELEGRAM_BOT_TOKEN is the name most deployments already export, TG_TOKEN wins when both are set.
	if err := viper.BindEnv("bot.token", "TG_TOKEN", "TELEGRAM_BOT_TOKEN"); err != nil {
		return err
	}
	return bindEnv(map[string]string{
		"bot.admin_id":              "ADMIN_ID",
		"bot.require_explicit_mode": "REQUIRE_EXPLICIT_MODE",
		"bot.webhook_url":           "WEBHOOK_URL",
		"bot.stats_report_schedule": "STATS_REPORT_SCHEDULE",
	})
}
