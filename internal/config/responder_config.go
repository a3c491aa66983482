package config

import (
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"time"
)

type backend string

const (
	BackendResponses  backend = "responses"
	BackendAssistants backend = "assistants"
	BackendGemini     backend = "gemini"
)

type ResponderConfig struct {
	Backend              backend       `mapstructure:"backend" validate:"oneof=responses assistants gemini"`
	APIKey               string        `mapstructure:"api_key" validate:"required"`
	Model                string        `mapstructure:"model" validate:"required"`
	AssistantID          string        `mapstructure:"assistant_id"`
	SystemPrompt         string        `mapstructure:"system_prompt"`
	Timeout              time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Background           bool          `mapstructure:"background"`
	PollInterval         time.Duration `mapstructure:"poll_interval" validate:"gt=0"`
	MaxPolls             int           `mapstructure:"max_polls" validate:"gte=1"`
	MaxRequestsPerMinute float32       `mapstructure:"max_requests_per_minute" validate:"gte=0"`
	MaxRequestsPerDay    float32       `mapstructure:"max_requests_per_day" validate:"gte=0"`
}

func (config ResponderConfig) validate() error {
	var errs []error

	if err := validator.New().Struct(config); err != nil {
		errs = append(errs, err)
	}

	if config.Backend == BackendAssistants && config.AssistantID == "" {
		errs = append(errs, fmt.Errorf("missing variable: assistant_id"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func (config ResponderConfig) bindEnvironmentVariables() error {
	return bindEnv(map[string]string{
		"responder.backend":                 "RESPONDER_BACKEND",
		"responder.api_key":                 "OPENAI_API_KEY",
		"responder.model":                   "OPENAI_MODEL",
		"responder.assistant_id":            "OPENAI_ASSISTANT_ID",
		"responder.system_prompt":           "SYSTEM_PROMPT",
		"responder.timeout":                 "RESPONDER_TIMEOUT",
		"responder.max_requests_per_minute": "AI_MAX_REQUESTS_PER_MINUTE",
		"responder.max_requests_per_day":    "AI_MAX_REQUESTS_PER_DAY",
	})
}
