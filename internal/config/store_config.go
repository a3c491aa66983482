package config

import (
	"fmt"
	"github.com/spf13/viper"
)

type driver string

const (
	DriverMemory driver = "memory"
	DriverSqlite driver = "sqlite"
)

type StoreConfig struct {
	Driver           driver `mapstructure:"driver"`
	ConnectionString string `mapstructure:"connection_string"`
}

func (config StoreConfig) validate() error {
	switch config.Driver {
	case DriverMemory:
		return nil
	case DriverSqlite:
		if config.ConnectionString == "" {
			return fmt.Errorf("missing variable: db connection string")
		}
		return nil
	default:
		return fmt.Errorf("unknown store driver: %q", config.Driver)
	}
}

func (config StoreConfig) bindEnvironmentVariables() error {
	if err := viper.BindEnv("store.driver", "STORE_DRIVER"); err != nil {
		return err
	}
	return viper.BindEnv("store.connection_string", "DB_CONNECTION_STRING")
}
