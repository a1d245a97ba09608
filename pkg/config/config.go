// Package config loads typed configuration from the environment, optionally
// seeded from a .env file first. Keys in the file are exported as upper-cased
// environment variables before envconfig decodes the target struct.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

// DefaultEnvFile is consulted when no explicit file is given.
const DefaultEnvFile = ".env"

func MustLoad[T any](prefix, envFile string) *T {
	conf, err := Load[T](prefix, envFile)
	if err != nil {
		panic(err)
	}
	return conf
}

// Load exports envFile (or .env when envFile is empty and one exists) into
// the process environment, then decodes T from variables under prefix.
func Load[T any](prefix, envFile string) (*T, error) {
	if envFile = strings.TrimSpace(envFile); envFile != "" {
		if err := exportEnvironment(envFile); err != nil {
			return nil, fmt.Errorf("loading env file %s: %w", envFile, err)
		}
	} else if err := exportEnvironmentIfExists(DefaultEnvFile); err != nil {
		return nil, fmt.Errorf("loading default env file: %w", err)
	}

	var conf T
	if err := envconfig.Process(prefix, &conf); err != nil {
		return nil, err
	}
	return &conf, nil
}

func exportEnvironmentIfExists(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	return exportEnvironment(path)
}

func exportEnvironment(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	for key, value := range v.AllSettings() {
		if err := os.Setenv(strings.ToUpper(key), fmt.Sprint(value)); err != nil {
			return err
		}
	}
	return nil
}
