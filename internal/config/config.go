package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	Volume   VolumeConfig   `yaml:"volume"`
	Mount    MountConfig    `yaml:"mount"`
}

func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err.Error())
	}
	return cfg
}

func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return nil, errorf("config path is empty")
	}

	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, errorf("config file does not exist: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errorf("failed to read data from config file %s: %v", configPath, err)
	}

	// Enrich with env variables, then parse the expanded copy
	data = expandEnvVars(data)

	expanded, err := os.CreateTemp("", "sqlfs-config-*.yaml")
	if err != nil {
		return nil, errorf("cannot stage config: %v", err)
	}
	defer os.Remove(expanded.Name())

	if _, err := expanded.Write(data); err != nil {
		expanded.Close()
		return nil, errorf("cannot stage config: %v", err)
	}
	if err := expanded.Close(); err != nil {
		return nil, errorf("cannot stage config: %v", err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(expanded.Name(), &cfg); err != nil {
		return nil, errorf("cannot read config: %v", err)
	}

	return &cfg, nil
}

func expandEnvVars(data []byte) []byte {
	return []byte(os.ExpandEnv(string(data)))
}

func errorf(format string, args ...any) error {
	return fmt.Errorf("config: "+format, args...)
}
