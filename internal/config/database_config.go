package config

import (
	"fmt"
	"net/url"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver" env-default:"postgres"`
	Host     string `yaml:"host" env-default:"localhost"`
	Port     int    `yaml:"port" env-default:"5432"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode" env-default:"disable"`
	Table    string `yaml:"table" env-default:"files"`
	Path     string `yaml:"path" env-default:"sqlfs.db"`
	PoolSize int    `yaml:"pool_size"`
}

func (c DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Name,
	}
	q := u.Query()
	q.Set("sslmode", c.SSLMode)
	if c.PoolSize > 0 {
		q.Set("pool_max_conns", fmt.Sprint(c.PoolSize))
	}
	u.RawQuery = q.Encode()
	return u.String()
}
