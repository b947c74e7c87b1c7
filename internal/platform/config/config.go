// Package config loads typed configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr       string   `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	JWTSecret      string   `env:"JWT_SECRET"`
	GoogleClientID string   `env:"GOOGLE_CLIENT_ID"`
	RedirectURL    string   `env:"AUTH_REDIRECT_URL" envDefault:"/"`
	CookieDomain   string   `env:"COOKIE_DOMAIN"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	DB DBConfig `envPrefix:"POSTGRES_"`
}

type DBConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"5432"`
	User     string `env:"USER"`
	Password string `env:"PASSWORD"`
	Name     string `env:"DB"`
}

func (c DBConfig) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Name)
}

func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
