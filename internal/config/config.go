// Package config loads pipeline configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env"
)

// Config holds the settings shared by the uploader and the pipeline.
// The five REDSHIFT_* variables gate the warehouse load stage; see
// Warehouse.
type Config struct {
	Bucket          string `json:"bucket" env:"ETL_BUCKET" envDefault:"portfolio-etl-data"`
	Project         string `json:"project" env:"GOOGLE_CLOUD_PROJECT"`
	RawFolder       string `json:"raw_folder" env:"ETL_RAW_FOLDER" envDefault:"raw-data"`
	ProcessedFolder string `json:"processed_folder" env:"ETL_PROCESSED_FOLDER" envDefault:"processed-data"`
	LogLevel        int    `json:"log_level" env:"LOG_LEVEL" envDefault:"1"`

	WarehouseHost     string `json:"-" env:"REDSHIFT_HOST"`
	WarehousePort     string `json:"-" env:"REDSHIFT_PORT"`
	WarehouseDatabase string `json:"-" env:"REDSHIFT_DB"`
	WarehouseUser     string `json:"-" env:"REDSHIFT_USER"`
	WarehousePassword string `json:"-" env:"REDSHIFT_PASSWORD"`
}

// WarehouseConfig holds the connection parameters for the warehouse.
type WarehouseConfig struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

// DSN renders the config as a pgx connection URL.
func (w *WarehouseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", w.User, w.Password, w.Host, w.Port, w.Database)
}

// New parses configuration from the environment.
func New() (*Config, error) {
	c := &Config{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("config: parse environment: %w", err)
	}
	return c, nil
}

// Warehouse returns the warehouse connection parameters, or nil when any
// of the five REDSHIFT_* variables is unset. A nil result disables the
// load stage.
func (c *Config) Warehouse() *WarehouseConfig {
	if c.WarehouseHost == "" || c.WarehousePort == "" || c.WarehouseDatabase == "" ||
		c.WarehouseUser == "" || c.WarehousePassword == "" {
		return nil
	}
	return &WarehouseConfig{
		Host:     c.WarehouseHost,
		Port:     c.WarehousePort,
		Database: c.WarehouseDatabase,
		User:     c.WarehouseUser,
		Password: c.WarehousePassword,
	}
}
