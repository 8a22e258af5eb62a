package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type HTTPServer struct {
	Port string `mapstructure:"port"`
}

type DbServer struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Pass     string `mapstructure:"pass"`
	Name     string `mapstructure:"name"`
	MaxConns int32  `mapstructure:"max_conns"`
}

func (config *DbServer) GetConnectionStr() string {
	return fmt.Sprintf(
		"user=%s password=%s host=%s port=%s dbname=%s sslmode=disable pool_max_conns=10",
		config.User, config.Pass, config.Host, config.Port, config.Name,
	)
}

type Logging struct {
	Level string `mapstructure:"level"`
}

type Scheduler struct {
	SolvencyIntervalSec int `mapstructure:"solvency_interval_seconds"`
}

type Engine struct {
	// OwnerAccount seeds the administrator account on first boot; after that
	// the persisted owner wins (ownership can be transferred at runtime).
	OwnerAccount   string `mapstructure:"owner_account"`
	FeeBasisPoints int64  `mapstructure:"fee_basis_points"`
	RateCacheSize  int64  `mapstructure:"rate_cache_size"`
}

type AppConfig struct {
	HTTPServer HTTPServer `mapstructure:"http_server"`
	DbServer   DbServer   `mapstructure:"db_server"`
	Logging    Logging    `mapstructure:"logging"`
	Scheduler  Scheduler  `mapstructure:"scheduler"`
	Engine     Engine     `mapstructure:"engine"`
}

func Init() (*AppConfig, error) {
	var cfg AppConfig

	if err := godotenv.Load(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	viper.SetConfigFile("config.yaml")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	viper.SetDefault("db_server.max_conns", 10)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("scheduler.solvency_interval_seconds", 60)
	viper.SetDefault("engine.fee_basis_points", 50)
	viper.SetDefault("engine.rate_cache_size", 1024)

	// db server env vars
	_ = viper.BindEnv("db_server.host", "DB_HOST")
	_ = viper.BindEnv("db_server.port", "DB_PORT")
	_ = viper.BindEnv("db_server.user", "DB_USER")
	_ = viper.BindEnv("db_server.pass", "DB_PASS")
	_ = viper.BindEnv("db_server.name", "DB_NAME")
	_ = viper.BindEnv("db_server.max_conns", "DB_MAX_CONNS")

	// engine env vars
	_ = viper.BindEnv("engine.owner_account", "OWNER_ACCOUNT")
	_ = viper.BindEnv("engine.fee_basis_points", "FEE_BASIS_POINTS")

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	return &cfg, nil
}
