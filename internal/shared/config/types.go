package config

import "fmt"

type DatabaseConfig struct {
	Host            string `mapstructure:"host" validate:"required"`
	Port            int    `mapstructure:"port" validate:"min=1,max=65535"`
	Username        string `mapstructure:"username" validate:"required"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database" validate:"required"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type RedisConfig struct {
	Host      string `mapstructure:"host" validate:"required"`
	Port      int    `mapstructure:"port" validate:"min=1,max=65535"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// SourceConfig locates the remote API the collector scrapes.
type SourceConfig struct {
	BaseURL        string `mapstructure:"base_url" validate:"required,url"`
	PageLimit      int    `mapstructure:"page_limit" validate:"min=1"`
	RequestDelayMS int    `mapstructure:"request_delay_ms" validate:"min=0"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"min=1"`
}

// SeedConfig holds parameters of the one-shot seed run itself.
type SeedConfig struct {
	AdminUsername string `mapstructure:"admin_username" validate:"required"`
	AdminEmail    string `mapstructure:"admin_email" validate:"required,email"`
	AdminPassword string `mapstructure:"admin_password" validate:"required"`
	BcryptCost    int    `mapstructure:"bcrypt_cost"`
}
