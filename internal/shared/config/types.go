package config

import "fmt"

type ServerConfig struct {
	Host    string `mapstructure:"host" validate:"required"`
	Port    int    `mapstructure:"port" validate:"gte=1,lte=65535"`
	Mode    string `mapstructure:"mode" validate:"oneof=debug release test"`
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host" validate:"required"`
	Port            int    `mapstructure:"port" validate:"gte=1,lte=65535"`
	Username        string `mapstructure:"username"`
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

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// LTIConfig groups the launch verification knobs.
type LTIConfig struct {
	// ClockSkewSeconds is the accepted oauth_timestamp drift, in seconds.
	ClockSkewSeconds int `mapstructure:"clock_skew_seconds" validate:"gte=0"`
	// NonceTTLSeconds is how long a (key, timestamp, nonce) triple is
	// remembered by the replay store. It must exceed the clock skew.
	NonceTTLSeconds int `mapstructure:"nonce_ttl_seconds" validate:"gt=0,gtefield=ClockSkewSeconds"`
}

type CookieConfig struct {
	Domain   string `mapstructure:"domain"`
	Path     string `mapstructure:"path"`
	Secure   bool   `mapstructure:"secure"`
	SameSite string `mapstructure:"same_site"`
}

type SessionConfig struct {
	JWTSecret      string       `mapstructure:"jwt_secret" validate:"required,min=16"`
	ExpMinutes     int          `mapstructure:"exp_minutes" validate:"gt=0"`
	Cookie         CookieConfig `mapstructure:"cookie"`
	LanguageCookie string       `mapstructure:"language_cookie"`
}
