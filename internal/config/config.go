package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTP struct {
		Addr string
	}
	DB struct {
		// Driver is sqlite3, mysql, postgres or mongo.
		Driver string
		DSN    string
		// Name is the Mongo database; SQL drivers take it from the DSN.
		Name string
	}
	Auth struct {
		JWTSecret string
		Issuer    string
		TokenTTL  time.Duration
	}
	Authz struct {
		AdminOverride bool
	}
	Upload struct {
		Driver        string
		Dir           string
		MaxBytes      int64
		PublicBaseURL string
		S3            struct {
			Bucket    string
			Region    string
			Endpoint  string
			AccessKey string
			SecretKey string
		}
	}
	Log struct {
		Level       string
		Development bool
	}
}

var drivers = map[string]bool{"sqlite3": true, "mysql": true, "postgres": true, "mongo": true}

// Load reads config from environment (ROOMS_ prefix), an optional .env file
// and an optional room-reviews.yaml. Real environment variables win over .env.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("ROOMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigName("room-reviews")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional config file

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("db.name", "room_reviews")
	v.SetDefault("auth.issuer", "room-reviews")
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("authz.admin_override", false)
	v.SetDefault("upload.driver", "local")
	v.SetDefault("upload.dir", "./uploads")
	v.SetDefault("upload.max_bytes", 10<<20)
	v.SetDefault("upload.public_base_url", "/uploads/")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	cfg := &Config{}
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.DB.Driver = v.GetString("db.driver")
	cfg.DB.DSN = v.GetString("db.dsn")
	cfg.DB.Name = v.GetString("db.name")
	cfg.Auth.JWTSecret = v.GetString("auth.jwt_secret")
	cfg.Auth.Issuer = v.GetString("auth.issuer")
	cfg.Authz.AdminOverride = v.GetBool("authz.admin_override")
	cfg.Upload.Driver = v.GetString("upload.driver")
	cfg.Upload.Dir = v.GetString("upload.dir")
	cfg.Upload.MaxBytes = v.GetInt64("upload.max_bytes")
	cfg.Upload.PublicBaseURL = v.GetString("upload.public_base_url")
	cfg.Upload.S3.Bucket = v.GetString("upload.s3.bucket")
	cfg.Upload.S3.Region = v.GetString("upload.s3.region")
	cfg.Upload.S3.Endpoint = v.GetString("upload.s3.endpoint")
	cfg.Upload.S3.AccessKey = v.GetString("upload.s3.access_key")
	cfg.Upload.S3.SecretKey = v.GetString("upload.s3.secret_key")
	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.Development = v.GetBool("log.development")

	ttl, err := time.ParseDuration(v.GetString("auth.token_ttl"))
	if err != nil {
		return nil, fmt.Errorf("invalid ROOMS_AUTH_TOKEN_TTL: %w", err)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("ROOMS_AUTH_TOKEN_TTL must be positive, got %s", ttl)
	}
	cfg.Auth.TokenTTL = ttl

	if cfg.DB.Driver == "" {
		return nil, fmt.Errorf("ROOMS_DB_DRIVER is required (sqlite3, mysql, postgres, mongo)")
	}
	if !drivers[cfg.DB.Driver] {
		return nil, fmt.Errorf("ROOMS_DB_DRIVER %q is not one of sqlite3, mysql, postgres, mongo", cfg.DB.Driver)
	}
	if cfg.DB.DSN == "" {
		return nil, fmt.Errorf("ROOMS_DB_DSN is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("ROOMS_AUTH_JWT_SECRET is required")
	}
	if cfg.Upload.MaxBytes <= 0 {
		return nil, fmt.Errorf("ROOMS_UPLOAD_MAX_BYTES must be positive")
	}
	if cfg.Upload.Driver == "s3" && cfg.Upload.S3.Bucket == "" {
		return nil, fmt.Errorf("ROOMS_UPLOAD_S3_BUCKET is required when ROOMS_UPLOAD_DRIVER=s3")
	}
	if cfg.Upload.Driver == "gridfs" && cfg.DB.Driver != "mongo" {
		return nil, fmt.Errorf("ROOMS_UPLOAD_DRIVER=gridfs requires ROOMS_DB_DRIVER=mongo")
	}

	return cfg, nil
}
