package config

import (
	"github.com/spf13/viper"
)

// Config carries everything read from the environment at startup. A .env
// file, if present, is loaded by main before this runs.
type Config struct {
	Port        string
	DatabaseURL string

	SessionSecret  string
	IdentitySecret string // shared secret for identity-provider session tokens

	VideoAPIURL      string
	VideoTokenID     string
	VideoTokenSecret string
	UploadCORSOrigin string

	AMQPURL string
}

func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=capoff port=5432 sslmode=disable")
	v.SetDefault("SESSION_SECRET", "secret_key_change_me")
	v.SetDefault("IDENTITY_JWT_SECRET", "dev_identity_secret")
	v.SetDefault("VIDEO_API_URL", "https://api.mux.com")
	v.SetDefault("UPLOAD_CORS_ORIGIN", "*")

	return &Config{
		Port:        v.GetString("PORT"),
		DatabaseURL: v.GetString("DATABASE_URL"),

		SessionSecret:  v.GetString("SESSION_SECRET"),
		IdentitySecret: v.GetString("IDENTITY_JWT_SECRET"),

		VideoAPIURL:      v.GetString("VIDEO_API_URL"),
		VideoTokenID:     v.GetString("VIDEO_TOKEN_ID"),
		VideoTokenSecret: v.GetString("VIDEO_TOKEN_SECRET"),
		UploadCORSOrigin: v.GetString("UPLOAD_CORS_ORIGIN"),

		AMQPURL: v.GetString("AMQP_URL"),
	}
}
