/**
 * @description
 * Configuration management for the entitlement-service. It uses the 'viper'
 * library to load configuration from environment variables, providing a
 * centralized and consistent way to manage application settings.
 */
package config

import (
	"errors"
	"os"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	ServerPort        string `mapstructure:"SERVER_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	AuthJWKSURL       string `mapstructure:"AUTH_JWKS_URL"`
	RazorpayKeyID     string `mapstructure:"RAZORPAY_KEY_ID"`
	RazorpayKeySecret string `mapstructure:"RAZORPAY_KEY_SECRET"`
	RedisURL          string `mapstructure:"REDIS_URL"`
	RabbitMQURL       string `mapstructure:"RABBITMQ_URL"`
	SweepSchedule     string `mapstructure:"SWEEP_SCHEDULE"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (config Config, err error) {
	viper.SetDefault("SERVER_PORT", "8090")
	viper.SetDefault("SWEEP_SCHEDULE", "@hourly")
	viper.AutomaticEnv()

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("AUTH_JWKS_URL")
	_ = viper.BindEnv("RAZORPAY_KEY_ID")
	_ = viper.BindEnv("RAZORPAY_KEY_SECRET")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("SWEEP_SCHEDULE")

	if err = viper.Unmarshal(&config); err != nil {
		return
	}
	if port := os.Getenv("PORT"); port != "" {
		config.ServerPort = port
	}

	switch {
	case config.DatabaseURL == "":
		err = errors.New("DATABASE_URL is required")
	case config.AuthJWKSURL == "":
		err = errors.New("AUTH_JWKS_URL is required")
	case config.RazorpayKeyID == "":
		err = errors.New("RAZORPAY_KEY_ID is required")
	case config.RazorpayKeySecret == "":
		err = errors.New("RAZORPAY_KEY_SECRET is required")
	}
	return
}
