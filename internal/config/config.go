package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
	DryRun     bool   `yaml:"dry_run"`
}

// TestLoginConfig — зарезервированная пара номер/код для ревью-окружений:
// верификация проходит без исходящего SMS.
type TestLoginConfig struct {
	PhoneNumber string `yaml:"phone_number"`
	Code        string `yaml:"code"`
}

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`
	Redis   RedisConfig  `yaml:"redis"`
	Twilio  TwilioConfig `yaml:"twilio"`
	Session struct {
		ExpiryDays int `yaml:"expiry_days"`
	} `yaml:"session"`
	TestLogin TestLoginConfig `yaml:"test_login"`
}

// LoadConfig читает config/config.yaml (если есть), затем накладывает
// переменные окружения — секреты и деплой-специфика живут в env.
func LoadConfig() *Config {
	cfg := &Config{}

	if f, err := os.Open("config/config.yaml"); err == nil {
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			panic("Failed to parse config.yaml: " + err.Error())
		}
	}

	applyEnv(cfg)

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Session.ExpiryDays == 0 {
		cfg.Session.ExpiryDays = 30
	}
	return cfg
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = n
		}
	}
	if v := os.Getenv("TWILIO_ACCOUNT_SID"); v != "" {
		cfg.Twilio.AccountSID = v
	}
	if v := os.Getenv("TWILIO_AUTH_TOKEN"); v != "" {
		cfg.Twilio.AuthToken = v
	}
	if v := os.Getenv("TWILIO_PHONE_NUMBER"); v != "" {
		cfg.Twilio.FromNumber = v
	}
	if v := os.Getenv("TWILIO_DRY_RUN"); v != "" {
		cfg.Twilio.DryRun = v == "true" || v == "1"
	}
	if v := os.Getenv("SESSION_EXPIRY_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Session.ExpiryDays = n
		}
	}
	if v := os.Getenv("TEST_PHONE_NUMBER"); v != "" {
		cfg.TestLogin.PhoneNumber = v
	}
	if v := os.Getenv("TEST_VERIFICATION_CODE"); v != "" {
		cfg.TestLogin.Code = v
	}
}
