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

// EnvPrefix namespaces environment overrides, e.g. BOXPUSHER_ADDR
const EnvPrefix = "BOXPUSHER"

// Settings holds process-level configuration
type Settings struct {
	Addr        string        `mapstructure:"addr"`
	PacksDir    string        `mapstructure:"packs_dir"`
	DefaultPack string        `mapstructure:"default_pack"`
	TickRate    int           `mapstructure:"tick_rate"`
	SessionTTL  time.Duration `mapstructure:"session_ttl"`
	APIURL      string        `mapstructure:"api_url"`
	LogLevel    string        `mapstructure:"log_level"`
	LogFormat   string        `mapstructure:"log_format"`

	NgrokEnabled   bool   `mapstructure:"ngrok_enabled"`
	NgrokAuthToken string `mapstructure:"ngrok_authtoken"`
	NgrokDomain    string `mapstructure:"ngrok_domain"`
}

// TickInterval converts the tick rate to a clock interval
func (s *Settings) TickInterval() time.Duration {
	if s.TickRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(s.TickRate)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", "localhost:8080")
	v.SetDefault("packs_dir", "packs")
	v.SetDefault("default_pack", "")
	v.SetDefault("tick_rate", 60)
	v.SetDefault("session_ttl", 24*time.Hour)
	v.SetDefault("api_url", "http://localhost:8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("ngrok_enabled", false)
	v.SetDefault("ngrok_authtoken", "")
	v.SetDefault("ngrok_domain", "")
}

// LoadDotEnv loads variables from .env files when present
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// LoadSettings reads defaults, then the optional config file, then
// BOXPUSHER_* environment variables
func LoadSettings(cfgPath string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// Unprefixed names are honoured for the ngrok token
	if token := os.Getenv("NGROK_AUTHTOKEN"); token != "" && v.GetString("ngrok_authtoken") == "" {
		v.Set("ngrok_authtoken", token)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if s.TickRate < 1 || s.TickRate > 1000 {
		return nil, fmt.Errorf("tick_rate must be between 1 and 1000, got %d", s.TickRate)
	}
	return &s, nil
}
