package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ConfigFile = "nexttools.yml"
	EnvPrefix  = "NEXTTOOLS"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "")
	v.SetDefault("app.project_dir", ".")
	v.SetDefault("app.prefix", "ft-next-")
	v.SetDefault("heroku.api_url", "https://api.heroku.com")
	v.SetDefault("heroku.region", "eu")
	v.SetDefault("heroku.organization", "")
	v.SetDefault("gtg.timeout", "60s")
	v.SetDefault("gtg.interval", "2s")
	v.SetDefault("gtg.attempt_timeout", "5s")
	v.SetDefault("gtg.host_suffix", "herokuapp.com")
	v.SetDefault("gtg.scheme", "https")
	v.SetDefault("aws.region", "eu-west-1")
	v.SetDefault("aws.bucket", "ft-next-qa")
	v.SetDefault("aws.hashed_bucket", "ft-next-hashed-assets-prod")
	v.SetDefault("fastly.api_url", "https://api.fastly.com")
	v.SetDefault("fastly.purge_rate", 5.0)
	v.SetDefault("konstructor.gateway", "konstructor")
	v.SetDefault("konstructor.owner", "next.team@ft.com")
	v.SetDefault("konstructor.channel", "#ft-next-builds")
	v.SetDefault("config_vars.url", "https://ft-next-config-vars.herokuapp.com")
	v.SetDefault("config_vars.key_file", "~/.nextconfigvarskey")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

func newDefaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// Load reads configuration from an optional file and the environment.
// A .env file in the working directory is loaded first; real environment
// variables win over it. Env names use the NEXTTOOLS_ prefix with
// underscores for nesting: NEXTTOOLS_HEROKU_TOKEN, NEXTTOOLS_GTG_TIMEOUT.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	v := newDefaults()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(ConfigFile, ".yml"))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindSecrets(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// bindSecrets lets the conventional variable names used by CI feed the
// explicit config fields.
func bindSecrets(v *viper.Viper) {
	_ = v.BindEnv("heroku.token", EnvPrefix+"_HEROKU_TOKEN", "HEROKU_AUTH_TOKEN", "HEROKU_API_KEY")
	_ = v.BindEnv("fastly.key", EnvPrefix+"_FASTLY_KEY", "FASTLY_KEY")
	_ = v.BindEnv("fastly.service_id", EnvPrefix+"_FASTLY_SERVICE_ID", "FASTLY_SERVICE_ID")
	_ = v.BindEnv("aws.access_key", EnvPrefix+"_AWS_ACCESS_KEY", "AWS_ACCESS")
	_ = v.BindEnv("aws.secret_key", EnvPrefix+"_AWS_SECRET_KEY", "AWS_SECRET")
	_ = v.BindEnv("konstructor.api_key", EnvPrefix+"_KONSTRUCTOR_API_KEY", "KONSTRUCTOR_API_KEY")
	_ = v.BindEnv("config_vars.key", EnvPrefix+"_CONFIG_VARS_KEY", "CONFIG_VARS_KEY")
}
