package config

import "time"

// Config is the complete nexttools configuration.
type Config struct {
	App         AppConfig         `mapstructure:"app" yaml:"app"`
	Heroku      HerokuConfig      `mapstructure:"heroku" yaml:"heroku"`
	GTG         GTGConfig         `mapstructure:"gtg" yaml:"gtg"`
	AWS         AWSConfig         `mapstructure:"aws" yaml:"aws"`
	Fastly      FastlyConfig      `mapstructure:"fastly" yaml:"fastly"`
	Konstructor KonstructorConfig `mapstructure:"konstructor" yaml:"konstructor"`
	ConfigVars  ConfigVarsConfig  `mapstructure:"config_vars" yaml:"config_vars"`
	Log         LogConfig         `mapstructure:"log" yaml:"log"`
}

// AppConfig describes the project being deployed
type AppConfig struct {
	Name       string `mapstructure:"name" yaml:"name,omitempty"`
	ProjectDir string `mapstructure:"project_dir" yaml:"project_dir"`
	Prefix     string `mapstructure:"prefix" yaml:"prefix"`
}

type HerokuConfig struct {
	Token        string `mapstructure:"token" yaml:"token,omitempty"`
	APIURL       string `mapstructure:"api_url" yaml:"api_url"`
	Region       string `mapstructure:"region" yaml:"region"`
	Organization string `mapstructure:"organization" yaml:"organization,omitempty"`
}

type GTGConfig struct {
	Timeout        time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Interval       time.Duration `mapstructure:"interval" yaml:"interval"`
	AttemptTimeout time.Duration `mapstructure:"attempt_timeout" yaml:"attempt_timeout"`
	HostSuffix     string        `mapstructure:"host_suffix" yaml:"host_suffix"`
	Scheme         string        `mapstructure:"scheme" yaml:"scheme"`
}

type AWSConfig struct {
	AccessKey    string `mapstructure:"access_key" yaml:"access_key,omitempty"`
	SecretKey    string `mapstructure:"secret_key" yaml:"secret_key,omitempty"`
	Region       string `mapstructure:"region" yaml:"region"`
	Bucket       string `mapstructure:"bucket" yaml:"bucket"`
	HashedBucket string `mapstructure:"hashed_bucket" yaml:"hashed_bucket"`
}

type FastlyConfig struct {
	Key       string  `mapstructure:"key" yaml:"key,omitempty"`
	APIURL    string  `mapstructure:"api_url" yaml:"api_url"`
	ServiceID string  `mapstructure:"service_id" yaml:"service_id,omitempty"`
	PurgeRate float64 `mapstructure:"purge_rate" yaml:"purge_rate"`
}

type KonstructorConfig struct {
	APIKey  string `mapstructure:"api_key" yaml:"api_key,omitempty"`
	Gateway string `mapstructure:"gateway" yaml:"gateway"`
	Owner   string `mapstructure:"owner" yaml:"owner"`
	Channel string `mapstructure:"channel" yaml:"channel"`
}

type ConfigVarsConfig struct {
	Key     string `mapstructure:"key" yaml:"key,omitempty"`
	URL     string `mapstructure:"url" yaml:"url"`
	KeyFile string `mapstructure:"key_file" yaml:"key_file"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // console, json
}
