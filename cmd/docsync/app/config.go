package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/docsync/pkg/constants"
	"github.com/agentstation/docsync/pkg/errors"
)

// Config holds the application configuration loaded from config files,
// environment variables, .env files and command-line flags.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Upstream API
	BaseURL       string
	CandidateID   string
	CandidateName string
	Retries       int
	Backoff       time.Duration
	Timeout       time.Duration
	DefaultBatch  string
	AliasFile     string

	// Logging configuration
	LogLevel      string
	LogFormat     string
	LogOutput     string
	LogTimeFormat string
	LogCaller     bool
	LogFields     map[string]any
}

// envBindings maps config keys to the environment variables read for
// them, highest priority first.
var envBindings = map[string][]string{
	"base_url":        {"DOCSYNC_BASE_URL", "LUMICORE_BASE_URL"},
	"candidate_id":    {"DOCSYNC_CANDIDATE_ID", "X_CANDIDATE_ID"},
	"candidate_name":  {"DOCSYNC_CANDIDATE_NAME", "CANDIDATE_NAME"},
	"retries":         {"DOCSYNC_RETRIES"},
	"backoff":         {"DOCSYNC_BACKOFF"},
	"timeout":         {"DOCSYNC_TIMEOUT"},
	"default_batch":   {"DOCSYNC_DEFAULT_BATCH"},
	"alias_file":      {"DOCSYNC_ALIAS_FILE"},
	"config":          {"DOCSYNC_CONFIG"},
	"verbose":         {"VERBOSE"},
	"quiet":           {"QUIET"},
	"no_color":        {"NO_COLOR"},
	"format":          {"FORMAT", "OUTPUT"},
	"log_level":       {"LOG_LEVEL"},
	"log_format":      {"LOG_FORMAT"},
	"log_output":      {"LOG_OUTPUT"},
	"log_time_format": {"LOG_TIME_FORMAT"},
	"log_caller":      {"LOG_CALLER"},
	"log_fields":      {"LOG_FIELDS"},
}

// newViper returns a viper instance with defaults and environment
// bindings applied. It does not read any config file.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	v.SetDefault("base_url", constants.DefaultBaseURL)
	v.SetDefault("candidate_name", constants.DefaultCandidateName)
	v.SetDefault("retries", constants.MaxRetries)
	v.SetDefault("backoff", constants.RetryBackoff)
	v.SetDefault("timeout", constants.DefaultHTTPTimeout)
	v.SetDefault("default_batch", constants.DefaultBatch)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
	v.SetDefault("log_time_format", "kitchen")

	for key, envs := range envBindings {
		args := append([]string{key}, envs...)
		_ = v.BindEnv(args...)
	}
	return v
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (bound by the root command)
// 2. Environment variables
// 3. .env.local, then .env
// 4. Config file (--config, DOCSYNC_CONFIG or ~/.docsync.yaml)
// 5. Defaults
func LoadConfig(v *viper.Viper) (*Config, error) {
	loadEnvFiles()

	if err := readConfigFile(v); err != nil {
		return nil, err
	}
	return configFromViper(v), nil
}

// readConfigFile reads an explicitly named config file, failing if it
// cannot be read, or searches the standard locations and ignores a
// missing file.
func readConfigFile(v *viper.Viper) error {
	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return errors.NewConfigError("config", "reading "+file, err)
		}
		return nil
	}

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	v.AddConfigPath(".")
	v.SetConfigType("yaml")
	v.SetConfigName(".docsync")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return errors.NewConfigError("config", "reading config file", err)
	}
	return nil
}

func configFromViper(v *viper.Viper) *Config {
	return &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		BaseURL:       v.GetString("base_url"),
		CandidateID:   v.GetString("candidate_id"),
		CandidateName: v.GetString("candidate_name"),
		Retries:       v.GetInt("retries"),
		Backoff:       v.GetDuration("backoff"),
		Timeout:       v.GetDuration("timeout"),
		DefaultBatch:  v.GetString("default_batch"),
		AliasFile:     v.GetString("alias_file"),

		LogLevel:      v.GetString("log_level"),
		LogFormat:     v.GetString("log_format"),
		LogOutput:     v.GetString("log_output"),
		LogTimeFormat: v.GetString("log_time_format"),
		LogCaller:     v.GetBool("log_caller"),
		LogFields:     fieldsFromViper(v),
	}
}

// fieldsFromViper accepts log_fields either as a map in the config
// file or as LOG_FIELDS style "k=v,k2=v2".
func fieldsFromViper(v *viper.Viper) map[string]any {
	if m := v.GetStringMap("log_fields"); len(m) > 0 {
		return m
	}
	return logFields(v.GetString("log_fields"))
}

// loadEnvFiles loads environment variables from .env files. godotenv
// never overrides a variable that is already set, so .env.local is
// loaded first to take precedence over .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}
