package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. LEDGER_LOG_LEVEL.
const EnvPrefix = "LEDGER"

// Config is the full runtime configuration of the ledger command.
type Config struct {
	Input    InputConfig    `mapstructure:"input"`
	Output   OutputConfig   `mapstructure:"output"`
	Log      LogConfig      `mapstructure:"log"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type InputConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// OutputConfig selects where the account report goes. "" and "-" mean stdout.
type OutputConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level       string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Environment string `mapstructure:"environment" validate:"oneof=production development local"`
}

// KafkaConfig enables event publishing when Brokers is not empty.
type KafkaConfig struct {
	Brokers     []string `mapstructure:"brokers"`
	Topic       string   `mapstructure:"topic" validate:"required_with=Brokers"`
	Compression string   `mapstructure:"compression" validate:"oneof=none gzip snappy lz4 zstd"`
}

// PostgresConfig enables the snapshot export when DSN is set.
type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

func (c *Config) KafkaEnabled() bool {
	return len(c.Kafka.Brokers) > 0
}

func (c *Config) PostgresEnabled() bool {
	return c.Postgres.DSN != ""
}

// Load builds the configuration from, in increasing priority: defaults, a
// .env file in the working directory, LEDGER_* environment variables and
// command line flags. The first positional argument is the input CSV path.
func Load(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("input.path", "")
	v.SetDefault("output.path", "")
	v.SetDefault("log.level", "")
	v.SetDefault("log.environment", "production")
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "ledger.transactions")
	v.SetDefault("kafka.compression", "none")
	v.SetDefault("postgres.dsn", "")

	flags := newFlagSet()
	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	for key, name := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	if flags.NArg() > 0 {
		v.Set("input.path", flags.Arg(0))
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// flagKeys maps config keys to their command line flags.
var flagKeys = map[string]string{
	"output.path":       "output",
	"log.level":         "log-level",
	"log.environment":   "log-env",
	"kafka.brokers":     "kafka-brokers",
	"kafka.topic":       "kafka-topic",
	"kafka.compression": "kafka-compression",
	"postgres.dsn":      "postgres-dsn",
}

func newFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("ledger", pflag.ContinueOnError)
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: ledger [flags] <transactions.csv>\n")
		flags.PrintDefaults()
	}

	flags.StringP("output", "o", "", "write the account report to this file instead of stdout")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-env", "production", "logger profile (production, development, local)")
	flags.StringSlice("kafka-brokers", nil, "publish transaction events to these brokers")
	flags.String("kafka-topic", "ledger.transactions", "topic for transaction events")
	flags.String("kafka-compression", "none", "event compression (none, gzip, snappy, lz4, zstd)")
	flags.String("postgres-dsn", "", "export the final snapshot to this database")
	return flags
}

var validate = validator.New()

// Validate reports every invalid field in one error.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
