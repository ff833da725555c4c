package mongodb

import (
	"flag"
	"time"

	"github.com/grafana/dskit/flagext"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Config for a partition Reader.
type Config struct {
	Database       string         `yaml:"database"`
	Collection     string         `yaml:"collection"`
	Username       string         `yaml:"username"`
	Password       flagext.Secret `yaml:"password"`
	AuthDatabase   string         `yaml:"auth_database"`
	ConnectTimeout time.Duration  `yaml:"connect_timeout"`
	BatchSize      int            `yaml:"batch_size"`
}

// RegisterFlags adds the flags required to config this to the given FlagSet
func (cfg *Config) RegisterFlags(f *flag.FlagSet) {
	cfg.RegisterFlagsWithPrefix("", f)
}

// RegisterFlagsWithPrefix adds the flags required to config this to the given FlagSet
func (cfg *Config) RegisterFlagsWithPrefix(prefix string, f *flag.FlagSet) {
	f.StringVar(&cfg.Database, prefix+"mongodb.database", "", "Database holding the scanned collection.")
	f.StringVar(&cfg.Collection, prefix+"mongodb.collection", "", "Collection to scan.")
	f.StringVar(&cfg.Username, prefix+"mongodb.username", "", "Username to use when connecting to mongodb.")
	f.Var(&cfg.Password, prefix+"mongodb.password", "Password to use when connecting to mongodb.")
	f.StringVar(&cfg.AuthDatabase, prefix+"mongodb.auth-database", "", "Database to authenticate against. Defaults to the scanned database.")
	f.DurationVar(&cfg.ConnectTimeout, prefix+"mongodb.connect-timeout", 10*time.Second, "Timeout for dialing and selecting partition hosts.")
	f.IntVar(&cfg.BatchSize, prefix+"mongodb.batch-size", 0, "Cursor batch size. 0 uses the server default.")
}

// Validate config and returns error on failure
func (cfg *Config) Validate() error {
	if cfg.Database == "" {
		return errors.New("mongodb database is required")
	}
	if cfg.Collection == "" {
		return errors.New("mongodb collection is required")
	}
	if cfg.BatchSize < 0 {
		return errors.New("mongodb batch size must not be negative")
	}
	return nil
}

// clientOptions builds the driver options for connecting to one
// partition's hosts.
func (cfg *Config) clientOptions(hosts []string) *options.ClientOptions {
	opts := options.Client().SetHosts(hosts).SetAppName("mongoscan")
	if cfg.ConnectTimeout > 0 {
		opts = opts.SetConnectTimeout(cfg.ConnectTimeout).SetServerSelectionTimeout(cfg.ConnectTimeout)
	}
	if cfg.Username != "" {
		opts = opts.SetAuth(options.Credential{
			AuthSource: cfg.authDatabase(),
			Username:   cfg.Username,
			Password:   cfg.Password.String(),
		})
	}
	return opts
}

func (cfg *Config) authDatabase() string {
	if cfg.AuthDatabase != "" {
		return cfg.AuthDatabase
	}
	return cfg.Database
}
