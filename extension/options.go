package extension

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/elastic"
	"github.com/xraph/elastic/plugin"
	"github.com/xraph/elastic/store"
	"github.com/xraph/elastic/store/mongo"
	"github.com/xraph/elastic/store/postgres"
	"github.com/xraph/elastic/store/sqlite"
)

// Option configures the elastic Forge extension.
type Option func(*Extension)

// WithStore sets the journal store.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithPostgres journals to PostgreSQL through a grove database.
func WithPostgres(db *grove.DB) Option {
	return WithStore(postgres.New(db))
}

// WithSQLite journals to SQLite through a grove database.
func WithSQLite(db *grove.DB) Option {
	return WithStore(sqlite.New(db))
}

// WithMongo journals to MongoDB through a grove database.
func WithMongo(db *grove.DB) Option {
	return WithStore(mongo.New(db))
}

// WithLedgerOption passes an elastic.Option through to the underlying ledger.
func WithLedgerOption(opt elastic.Option) Option {
	return func(e *Extension) {
		e.ledgerOpts = append(e.ledgerOpts, opt)
	}
}

// WithPlugin registers a ledger plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.ledgerOpts = append(e.ledgerOpts, elastic.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithTokenConfig sets the genesis configuration.
func WithTokenConfig(cfg elastic.Config) Option {
	return func(e *Extension) { e.config.Token = cfg }
}

// WithPluginTimeout bounds every plugin hook call.
func WithPluginTimeout(d time.Duration) Option {
	return func(e *Extension) { e.config.Token.PluginTimeout = d }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}
