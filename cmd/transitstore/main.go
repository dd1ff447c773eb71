package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/suparena/transitstore"
	"github.com/suparena/transitstore/config"
	"github.com/suparena/transitstore/datastore"
	"github.com/suparena/transitstore/datastore/badgerstore"
	"github.com/suparena/transitstore/datastore/ddb"
	"github.com/suparena/transitstore/datastore/memory"
	storeerrors "github.com/suparena/transitstore/errors"
	"github.com/suparena/transitstore/schema"
)

var (
	versionFlag = flag.Bool("version", false, "Show version information")
	vFlag       = flag.Bool("v", false, "Show version information (short)")
	configFlag  = flag.String("config", "config.yaml", "Path to the engine configuration file")
	schemasFlag = flag.String("schemas", "", "Path to the schema definitions file (overrides config)")
)

func main() {
	flag.Parse()

	if *versionFlag || *vFlag {
		info := transitstore.GetVersionInfo()
		fmt.Printf("TransitStore version %s\n", info.Version)
		fmt.Printf("Git commit: %s\n", info.GitCommit)
		fmt.Printf("Build date: %s\n", info.BuildDate)
		fmt.Printf("Go version: %s\n", info.GoVersion)
		os.Exit(0)
	}

	os.Exit(run())
}

// run provisions the indexes for every configured entity schema. Schema-load
// failures are fatal; index drift is reported and left for an operator to
// resolve with an out-of-band rebuild.
func run() int {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, proceeding with environment variables")
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return 1
	}
	log := newLogger(cfg)

	schemaFile := cfg.SchemaFile
	if *schemasFlag != "" {
		schemaFile = *schemasFlag
	}
	defs, err := config.LoadDefinitions(schemaFile)
	if err != nil {
		log.Error().Err(err).Msg("failed to load schema definitions")
		return 1
	}
	reg, err := schema.FromDefinitions(defs)
	if err != nil {
		log.Error().Err(err).Msg("schema registry load failed")
		return 1
	}

	docs, cleanup, err := openBackend(cfg)
	if err != nil {
		log.Error().Err(err).Str("backend", cfg.Backend).Msg("failed to open document store")
		return 1
	}
	defer cleanup()

	store := transitstore.New(reg, docs, transitstore.WithLogger(log))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err = store.EnsureIndexes(ctx)
	switch {
	case err == nil:
		log.Info().Strs("entity_types", reg.EntityTypes()).Msg("all indexes provisioned")
		return 0
	case errors.Is(err, storeerrors.ErrIndexDrift):
		// Drift is an operator problem, not a provisioning failure: the
		// process may keep running against the live index.
		log.Warn().Err(err).Msg("index drift detected, rebuild required")
		return 0
	default:
		log.Error().Err(err).Msg("index provisioning failed")
		return 1
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var out = os.Stderr
	logger := zerolog.New(out).Level(level).With().Timestamp().Str("service", "transitstore").Logger()
	if cfg.Log.Pretty {
		logger = logger.Output(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
	}
	return logger
}

func openBackend(cfg *config.Config) (datastore.DocumentStore, func(), error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return memory.New(), func() {}, nil
	case config.BackendBadger:
		store, err := badgerstore.Open(cfg.Badger.Dir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	case config.BackendDynamoDB:
		store, err := ddb.New(
			os.Getenv("AWS_ACCESS_KEY"),
			os.Getenv("AWS_SECRET_KEY"),
			cfg.DynamoDB.Region,
			cfg.DynamoDB.Table,
		)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
