package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/i2/radix-engine-library/atomos"
	"github.com/i2/radix-engine-library/constraintmachine/debug"
	"github.com/i2/radix-engine-library/metrics"
	"github.com/i2/radix-engine-library/store"
	"github.com/i2/radix-engine-library/store/badgerstore"
)

func newRootCmd() *cobra.Command {
	var configFile string
	var genesisPath string
	var storePath string
	var useBadger bool
	var showGraph bool

	root := &cobra.Command{
		Use:   "cmvalidate",
		Short: "validate a genesis atom against a freshly built constraint machine",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			fileOpts, err := loadConfigFile(v, configFile)
			if err != nil {
				return err
			}
			opts := append([]configOption{
				withGenesisPath(genesisPath),
				withStorePath(storePath),
				withBadger(useBadger),
			}, fileOpts...)
			cfg := newConfigOptions(opts...)

			return runValidate(cfg, showGraph)
		},
	}

	root.Flags().StringVar(&configFile, "config", "", "optional viper config file with a [cmvalidate] section")
	root.Flags().StringVar(&genesisPath, "genesis", "", "path to a genesis YAML file (defaults to the embedded sample)")
	root.Flags().StringVar(&storePath, "store", "", "badger database directory (required with --badger)")
	root.Flags().BoolVar(&useBadger, "badger", false, "use a durable badger-backed engine store instead of in-memory")
	root.Flags().BoolVar(&showGraph, "graph", false, "print the registered transition-token dependency graph before validating")

	return root
}

func runValidate(cfg *configOptions, showGraph bool) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("cmvalidate: building logger: %w", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	raw := defaultGenesisYAML
	if cfg.GenesisPath != "" {
		raw, err = os.ReadFile(cfg.GenesisPath)
		if err != nil {
			return fmt.Errorf("cmvalidate: reading genesis file: %w", err)
		}
	}
	atom, err := parseGenesis(raw)
	if err != nil {
		return err
	}

	env := atomos.NewEnv()
	if err := env.Load(registerPayloadScrypt); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	ms := metrics.NewSet(reg)
	env.WithLogger(sugar).WithMetrics(ms)

	machine, err := env.Build()
	if err != nil {
		return fmt.Errorf("cmvalidate: building machine: %w", err)
	}

	if showGraph {
		tg, err := debug.Build(env.RegisteredTokens())
		if err != nil {
			return err
		}
		dump, err := tg.Dump()
		if err != nil {
			return err
		}
		fmt.Fprint(os.Stdout, dump)
	}

	var engineStore store.EngineStore
	if cfg.UseBadger {
		if cfg.StorePath == "" {
			return fmt.Errorf("cmvalidate: --badger requires --store")
		}
		bs, err := badgerstore.Open(cfg.StorePath)
		if err != nil {
			return err
		}
		defer bs.Close()
		engineStore = bs
	} else {
		engineStore = store.NewInMemoryEngineStore()
	}

	runID := uuid.New()
	result, err := machine.Validate(atom, engineStore)
	if err != nil {
		sugar.Errorw("atom rejected", "run", runID, "error", err)
		return err
	}
	if err := engineStore.StoreAtom(atom); err != nil {
		return fmt.Errorf("cmvalidate: committing atom: %w", err)
	}
	ms.StoredAtomsTotal.Inc()

	sugar.Infow("atom accepted", "run", runID, "particles", atom.NumParticles(), "computed", result.Computed)
	return nil
}
