package main

import (
	"fmt"

	"github.com/spf13/viper"
)

type (
	configOptions struct {
		GenesisPath string
		StorePath   string
		UseBadger   bool
	}

	configOption func(*configOptions)
)

func defaultConfigOptions() *configOptions {
	return &configOptions{
		GenesisPath: "",
		StorePath:   "",
		UseBadger:   false,
	}
}

func withGenesisPath(path string) configOption {
	return func(o *configOptions) { o.GenesisPath = path }
}

func withStorePath(path string) configOption {
	return func(o *configOptions) { o.StorePath = path }
}

func withBadger(enable bool) configOption {
	return func(o *configOptions) { o.UseBadger = enable }
}

func newConfigOptions(opts ...configOption) *configOptions {
	cfg := defaultConfigOptions()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// loadConfigFile reads the "cmvalidate" section of a viper config file, if
// one was supplied. The root command applies the returned options after its
// flag options, so a key set in the file overrides the matching flag.
func loadConfigFile(v *viper.Viper, configFile string) ([]configOption, error) {
	if configFile == "" {
		return nil, nil
	}
	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("cmvalidate: reading config %s: %w", configFile, err)
	}
	sub := v.Sub("cmvalidate")
	if sub == nil {
		return nil, nil
	}
	var opts []configOption
	if p := sub.GetString("genesis"); p != "" {
		opts = append(opts, withGenesisPath(p))
	}
	if p := sub.GetString("store"); p != "" {
		opts = append(opts, withStorePath(p))
	}
	if sub.IsSet("badger") {
		opts = append(opts, withBadger(sub.GetBool("badger")))
	}
	return opts, nil
}
