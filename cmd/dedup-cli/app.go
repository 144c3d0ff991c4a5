package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"provider-matching-workers/internal/bootstrap"
	"provider-matching-workers/internal/common/config"
	"provider-matching-workers/internal/common/logger"
	"provider-matching-workers/internal/models"
)

// app is the store-backed state shared by the data commands.
type app struct {
	cfg     *config.Config
	log     logger.Logger
	stores  *bootstrap.Stores
	engines *bootstrap.Engines
}

func loadConfig() (*config.Config, error) {
	if args.configPath != "" {
		return config.LoadFromFile(args.configPath)
	}
	return config.Load()
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log := logger.NewZapAdapter(logger.NewWithOutput(args.logLevel, "console", "stderr"))

	stores, err := bootstrap.OpenStores(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	engines, err := bootstrap.NewEngines(cfg, stores.Store, log)
	if err != nil {
		stores.Close()
		return nil, err
	}
	return &app{cfg: cfg, log: log, stores: stores, engines: engines}, nil
}

func (a *app) Close() {
	a.stores.Close()
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readProviders decodes a provider or an array of providers from path, or
// from stdin when path is "-".
func readProviders(path string, stdin io.Reader) ([]models.ProviderProfile, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read providers: %w", err)
	}

	var many []models.ProviderProfile
	if err := json.Unmarshal(data, &many); err == nil {
		return many, nil
	}
	var one models.ProviderProfile
	if err := json.Unmarshal(data, &one); err != nil {
		return nil, fmt.Errorf("parse providers: %w", err)
	}
	return []models.ProviderProfile{one}, nil
}
