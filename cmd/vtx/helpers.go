package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/DefoxxAnalytics/versatex-analytics/internal/api"
	"github.com/DefoxxAnalytics/versatex-analytics/internal/config"
	"github.com/DefoxxAnalytics/versatex-analytics/internal/storage"
)

// initStorage opens the local database with migrations applied.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initPresetStore opens the local preset store backed by SQLite.
func initPresetStore(ctx context.Context) (*storage.PresetStore, func() error, error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, nil, err
	}
	return storage.NewPresetStore(store), store.Close, nil
}

// initClient builds the backend API client from configuration.
func initClient() (*api.Client, error) {
	baseURL := viper.GetString("api.base_url")
	if baseURL == "" {
		return nil, fmt.Errorf("api.base_url is not configured (set VTX_API_BASE_URL or api.base_url in config)")
	}

	timeout := viper.GetDuration("api.timeout")
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return api.NewClient(api.Config{
		BaseURL: baseURL,
		APIKey:  viper.GetString("api.key"),
		Timeout: timeout,
	})
}
