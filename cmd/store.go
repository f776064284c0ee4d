package cmd

import (
	"context"
	"fmt"

	"github.com/gameshelf/gameshelf/internal/utils"
	"github.com/gameshelf/gameshelf/pkg/catalog"
	"github.com/gameshelf/gameshelf/pkg/steam"
	"github.com/gameshelf/gameshelf/pkg/storage"
	"github.com/spf13/viper"
)

// openDB opens the configured database. When write is set the database
// lock is held until the returned release func runs.
func openDB(write bool) (*storage.DB, func(), error) {
	absPath, err := utils.GetAbsDBPath(viper.GetString("db.path"))
	if err != nil {
		return nil, nil, err
	}
	if err := utils.EnsureDBDir(absPath); err != nil {
		return nil, nil, fmt.Errorf("could not create database directory: %w", err)
	}

	var lock *utils.WriterLock
	if write {
		if lock, err = utils.NewWriterLock(absPath); err != nil {
			return nil, nil, err
		}
		if err := lock.Acquire(); err != nil {
			return nil, nil, err
		}
	}

	db, err := storage.Open(absPath)
	if err != nil {
		if lock != nil {
			_ = lock.Release()
		}
		return nil, nil, fmt.Errorf("opening %s: %w", absPath, err)
	}
	utils.Log.Debugf("Using database %s", absPath)

	release := func() {
		_ = db.Close()
		if lock != nil {
			if err := lock.Release(); err != nil {
				utils.Log.Warn(err)
			}
		}
	}
	return db, release, nil
}

type catalogSource interface {
	CatalogEntries(ctx context.Context) ([]catalog.Entry, error)
}

// loadIndex reads the stored catalog once into an in-memory index.
func loadIndex(ctx context.Context, db catalogSource) (*catalog.Index, error) {
	entries, err := db.CatalogEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	if len(entries) == 0 {
		utils.Log.Warn("The catalog is empty, run 'gameshelf catalog sync' first")
	}
	return catalog.NewIndex(entries, indexOptions()...), nil
}

func newSteamClient() (*steam.Client, error) {
	return steam.NewClient(steam.Config{
		AppListURL:    viper.GetString("steam.applist_url"),
		AppDetailsURL: viper.GetString("steam.appdetails_url"),
		Proxy:         viper.GetString("steam.proxy"),
		RetryMax:      viper.GetInt("steam.retry_max"),
		Log:           utils.Log,
	})
}
