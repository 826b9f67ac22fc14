package scoring

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mind-engage/mindengage-norms/internal/logging"
	"github.com/mind-engage/mindengage-norms/internal/metrics"
	"github.com/mind-engage/mindengage-norms/internal/norms"
	"github.com/mind-engage/mindengage-norms/internal/norms/registry"
	"github.com/mind-engage/mindengage-norms/internal/storage"
)

// LoadStore reads definitions from src and builds the process-wide table
// store. Skipped definitions are logged and counted; only an unreadable
// source is an error.
func LoadStore(ctx context.Context, src registry.Source, bs storage.BlobStore, db *sql.DB) (*norms.TableStore, []norms.LoadWarning, error) {
	defs, err := registry.Load(ctx, src, bs, db)
	if err != nil {
		return nil, nil, fmt.Errorf("norms source %q: %w", src, err)
	}
	store, warnings := norms.Load(defs, norms.WithMergeCache())
	metrics.TableWarnings.Add(float64(len(warnings)))
	metrics.Bands.Set(float64(len(store.Bands())))

	logging.Log.WithFields(logrus.Fields{
		"source":   string(src),
		"bands":    len(store.Bands()),
		"warnings": len(warnings),
	}).Info("norms: tables loaded")
	return store, warnings, nil
}
