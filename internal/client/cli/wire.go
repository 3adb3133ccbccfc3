package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/mycloud/internal/client/client"
	"github.com/dmitrijs2005/mycloud/internal/client/config"
	"github.com/dmitrijs2005/mycloud/internal/client/repositories/state"
	"github.com/dmitrijs2005/mycloud/internal/client/services"
	"github.com/dmitrijs2005/mycloud/internal/client/session"
	"github.com/dmitrijs2005/mycloud/internal/client/transfer"
	"github.com/dmitrijs2005/mycloud/internal/logging"
)

// Build wires an App from configuration: the SQLite session database, the
// HTTP transport and the services. The returned func closes the database.
func Build(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	logger := logging.New(os.Stderr, cfg.LogLevel)

	db, err := state.OpenDatabase(ctx, cfg.StateDBPath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "path", cfg.StateDBPath, "error", err)
		return nil, nil, err
	}
	cleanup := func() {
		if err := db.Close(); err != nil {
			logger.Warn(ctx, "close database", "error", err)
		}
	}

	api, err := client.NewHTTPClient(cfg.ServerURL, cfg.RequestTimeout, logger)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("http client: %w", err)
	}

	store := session.NewStore(state.NewSQLiteRepository(db), logger)

	app := NewApp(Deps{
		Auth:        services.NewAuthService(api, store, logger, cfg.LogoutTimeout),
		Files:       services.NewFileService(api, store, cfg.PublicOrigin, logger),
		Admin:       services.NewAdminService(api, store, cfg.PublicOrigin, logger),
		View:        store,
		Viewer:      transfer.NewViewer("", logger),
		DownloadDir: cfg.DownloadDir,
		Logger:      logger,
	})
	return app, cleanup, nil
}
