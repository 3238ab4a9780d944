package cli

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/eleven-am/taskboard/internal/database"
	"github.com/eleven-am/taskboard/internal/logger"
	"github.com/eleven-am/taskboard/internal/metrics"
	"github.com/eleven-am/taskboard/internal/models"
	"github.com/eleven-am/taskboard/pkg/orm"
)

func connect(ctx context.Context) (*sqlx.DB, error) {
	dbCfg := database.NewConfig(cfg.Database.URL)
	dbCfg.MaxOpenConns = cfg.Database.MaxOpenConns
	dbCfg.MaxIdleConns = cfg.Database.MaxIdleConns
	dbCfg.ConnMaxLifetime = cfg.Database.ConnMaxLifetime
	return dbCfg.Connect(ctx)
}

// openStorm connects and binds the model repositories with statement
// logging and metrics.
func openStorm(ctx context.Context) (*sqlx.DB, *models.Storm, error) {
	db, err := connect(ctx)
	if err != nil {
		return nil, nil, err
	}

	storm, err := models.NewStorm(db,
		orm.LoggingMiddleware(logger.ORM().Debug, logger.ORM().Error),
		orm.MetricsMiddleware(metrics.Collector{}),
	)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	return db, storm, nil
}
