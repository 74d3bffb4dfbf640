package seed

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nyumbahq/nyumba/internal/config"
)

var Module = fx.Module("seed",
	fx.Invoke(run),
)

// run only seeds outside production.
func run(cfg config.Config, db *gorm.DB, log *zap.Logger) error {
	if cfg.Environment == "production" {
		return nil
	}
	if err := EnsureDemoData(db); err != nil {
		return err
	}
	log.Info("demo data ensured")
	return nil
}
