package migration

import (
	"strings"

	"github.com/franqia/console/internal/config"
	franchisordomain "github.com/franqia/console/internal/franchisor/domain"
	lifecycledomain "github.com/franqia/console/internal/lifecycle/domain"
	schooldomain "github.com/franqia/console/internal/school/domain"
	"github.com/franqia/console/internal/seed"
	subscriptiondomain "github.com/franqia/console/internal/subscription/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if strings.EqualFold(cfg.DBType, "postgres") {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// mysql and sqlite deployments get the gorm-derived schema;
			// versioned SQL is maintained for postgres only.
			if err := conn.AutoMigrate(
				&franchisordomain.Franchisor{},
				&schooldomain.School{},
				&schooldomain.FinancialSnapshot{},
				&subscriptiondomain.Subscription{},
				&lifecycledomain.StatusHistoryRecord{},
			); err != nil {
				return err
			}
		}

		if cfg.SeedDemoNetwork && !cfg.IsProduction() {
			return seed.EnsureDemoNetwork(conn)
		}
		return nil
	}),
)
