package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	agentdomain "github.com/nyumbahq/nyumba/internal/agent/domain"
	coopdomain "github.com/nyumbahq/nyumba/internal/cooperative/domain"
	listingdomain "github.com/nyumbahq/nyumba/internal/listing/domain"
	paymentdomain "github.com/nyumbahq/nyumba/internal/payment/domain"
	subdomain "github.com/nyumbahq/nyumba/internal/subscription/domain"
)

func autoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&agentdomain.Agent{},
		&listingdomain.Listing{},
		&subdomain.Subscription{},
		&coopdomain.Cooperative{},
		&coopdomain.Contribution{},
		&paymentdomain.PaymentEvent{},
	)
}

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB) error {
		// The DDL targets postgres; sqlite is a dev convenience and
		// gets its schema from AutoMigrate instead.
		if conn.Dialector.Name() != "postgres" {
			return autoMigrate(conn)
		}
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
