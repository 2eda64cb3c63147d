package main

import (
	"vastra-system/config"
	"vastra-system/internal/database"
	catalog "vastra-system/internal/services/catalog/handler"
	credit "vastra-system/internal/services/credit/handler"
	inventory "vastra-system/internal/services/inventory/handler"
	orders "vastra-system/internal/services/orders/handler"
	reservation "vastra-system/internal/services/reservation/handler"
	sales "vastra-system/internal/services/sales/handler"
	staff "vastra-system/internal/services/staff/handler"
	store "vastra-system/internal/services/store/handler"
)

func main() {
	cfg := config.LoadConfig()
	config.ConfigureLogger(cfg.Server.Environment)
	logger := config.GetLogger()

	db, err := database.NewConnection(cfg.DB.DSN)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logger.WithError(err).Fatal("failed to run migrations")
	}

	redisClient := config.NewRedisClient(cfg.Redis)

	services := serviceRegistry{
		store:       store.NewStoreHandler(db, redisClient),
		catalog:     catalog.NewCatalogHandler(db, redisClient),
		inventory:   inventory.NewInventoryHandler(db, redisClient),
		credit:      credit.NewCreditHandler(db),
		reservation: reservation.NewReservationHandler(db, redisClient),
		sales:       sales.NewSalesHandler(db, redisClient),
		staff:       staff.NewStaffHandler(db),
		orders:      orders.NewOrdersHandler(db, redisClient),
	}

	router := buildRouter(cfg, db, services)

	logger.WithField("port", cfg.Server.Port).Info("starting server")
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.WithError(err).Fatal("server exited")
	}
}
