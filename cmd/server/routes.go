package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"vastra-system/config"
	"vastra-system/internal/gateway/handlers"
	"vastra-system/internal/gateway/middleware"
	catalog "vastra-system/internal/services/catalog/handler"
	credit "vastra-system/internal/services/credit/handler"
	inventory "vastra-system/internal/services/inventory/handler"
	orders "vastra-system/internal/services/orders/handler"
	reservation "vastra-system/internal/services/reservation/handler"
	sales "vastra-system/internal/services/sales/handler"
	staff "vastra-system/internal/services/staff/handler"
	store "vastra-system/internal/services/store/handler"
)

type serviceRegistry struct {
	store       *store.StoreHandler
	catalog     *catalog.CatalogHandler
	inventory   *inventory.InventoryHandler
	credit      *credit.CreditHandler
	reservation *reservation.ReservationHandler
	sales       *sales.SalesHandler
	staff       *staff.StaffHandler
	orders      *orders.OrdersHandler
}

func buildRouter(cfg config.Config, db *gorm.DB, services serviceRegistry) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.RateLimit("300-M"))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	storeHandler := handlers.NewStoreHTTPHandler(services.store)
	catalogHandler := handlers.NewCatalogHTTPHandler(services.catalog)
	posHandler := handlers.NewPOSHTTPHandler(services.sales, services.credit, services.inventory)
	reservationHandler := handlers.NewReservationHTTPHandler(services.reservation)
	staffHandler := handlers.NewStaffHTTPHandler(services.staff)
	ordersHandler := handlers.NewOrdersHTTPHandler(services.orders)

	// --- Public API Group ---
	public := r.Group("/api/v1")
	{
		public.GET("/stores", storeHandler.ListStores)
		public.GET("/stores/:id", storeHandler.GetPublicStore)
		public.GET("/stores/:id/products", catalogHandler.ListStoreProducts)
		public.GET("/stores/:id/offers", catalogHandler.ListActiveOffers)
		public.GET("/products/:id", catalogHandler.GetProduct)
		public.GET("/products", catalogHandler.SearchProducts)
		public.GET("/advertisements", catalogHandler.ListAdvertisements)
	}

	// --- Customer API Group ---
	customer := r.Group("/api/v1")
	customer.Use(middleware.JWTAuth(cfg.Server.JWTSecret))
	{
		customer.GET("/me", storeHandler.Me)
		customer.POST("/me/store", storeHandler.SwitchToStore)

		reservations := customer.Group("/reservations")
		{
			reservations.POST("", reservationHandler.CreateReservation)
			reservations.GET("", reservationHandler.ListMyReservations)
			reservations.GET("/:id", reservationHandler.GetReservation)
			reservations.POST("/:id/cancel", reservationHandler.CancelReservation)
		}

		orderRoutes := customer.Group("/orders")
		{
			orderRoutes.POST("", ordersHandler.CreateOrder)
			orderRoutes.GET("", ordersHandler.ListMyOrders)
			orderRoutes.POST("/:id/cancel", ordersHandler.CancelMyOrder)
		}
	}

	// --- Store Owner API Group ---
	owner := r.Group("/api/v1/owner")
	owner.Use(middleware.JWTAuth(cfg.Server.JWTSecret))
	owner.Use(middleware.StoreOwner(db))
	{
		owner.GET("/store", storeHandler.MyStore)
		owner.PUT("/store", storeHandler.UpdateStore)

		products := owner.Group("/products")
		{
			products.POST("", catalogHandler.CreateProduct)
			products.GET("", catalogHandler.ListMyProducts)
			products.PUT("/:id", catalogHandler.UpdateProduct)
			products.DELETE("/:id", catalogHandler.DeleteProduct)
			products.GET("/:id/stock", posHandler.CheckStock)
		}

		owner.POST("/offers", catalogHandler.CreateOffer)

		salesRoutes := owner.Group("/sales")
		{
			salesRoutes.POST("", posHandler.CreateSale)
			salesRoutes.GET("", posHandler.ListSales)
			salesRoutes.GET("/:id", posHandler.GetSale)
		}

		owner.POST("/reservation-sales", posHandler.CreateReservationSale)
		owner.POST("/returns", posHandler.ProcessReturn)
		owner.POST("/stock/deduct", posHandler.DeductStock)

		creditRoutes := owner.Group("/credit")
		{
			creditRoutes.POST("/settle", posHandler.SettleCredit)
			creditRoutes.GET("/outstanding", posHandler.OutstandingCredit)
		}
		owner.GET("/customers/:phone", posHandler.LookupCustomer)

		reservationRoutes := owner.Group("/reservations")
		{
			reservationRoutes.GET("", reservationHandler.ListStoreReservations)
			reservationRoutes.POST("/:id/verify", reservationHandler.VerifyCode)
			reservationRoutes.POST("/:id/cancel", reservationHandler.CancelReservation)
		}

		staffRoutes := owner.Group("/staff")
		{
			staffRoutes.POST("", staffHandler.CreateStaff)
			staffRoutes.GET("", staffHandler.ListStaff)
			staffRoutes.PUT("/:id", staffHandler.UpdateStaff)
			staffRoutes.DELETE("/:id", staffHandler.DeleteStaff)
			staffRoutes.GET("/:id/attendance", staffHandler.MonthAttendance)
			staffRoutes.GET("/:id/salary", staffHandler.MonthlySalarySummary)
			staffRoutes.POST("/:id/salary/checkout", staffHandler.CheckoutSalary)
		}
		owner.POST("/attendance", staffHandler.MarkAttendance)
		owner.GET("/salaries", staffHandler.ListSalaryRecords)

		ownerOrders := owner.Group("/orders")
		{
			ownerOrders.GET("", ordersHandler.ListStoreOrders)
			ownerOrders.PUT("/:id/status", ordersHandler.UpdateStatus)
		}
	}

	return r
}
