package routes

import (
	"os"

	bookingController "studio-booking/controllers/booking"
	printOrderController "studio-booking/controllers/printorder"
	scheduleController "studio-booking/controllers/schedule"
	"studio-booking/logger"
	"studio-booking/middleware"
	bookingModel "studio-booking/models/booking"
	printOrderService "studio-booking/services/printorder"
	scheduleService "studio-booking/services/schedule"
	"studio-booking/services/transition"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	asyncLogger := logger.NewAsyncLogger(db)

	engine := transition.NewEngine(
		transition.NewGormBookingRepository(db),
		nil,
		transition.Config{
			DefaultPaymentStatus: bookingModel.PaymentStatus(os.Getenv("DEFAULT_PAYMENT_STATUS")),
		},
	)
	workflow := printOrderService.NewWorkflow(printOrderService.NewGormRepository(db), nil)
	detector := scheduleService.NewDetector(db)

	bookings := bookingController.NewBookingController(db, asyncLogger, engine, detector)
	printOrders := printOrderController.NewPrintOrderController(db, asyncLogger, workflow)
	schedules := scheduleController.NewScheduleController(db, asyncLogger, detector)

	// Start the async logger processing goroutine
	go asyncLogger.ProcessLog()

	/*=============================================================================
	| Public Routes
	===============================================================================*/
	api := app.Group("/api")
	api.Get("/status/:slug", bookings.ShowBySlug)

	/*=============================================================================
	| Booking Routes
	===============================================================================*/
	bookingGroup := api.Group("/bookings").Use(middleware.RequireAuthentication())

	bookingGroup.Post("/", bookings.Store)
	bookingGroup.Get("/", bookings.Index)
	bookingGroup.Get("/:id", bookings.Show)
	bookingGroup.Patch("/:id/status", bookings.ChangeStatus)
	bookingGroup.Patch("/:id/payment-status", bookings.ChangePaymentStatus)
	bookingGroup.Patch("/:id/reschedule", bookings.Reschedule)
	bookingGroup.Post("/:id/payment-proof", bookings.UploadPaymentProof)
	bookingGroup.Delete("/:id", bookings.Destroy)

	/*=============================================================================
	| Print Order Routes
	===============================================================================*/
	printGroup := api.Group("/print-orders").Use(middleware.RequireAuthentication())

	printGroup.Post("/", printOrders.Store)
	printGroup.Get("/:bookingId", printOrders.Show)
	printGroup.Patch("/:bookingId", printOrders.Update)

	/*=============================================================================
	| Schedule Routes
	===============================================================================*/
	scheduleGroup := api.Group("/schedule").Use(middleware.RequireAuthentication())

	scheduleGroup.Get("/conflicts/:bookingId", schedules.Conflicts)
}
