package booking

import (
	"errors"
	"fmt"

	"studio-booking/constants"
	"studio-booking/database"
	"studio-booking/logger"
	"studio-booking/middleware"
	bookingModel "studio-booking/models/booking"
	userModel "studio-booking/models/user"
	"studio-booking/services/schedule"
	"studio-booking/services/transition"
	"studio-booking/types"
	bookingTypes "studio-booking/types/booking"
	"studio-booking/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// BookingController handles booking-related HTTP requests
type BookingController struct {
	DB       *gorm.DB
	Logger   *logger.AsyncLogger
	Engine   *transition.Engine
	Detector *schedule.Detector
}

// NewBookingController creates a new booking controller
func NewBookingController(db *gorm.DB, asyncLogger *logger.AsyncLogger, engine *transition.Engine, detector *schedule.Detector) *BookingController {
	return &BookingController{
		DB:       db,
		Logger:   asyncLogger,
		Engine:   engine,
		Detector: detector,
	}
}

// Helper function to log API requests and responses
func (bc *BookingController) logAPIRequest(c *fiber.Ctx) {
	logEntry := utils.CreateSanitizedLogEntry(c)
	bc.Logger.Log(logEntry)
}

// Helper function to send response and log in one call
func (bc *BookingController) sendResponseWithLog(c *fiber.Ctx, status int, response types.ApiResponse) error {
	result := c.Status(status).JSON(response)
	bc.logAPIRequest(c)
	return result
}

// currentStaff resolves the authenticated actor and its local user row.
func (bc *BookingController) currentStaff(c *fiber.Ctx) (types.Actor, *userModel.User, error) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return types.Actor{}, nil, types.ErrUnauthorized
	}

	var u userModel.User
	if err := bc.DB.Where("uuid = ?", actor.ID).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return actor, nil, fmt.Errorf("user not found: %w", types.ErrUnauthorized)
		}
		return actor, nil, err
	}
	if !u.Active {
		return actor, nil, fmt.Errorf("account inactive: %w", types.ErrForbidden)
	}
	return actor, &u, nil
}

// Store creates a new booking with its add-ons. The booking code is
// reserved from the per-day sequence inside the same transaction as the
// insert.
func (bc *BookingController) Store(c *fiber.Ctx) error {
	var req bookingTypes.BookingCreateRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return bc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return bc.sendResponseWithLog(c, fiber.StatusUnprocessableEntity, types.ApiResponse{
			Status:  fiber.StatusUnprocessableEntity,
			Message: err.Error(),
		})
	}

	actor, staff, err := bc.currentStaff(c)
	if err != nil {
		status := types.StatusForError(err)
		return bc.sendResponseWithLog(c, status, types.ApiResponse{
			Status:  status,
			Message: err.Error(),
		})
	}
	if !constants.IsManagementRole(actor.Role) {
		return bc.sendResponseWithLog(c, fiber.StatusForbidden, types.ApiResponse{
			Status:  fiber.StatusForbidden,
			Message: "Insufficient permissions",
		})
	}

	startTime, err := utils.CombineDateTime(req.Date, req.StartTime)
	if err != nil {
		return bc.sendResponseWithLog(c, fiber.StatusUnprocessableEntity, types.ApiResponse{
			Status:  fiber.StatusUnprocessableEntity,
			Message: err.Error(),
		})
	}
	endTime, err := utils.CombineDateTime(req.Date, req.EndTime)
	if err != nil {
		return bc.sendResponseWithLog(c, fiber.StatusUnprocessableEntity, types.ApiResponse{
			Status:  fiber.StatusUnprocessableEntity,
			Message: err.Error(),
		})
	}
	if !startTime.Before(endTime) {
		return bc.sendResponseWithLog(c, fiber.StatusUnprocessableEntity, types.ApiResponse{
			Status:  fiber.StatusUnprocessableEntity,
			Message: "end_time must be after start_time",
		})
	}

	var newBooking bookingModel.Booking
	paymentStatus, paidAt := bc.Engine.DefaultPaymentState()

	// Use DB.Transaction for automatic rollback on error
	err = bc.DB.Transaction(func(tx *gorm.DB) error {
		code, err := database.NextBookingCode(tx, startTime)
		if err != nil {
			return err
		}

		newBooking = bookingModel.Booking{
			BookingCode:    code,
			PublicSlug:     utils.NewPublicSlug(),
			CustomerName:   req.CustomerName,
			CustomerPhone:  req.CustomerPhone,
			PackageName:    req.PackageName,
			Date:           startTime,
			StartTime:      startTime,
			EndTime:        endTime,
			PackagePrice:   req.PackagePrice,
			DiscountAmount: req.DiscountAmount,
			Status:         bookingModel.StatusBooked,
			PaymentStatus:  paymentStatus,
			PaidAt:         paidAt,
			CreatedByID:    staff.ID,
		}
		if req.Notes != "" {
			newBooking.Notes = &req.Notes
		}

		for _, a := range req.AddOns {
			newBooking.AddOns = append(newBooking.AddOns, bookingModel.AddOn{
				ItemName:      a.ItemName,
				Quantity:      a.Quantity,
				UnitPrice:     a.UnitPrice,
				Subtotal:      int64(a.Quantity) * a.UnitPrice,
				PaymentStatus: bookingModel.PaymentUnpaid,
			})
		}
		newBooking.RecalculateTotal()
		newBooking.SyncMuaStartTime()

		if err := tx.Create(&newBooking).Error; err != nil {
			logger.Error("Failed to create booking", err)
			return err
		}
		return nil
	})

	if err != nil {
		return bc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to save booking",
		})
	}

	logger.Success(fmt.Sprintf("Booking %s created successfully with ID: %d", newBooking.BookingCode, newBooking.ID))

	// Advisory only: report MUA conflicts for the new slot without
	// blocking creation.
	conflicts, err := bc.Detector.ForBooking(newBooking.ID)
	if err != nil {
		logger.Error("Failed to compute schedule conflicts for new booking", err)
		conflicts = &schedule.Conflicts{}
	}

	return bc.sendResponseWithLog(c, fiber.StatusCreated, types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Booking created successfully",
		Data: fiber.Map{
			"booking":   newBooking,
			"conflicts": conflicts,
		},
	})
}

// Index lists bookings with pagination and filtering.
func (bc *BookingController) Index(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)
	offset := (page - 1) * limit

	code := c.Query("booking_code")
	date := c.Query("date")
	status := c.Query("status")

	query := bc.DB.Model(&bookingModel.Booking{}).Scopes(bookingModel.NotDeleted)

	if code != "" {
		query = query.Where("booking_code LIKE ?", "%"+code+"%")
	}
	if date != "" {
		query = query.Where("date = ?", date)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return bc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to count bookings",
		})
	}

	var bookings []bookingModel.Booking
	if err := query.Preload("AddOns").Offset(offset).Limit(limit).Order("start_time asc").Find(&bookings).Error; err != nil {
		return bc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to retrieve bookings",
		})
	}

	return bc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Bookings retrieved successfully",
		Data: fiber.Map{
			"data":      bookings,
			"total":     total,
			"page":      page,
			"limit":     limit,
			"last_page": (total + int64(limit) - 1) / int64(limit),
		},
	})
}

// Show returns one booking with its add-ons and audit trail.
func (bc *BookingController) Show(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return bc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid booking id",
		})
	}

	var b bookingModel.Booking
	if err := bc.DB.Scopes(bookingModel.NotDeleted).Preload("AddOns").First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return bc.sendResponseWithLog(c, fiber.StatusNotFound, types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Booking not found",
			})
		}
		logger.Error("Failed to find booking", err)
		return bc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Internal server error",
		})
	}

	var entries []bookingModel.BookingHistory
	if err := bc.DB.Where("booking_id = ?", b.ID).Order("id asc").Find(&entries).Error; err != nil {
		logger.Error("Failed to load booking history", err)
	}

	return bc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Booking retrieved successfully",
		Data: fiber.Map{
			"booking": b,
			"history": entries,
		},
	})
}

// ShowBySlug is the unauthenticated status lookup by public slug. It
// exposes only the customer-facing subset of the booking.
func (bc *BookingController) ShowBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")

	var b bookingModel.Booking
	if err := bc.DB.Scopes(bookingModel.NotDeleted).Preload("AddOns").Where("public_slug = ?", slug).First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Booking not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Internal server error",
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Booking status retrieved successfully",
		Data: fiber.Map{
			"booking_code":   b.BookingCode,
			"customer_name":  b.CustomerName,
			"package_name":   b.PackageName,
			"date":           b.Date,
			"start_time":     b.StartTime,
			"end_time":       b.EndTime,
			"status":         b.Status,
			"payment_status": b.PaymentStatus,
			"photo_link":     b.PhotoLink,
			"total_amount":   b.TotalAmount,
		},
	})
}
