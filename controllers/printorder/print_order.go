package printorder

import (
	"fmt"

	"studio-booking/logger"
	"studio-booking/middleware"
	printModel "studio-booking/models/printorder"
	printService "studio-booking/services/printorder"
	"studio-booking/types"
	printTypes "studio-booking/types/printorder"
	"studio-booking/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// PrintOrderController handles print-order related HTTP requests
type PrintOrderController struct {
	DB       *gorm.DB
	Logger   *logger.AsyncLogger
	Workflow *printService.Workflow
}

// NewPrintOrderController creates a new print order controller
func NewPrintOrderController(db *gorm.DB, asyncLogger *logger.AsyncLogger, workflow *printService.Workflow) *PrintOrderController {
	return &PrintOrderController{
		DB:       db,
		Logger:   asyncLogger,
		Workflow: workflow,
	}
}

func (pc *PrintOrderController) sendResponseWithLog(c *fiber.Ctx, status int, response types.ApiResponse) error {
	result := c.Status(status).JSON(response)
	pc.Logger.Log(utils.CreateSanitizedLogEntry(c))
	return result
}

// Store creates the single print order for a booking. A duplicate is a
// Conflict.
func (pc *PrintOrderController) Store(c *fiber.Ctx) error {
	var req printTypes.CreatePrintOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return pc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return pc.sendResponseWithLog(c, fiber.StatusUnprocessableEntity, types.ApiResponse{
			Status:  fiber.StatusUnprocessableEntity,
			Message: err.Error(),
		})
	}

	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return pc.sendResponseWithLog(c, fiber.StatusUnauthorized, types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "Invalid user claims",
		})
	}

	po, err := pc.Workflow.Create(req.BookingID, actor)
	if err != nil {
		status := types.StatusForError(err)
		return pc.sendResponseWithLog(c, status, types.ApiResponse{Status: status, Message: err.Error()})
	}

	logger.Success(fmt.Sprintf("Print order created for booking %d", req.BookingID))

	return pc.sendResponseWithLog(c, fiber.StatusCreated, types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Print order created successfully",
		Data:    po,
	})
}

// Show returns the print order of a booking.
func (pc *PrintOrderController) Show(c *fiber.Ctx) error {
	bookingID, err := c.ParamsInt("bookingId")
	if err != nil {
		return pc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid booking id",
		})
	}

	po, err := pc.Workflow.Get(uint(bookingID))
	if err != nil {
		status := types.StatusForError(err)
		return pc.sendResponseWithLog(c, status, types.ApiResponse{Status: status, Message: err.Error()})
	}

	return pc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Print order retrieved successfully",
		Data:    po,
	})
}

// Update advances the print order status and/or edits its side fields. A
// status move must follow the linear order; side fields may change
// independently and record their own audit entries.
func (pc *PrintOrderController) Update(c *fiber.Ctx) error {
	bookingID, err := c.ParamsInt("bookingId")
	if err != nil {
		return pc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid booking id",
		})
	}

	var req printTypes.UpdatePrintOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return pc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return pc.sendResponseWithLog(c, fiber.StatusUnauthorized, types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "Invalid user claims",
		})
	}

	updates := printService.FieldUpdates{
		SelectedPhotos:  req.SelectedPhotos,
		VendorName:      req.VendorName,
		VendorNotes:     req.VendorNotes,
		ShippingAddress: req.ShippingAddress,
		Courier:         req.Courier,
		TrackingNumber:  req.TrackingNumber,
	}

	// Fields and status move commit together: a rejected status change
	// must not leave the field edits behind.
	var target *printModel.PrintOrderStatus
	if req.Status != nil {
		s := printModel.PrintOrderStatus(*req.Status)
		target = &s
	}

	po, err := pc.Workflow.Apply(uint(bookingID), updates, target, actor)
	if err != nil {
		status := types.StatusForError(err)
		return pc.sendResponseWithLog(c, status, types.ApiResponse{Status: status, Message: err.Error()})
	}

	return pc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Print order updated successfully",
		Data:    po,
	})
}
