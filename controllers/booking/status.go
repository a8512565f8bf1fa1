package booking

import (
	"errors"
	"fmt"
	"time"

	"studio-booking/constants"
	"studio-booking/logger"
	bookingModel "studio-booking/models/booking"
	"studio-booking/services/history"
	"studio-booking/services/transition"
	"studio-booking/types"
	bookingTypes "studio-booking/types/booking"
	"studio-booking/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ChangeStatus drives a booking status transition through the lifecycle
// engine. Role policy, side effects and audit recording all live there;
// this handler only translates HTTP.
func (bc *BookingController) ChangeStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return bc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid booking id",
		})
	}

	var req bookingTypes.ChangeStatusRequest
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

	actor, _, err := bc.currentStaff(c)
	if err != nil {
		status := types.StatusForError(err)
		return bc.sendResponseWithLog(c, status, types.ApiResponse{Status: status, Message: err.Error()})
	}

	var extra *transition.StatusChangeExtra
	if req.PhotoLink != nil {
		extra = &transition.StatusChangeExtra{PhotoLink: req.PhotoLink}
	}

	b, entries, err := bc.Engine.ChangeStatus(uint(id), bookingModel.BookingStatus(req.Status), actor, extra)
	if err != nil {
		status := types.StatusForError(err)
		return bc.sendResponseWithLog(c, status, types.ApiResponse{Status: status, Message: err.Error()})
	}

	if len(entries) > 0 {
		logger.Success(fmt.Sprintf("Booking %s status changed to %s by %s", b.BookingCode, b.Status, actor.ID))
	}

	return bc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Booking status updated successfully",
		Data:    b,
	})
}

// ChangePaymentStatus drives a payment-status change (management only)
// with its coupled status side effects.
func (bc *BookingController) ChangePaymentStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return bc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid booking id",
		})
	}

	var req bookingTypes.ChangePaymentStatusRequest
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

	actor, _, err := bc.currentStaff(c)
	if err != nil {
		status := types.StatusForError(err)
		return bc.sendResponseWithLog(c, status, types.ApiResponse{Status: status, Message: err.Error()})
	}

	b, _, err := bc.Engine.ChangePaymentStatus(uint(id), bookingModel.PaymentStatus(req.PaymentStatus), actor)
	if err != nil {
		status := types.StatusForError(err)
		return bc.sendResponseWithLog(c, status, types.ApiResponse{Status: status, Message: err.Error()})
	}

	return bc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Payment status updated successfully",
		Data:    b,
	})
}

// Reschedule moves a booking to a new slot, refreshes the derived MUA
// window and records a RESCHEDULED audit entry in the same transaction.
func (bc *BookingController) Reschedule(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return bc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid booking id",
		})
	}

	var req bookingTypes.RescheduleRequest
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

	actor, _, err := bc.currentStaff(c)
	if err != nil {
		status := types.StatusForError(err)
		return bc.sendResponseWithLog(c, status, types.ApiResponse{Status: status, Message: err.Error()})
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
	if b.Status.IsCancelled() {
		return bc.sendResponseWithLog(c, fiber.StatusForbidden, types.ApiResponse{
			Status:  fiber.StatusForbidden,
			Message: "Cancelled bookings cannot be rescheduled",
		})
	}

	oldRange := utils.FormatTimeRange(b.StartTime, b.EndTime)
	newRange := utils.FormatTimeRange(startTime, endTime)

	err = bc.DB.Transaction(func(tx *gorm.DB) error {
		b.Date = startTime
		b.StartTime = startTime
		b.EndTime = endTime
		b.SyncMuaStartTime()

		if err := tx.Save(&b).Error; err != nil {
			return err
		}
		return history.Record(tx,
			history.NewEntry(b.ID, bookingModel.ActionRescheduled, "schedule", oldRange, newRange, actor.ID))
	})
	if err != nil {
		logger.Error("Failed to reschedule booking", err)
		return bc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to reschedule booking",
		})
	}

	conflicts, err := bc.Detector.ForBooking(b.ID)
	if err != nil {
		logger.Error("Failed to compute schedule conflicts after reschedule", err)
	}

	return bc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Booking rescheduled successfully",
		Data: fiber.Map{
			"booking":   b,
			"conflicts": conflicts,
		},
	})
}

// Destroy soft-deletes a cancelled booking. Deletion is the only escape
// once a booking is cancelled and it is reserved for the owner.
func (bc *BookingController) Destroy(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return bc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid booking id",
		})
	}

	actor, _, err := bc.currentStaff(c)
	if err != nil {
		status := types.StatusForError(err)
		return bc.sendResponseWithLog(c, status, types.ApiResponse{Status: status, Message: err.Error()})
	}
	if actor.Role != constants.RoleOwner {
		return bc.sendResponseWithLog(c, fiber.StatusForbidden, types.ApiResponse{
			Status:  fiber.StatusForbidden,
			Message: "Only the owner may delete bookings",
		})
	}

	var b bookingModel.Booking
	if err := bc.DB.Scopes(bookingModel.NotDeleted).First(&b, id).Error; err != nil {
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
	if !b.Status.IsCancelled() {
		return bc.sendResponseWithLog(c, fiber.StatusForbidden, types.ApiResponse{
			Status:  fiber.StatusForbidden,
			Message: "Only cancelled bookings can be deleted",
		})
	}

	now := time.Now()
	b.DeletedAt = &now
	if err := bc.DB.Save(&b).Error; err != nil {
		logger.Error("Failed to delete booking", err)
		return bc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to delete booking",
		})
	}

	logger.Success(fmt.Sprintf("Booking %s deleted by owner %s", b.BookingCode, actor.ID))

	return bc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Booking deleted successfully",
	})
}
