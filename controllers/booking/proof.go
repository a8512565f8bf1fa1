package booking

import (
	"errors"
	"fmt"
	"io"
	"time"

	"studio-booking/logger"
	bookingModel "studio-booking/models/booking"
	"studio-booking/services/history"
	"studio-booking/services/proofparser"
	"studio-booking/types"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// UploadPaymentProof records a payment-proof upload on the booking and
// optionally extracts the transfer details from the image with the Gemini
// parser. The audit entry is the correctness-bearing part; extraction is
// advisory and its failure never fails the upload.
func (bc *BookingController) UploadPaymentProof(c *fiber.Ctx) error {
	startTime := time.Now()

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
	if b.Status.IsCancelled() {
		return bc.sendResponseWithLog(c, fiber.StatusForbidden, types.ApiResponse{
			Status:  fiber.StatusForbidden,
			Message: "Cancelled bookings cannot be updated",
		})
	}

	// The proof reference (a URL or filename from the upload layer) is
	// what gets stored; the image itself is only used for extraction.
	proofRef := c.FormValue("proof_url")

	var parsed *proofparser.ProofParseResult
	if file, err := c.FormFile("image"); err == nil {
		mimeType := file.Header.Get("Content-Type")
		if !proofparser.IsValidImageType(mimeType) {
			return bc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
				Status:  fiber.StatusBadRequest,
				Message: "Invalid file type. Only JPEG, JPG, PNG, and WebP files are allowed",
			})
		}

		if proofRef == "" {
			proofRef = file.Filename
		}

		src, err := file.Open()
		if err == nil {
			fileBytes, readErr := io.ReadAll(src)
			src.Close()
			if readErr == nil {
				parsed, err = proofparser.NewService().ParseProof(c.Context(), fileBytes, mimeType)
				if err != nil {
					logger.Error(fmt.Sprintf("Payment proof extraction failed for booking %s", b.BookingCode), err)
					parsed = nil
				}
			}
		}
	}

	if proofRef == "" {
		return bc.sendResponseWithLog(c, fiber.StatusUnprocessableEntity, types.ApiResponse{
			Status:  fiber.StatusUnprocessableEntity,
			Message: "Either an image file or proof_url is required",
		})
	}

	oldProof := ""
	if b.PaymentProof != nil {
		oldProof = *b.PaymentProof
	}

	err = bc.DB.Transaction(func(tx *gorm.DB) error {
		b.PaymentProof = &proofRef
		if err := tx.Save(&b).Error; err != nil {
			return err
		}
		return history.Record(tx,
			history.NewEntry(b.ID, bookingModel.ActionPaymentProofUploaded, "payment_proof", oldProof, proofRef, actor.ID))
	})
	if err != nil {
		logger.Error("Failed to record payment proof", err)
		return bc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to record payment proof",
		})
	}

	logger.Success(fmt.Sprintf("Payment proof recorded for booking %s in %dms",
		b.BookingCode, time.Since(startTime).Milliseconds()))

	return bc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Payment proof recorded successfully",
		Data: fiber.Map{
			"booking":   b,
			"extracted": parsed,
		},
	})
}
