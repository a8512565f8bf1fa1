package schedule

import (
	"studio-booking/logger"
	scheduleService "studio-booking/services/schedule"
	"studio-booking/types"
	"studio-booking/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ScheduleController exposes the advisory MUA conflict check.
type ScheduleController struct {
	DB       *gorm.DB
	Logger   *logger.AsyncLogger
	Detector *scheduleService.Detector
}

func NewScheduleController(db *gorm.DB, asyncLogger *logger.AsyncLogger, detector *scheduleService.Detector) *ScheduleController {
	return &ScheduleController{
		DB:       db,
		Logger:   asyncLogger,
		Detector: detector,
	}
}

// Conflicts returns the MUA overlaps between a booking and the rest of
// its calendar day. Read-only and advisory: it never blocks anything.
func (sc *ScheduleController) Conflicts(c *fiber.Ctx) error {
	bookingID, err := c.ParamsInt("bookingId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid booking id",
		})
	}

	conflicts, err := sc.Detector.ForBooking(uint(bookingID))
	if err != nil {
		status := types.StatusForError(err)
		result := c.Status(status).JSON(types.ApiResponse{Status: status, Message: err.Error()})
		sc.Logger.Log(utils.CreateSanitizedLogEntry(c))
		return result
	}

	result := c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Schedule conflicts computed successfully",
		Data:    conflicts,
	})
	sc.Logger.Log(utils.CreateSanitizedLogEntry(c))
	return result
}
