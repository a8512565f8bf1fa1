package utils

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"studio-booking/types"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// NewPublicSlug generates the opaque token used for unauthenticated
// booking status lookup.
func NewPublicSlug() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// CombineDateTime merges a calendar date (2006-01-02) and a wall-clock
// time (15:04) into one instant in the studio's local time.
func CombineDateTime(dateStr, clockStr string) (time.Time, error) {
	date, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", dateStr, err)
	}
	clock, err := time.Parse("15:04", clockStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", clockStr, err)
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), 0, 0, time.Local), nil
}

// FormatTimeRange renders a session window for history entries, e.g.
// "2026-08-29 10:00-11:00".
func FormatTimeRange(start, end time.Time) string {
	return fmt.Sprintf("%s %s-%s",
		start.Format("2006-01-02"), start.Format("15:04"), end.Format("15:04"))
}

// CreateSanitizedLogEntry creates a deep copied and sanitized log entry for logging.
// File uploads are represented by metadata only.
func CreateSanitizedLogEntry(c *fiber.Ctx) types.LogEntry {
	method := string([]byte(c.Method()))
	url := string([]byte(c.OriginalURL()))
	requestBody := sanitizeRequestBody(c)
	responseBody := string(append([]byte(nil), c.Response().Body()...))

	requestHeaders := make([]byte, len(c.Request().Header.Header()))
	copy(requestHeaders, c.Request().Header.Header())

	responseHeaders := make([]byte, len(c.Response().Header.Header()))
	copy(responseHeaders, c.Response().Header.Header())

	return types.LogEntry{
		Method:          method,
		URL:             url,
		RequestBody:     requestBody,
		ResponseBody:    responseBody,
		RequestHeaders:  string(requestHeaders),
		ResponseHeaders: string(responseHeaders),
		StatusCode:      c.Response().StatusCode(),
		CreatedAt:       time.Now(),
	}
}

func sanitizeRequestBody(c *fiber.Ctx) string {
	contentType := c.Get("Content-Type")
	if strings.Contains(contentType, "multipart/form-data") {
		formData := make(map[string]interface{})

		if form, err := c.MultipartForm(); err == nil {
			for key, values := range form.Value {
				if len(values) > 0 {
					formData[key] = values[0]
				}
			}

			for key, files := range form.File {
				fileInfo := make([]map[string]interface{}, len(files))
				for i, file := range files {
					fileInfo[i] = map[string]interface{}{
						"filename": file.Filename,
						"size":     file.Size,
						"content":  "[FILE_CONTENT_REMOVED]",
					}
				}
				formData[key] = fileInfo
			}
		}

		if jsonBytes, err := json.Marshal(formData); err == nil {
			return string(jsonBytes)
		}
		return "[MULTIPART_FORM_DATA]"
	}

	body := string(c.Body())
	if len(body) > 1000 && (strings.Contains(body, "data:image/") || strings.Contains(body, "base64")) {
		return "[LARGE_ENCODED_CONTENT_REMOVED]"
	}
	return body
}
