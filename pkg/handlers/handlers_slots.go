package handlers

import (
	"net/http"

	"cloud.google.com/go/civil"
	"github.com/gin-gonic/gin"

	"github.com/arnavshah/agenda-api-go/pkg/models"
)

type validateRequest struct {
	Candidate models.Candidate         `json:"candidate"`
	Context   models.ValidationContext `json:"context"`
}

type batchRequest struct {
	Candidates []models.Candidate       `json:"candidates" binding:"required,min=1,dive"`
	Context    models.ValidationContext `json:"context"`
}

// clinicValidateRequest validates against the stored snapshots of a clinic.
type clinicValidateRequest struct {
	models.Candidate
	AllowAdjustments bool   `json:"allow_adjustments"`
	ExcludeBookingID string `json:"exclude_booking_id"`
}

type moveRequest struct {
	Date             *civil.Date `json:"date"`
	StartMinute      *int        `json:"start_minute" binding:"required"`
	AllowAdjustments bool        `json:"allow_adjustments"`
}

type resizeRequest struct {
	DurationMinutes int `json:"duration_minutes" binding:"required"`
}

type nudgeRequest struct {
	Direction models.NudgeDirection `json:"direction" binding:"required"`
}

// Validate checks one candidate against snapshots sent inline.
func (h *Handler) Validate(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.Validator.Validate(req.Candidate, req.Context)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.RecordUsage(c, 1, len(res.Conflicts))
	c.JSON(http.StatusOK, res)
}

// ValidateBatch checks many candidates against one inline context.
func (h *Handler) ValidateBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, err := h.Validator.ValidateBatch(c.Request.Context(), req.Candidates, req.Context, h.Config.BatchConcurrency)
	if err != nil {
		h.respondError(c, err)
		return
	}

	conflicts := 0
	for _, r := range results {
		conflicts += len(r.Conflicts)
	}
	h.RecordUsage(c, len(results), conflicts)
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// ValidateStored checks a candidate against the clinic's stored bookings,
// hours and blocks.
func (h *Handler) ValidateStored(c *gin.Context) {
	var req clinicValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Candidate.Validate(); err != nil {
		h.respondError(c, err)
		return
	}

	vc, err := h.Snapshots.Snapshot(c.Request.Context(), c.Param("clinicID"), req.ResourceID, req.Date)
	if err != nil {
		h.respondError(c, err)
		return
	}
	vc.AllowAdjustments = req.AllowAdjustments
	vc.ExcludeBookingID = req.ExcludeBookingID

	h.respond(c, func() (models.ValidationResult, error) {
		return h.Validator.Validate(req.Candidate, vc)
	})
}

// MoveBooking checks dragging a stored booking to a new start and date.
func (h *Handler) MoveBooking(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, ok := h.loadBooking(c)
	if !ok {
		return
	}
	date := b.Date
	if req.Date != nil {
		date = *req.Date
	}

	vc, err := h.Snapshots.Snapshot(c.Request.Context(), c.Param("clinicID"), b.ResourceID, date)
	if err != nil {
		h.respondError(c, err)
		return
	}
	vc.AllowAdjustments = req.AllowAdjustments

	h.respond(c, func() (models.ValidationResult, error) {
		return h.Validator.ValidateMove(b, date, *req.StartMinute, vc)
	})
}

// ResizeBooking checks stretching a stored booking to a new duration.
func (h *Handler) ResizeBooking(c *gin.Context) {
	var req resizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, ok := h.loadBooking(c)
	if !ok {
		return
	}
	vc, err := h.Snapshots.Snapshot(c.Request.Context(), c.Param("clinicID"), b.ResourceID, b.Date)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.respond(c, func() (models.ValidationResult, error) {
		return h.Validator.ValidateResize(b, req.DurationMinutes, vc)
	})
}

// NudgeBooking checks moving a stored booking one slot up or down.
func (h *Handler) NudgeBooking(c *gin.Context) {
	var req nudgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, ok := h.loadBooking(c)
	if !ok {
		return
	}
	vc, err := h.Snapshots.Snapshot(c.Request.Context(), c.Param("clinicID"), b.ResourceID, b.Date)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.respond(c, func() (models.ValidationResult, error) {
		return h.Validator.ValidateNudge(b, req.Direction, vc)
	})
}

func (h *Handler) loadBooking(c *gin.Context) (models.Booking, bool) {
	b, err := h.Snapshots.Bookings.Booking(c.Request.Context(), c.Param("clinicID"), c.Param("bookingID"))
	if err != nil {
		h.respondError(c, err)
		return models.Booking{}, false
	}
	return b, true
}

func (h *Handler) respond(c *gin.Context, validate func() (models.ValidationResult, error)) {
	res, err := validate()
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.RecordUsage(c, 1, len(res.Conflicts))
	c.JSON(http.StatusOK, res)
}
