package handlers

import (
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arnavshah/agenda-api-go/pkg/models"
)

// PutSchedule replaces a clinic's weekly hours.
func (h *Handler) PutSchedule(c *gin.Context) {
	var req struct {
		Week               models.WeekSchedule `json:"week" binding:"required"`
		GranularityMinutes int                 `json:"granularity_minutes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	clinicID := c.Param("clinicID")
	err := h.Store.SaveSchedule(c.Request.Context(), models.ClinicSchedule{
		ClinicID:           clinicID,
		Week:               req.Week,
		GranularityMinutes: req.GranularityMinutes,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.invalidate(c, clinicID)
	c.JSON(http.StatusOK, gin.H{"clinic_id": clinicID})
}

// PostException adds or replaces a date-bounded exception to a clinic's hours.
func (h *Handler) PostException(c *gin.Context) {
	var ex models.ScheduleException
	if err := c.ShouldBindJSON(&ex); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if ex.ID == "" {
		ex.ID = uuid.NewString()
	}

	clinicID := c.Param("clinicID")
	if err := h.Store.SaveException(c.Request.Context(), clinicID, ex); err != nil {
		h.respondError(c, err)
		return
	}
	h.invalidate(c, clinicID)
	c.JSON(http.StatusCreated, ex)
}

// PostBlock stores a block sent in the flat back-office form.
func (h *Handler) PostBlock(c *gin.Context) {
	var spec models.BlockSpec
	if err := c.ShouldBindJSON(&spec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if spec.ID == "" {
		spec.ID = uuid.NewString()
	}

	block, err := spec.Build()
	if err != nil {
		h.respondError(c, err)
		return
	}
	if block.CreatedAt.IsZero() {
		block.CreatedAt = time.Now().UTC()
	}
	if err := h.Store.SaveBlock(c.Request.Context(), c.Param("clinicID"), block); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, block.Spec())
}

// PostBooking mirrors a booking from the clinic app.
func (h *Handler) PostBooking(c *gin.Context) {
	var b models.Booking
	if err := c.ShouldBindJSON(&b); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.ResourceID == "" || !b.Date.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resource_id and date are required"})
		return
	}

	if err := h.Store.SaveBooking(c.Request.Context(), c.Param("clinicID"), b); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// ListBlocks returns the clinic's blocks overlapping the optional from/to
// window in the flat back-office form.
func (h *Handler) ListBlocks(c *gin.Context) {
	from, to, err := dateWindow(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	blocks, err := h.Store.ListBlocks(c.Request.Context(), c.Param("clinicID"), from, to)
	if err != nil {
		h.respondError(c, err)
		return
	}
	specs := make([]models.BlockSpec, 0, len(blocks))
	for _, b := range blocks {
		specs = append(specs, b.Spec())
	}
	c.JSON(http.StatusOK, gin.H{"blocks": specs})
}

func (h *Handler) ListExceptions(c *gin.Context) {
	from, to, err := dateWindow(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	exs, err := h.Store.ListExceptions(c.Request.Context(), c.Param("clinicID"), from, to)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exceptions": exs})
}

func (h *Handler) DeleteBooking(c *gin.Context) {
	if err := h.Store.DeleteBooking(c.Request.Context(), c.Param("clinicID"), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking deleted"})
}

func (h *Handler) DeleteBlock(c *gin.Context) {
	if err := h.Store.DeleteBlock(c.Request.Context(), c.Param("clinicID"), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Block deleted"})
}

// DeleteException removes an exception and drops the cached hours with it.
func (h *Handler) DeleteException(c *gin.Context) {
	clinicID := c.Param("clinicID")
	if err := h.Store.DeleteException(c.Request.Context(), clinicID, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	h.invalidate(c, clinicID)
	c.JSON(http.StatusOK, gin.H{"message": "Exception deleted"})
}

// dateWindow reads the from/to query parameters. Either may be omitted to
// leave that side of the window open.
func dateWindow(c *gin.Context) (from, to civil.Date, err error) {
	from = civil.Date{Year: 1, Month: time.January, Day: 1}
	to = civil.Date{Year: 9999, Month: time.December, Day: 31}
	if v := c.Query("from"); v != "" {
		if from, err = civil.ParseDate(v); err != nil {
			return from, to, fmt.Errorf("invalid from date %q", v)
		}
	}
	if v := c.Query("to"); v != "" {
		if to, err = civil.ParseDate(v); err != nil {
			return from, to, fmt.Errorf("invalid to date %q", v)
		}
	}
	if to.Before(from) {
		return from, to, fmt.Errorf("to %s is before from %s", to, from)
	}
	return from, to, nil
}

func (h *Handler) invalidate(c *gin.Context, clinicID string) {
	if h.Cache == nil {
		return
	}
	if err := h.Cache.Invalidate(c.Request.Context(), clinicID); err != nil {
		h.Logger.Warn("schedule cache not invalidated", zap.String("clinic_id", clinicID), zap.Error(err))
	}
}
