package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/agenda-api-go/pkg/models"
)

// CheckContext dry-runs a validation context: it reports whether the
// snapshots are well formed without validating any candidate.
func (h *Handler) CheckContext(c *gin.Context) {
	var vc models.ValidationContext
	if err := c.ShouldBindJSON(&vc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	if err := vc.Validate(); err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": err.Error()})
		return
	}

	bookingIDs := make(map[string]bool)
	for _, b := range vc.Bookings {
		if bookingIDs[b.ID] {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": "Duplicate booking ID: " + b.ID})
			return
		}
		bookingIDs[b.ID] = true
	}

	blockIDs := make(map[string]bool)
	for _, b := range vc.ScheduleBlocks {
		if blockIDs[b.ID] {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": "Duplicate block ID: " + b.ID})
			return
		}
		blockIDs[b.ID] = true
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"stats": gin.H{
			"booking_count":   len(vc.Bookings),
			"exception_count": len(vc.Exceptions),
			"block_count":     len(vc.ScheduleBlocks),
			"granularity":     vc.Granularity(),
		},
	})
}
