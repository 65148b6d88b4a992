package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/agenda-api-go/pkg/database"
)

const usageHistoryDays = 30

// usageDay is one day of validation traffic for a key.
type usageDay struct {
	Date         string  `json:"date"`
	Requests     int     `json:"requests"`
	Validations  int     `json:"validations"`
	Conflicts    int     `json:"conflicts"`
	ConflictRate float64 `json:"conflicts_per_validation"`
}

type usageTotals struct {
	Requests     int     `json:"requests"`
	Validations  int     `json:"validations"`
	Conflicts    int     `json:"conflicts"`
	ConflictRate float64 `json:"conflicts_per_validation"`
}

func conflictRate(conflicts, validations int) float64 {
	if validations == 0 {
		return 0
	}
	return float64(conflicts) / float64(validations)
}

// GetMyUsage reports how often the calling key's candidates were rejected
// over the last month, along with what is left of today's request cap.
func (h *Handler) GetMyUsage(c *gin.Context) {
	raw, ok := c.Get("apiKey")
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "API Key context missing"})
		return
	}
	apiKey := raw.(*database.APIKey)

	var rows []database.APIUsage
	err := h.DB.Where("key_id = ?", apiKey.ID).Order("date desc").Limit(usageHistoryDays).Find(&rows).Error
	if err != nil {
		h.respondError(c, err)
		return
	}

	days := make([]usageDay, 0, len(rows))
	var totals usageTotals
	usedToday := 0
	for _, r := range rows {
		days = append(days, usageDay{
			Date:         r.Date,
			Requests:     r.RequestCount,
			Validations:  r.TotalValidations,
			Conflicts:    r.TotalConflicts,
			ConflictRate: conflictRate(r.TotalConflicts, r.TotalValidations),
		})
		totals.Requests += r.RequestCount
		totals.Validations += r.TotalValidations
		totals.Conflicts += r.TotalConflicts
		if r.Date == today() {
			usedToday = r.RequestCount
		}
	}
	totals.ConflictRate = conflictRate(totals.Conflicts, totals.Validations)

	resp := gin.H{
		"key_name":   apiKey.Name,
		"rate_limit": apiKey.RateLimit,
		"days":       days,
		"totals":     totals,
	}
	// A non-positive limit means the key is uncapped.
	if apiKey.RateLimit > 0 {
		resp["remaining_today"] = max(apiKey.RateLimit-usedToday, 0)
	}
	c.JSON(http.StatusOK, resp)
}
