package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Version is reported by the health route.
const Version = "1.0.0"

// NewRouter builds the gin engine with every route the service exposes.
func (h *Handler) NewRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(h.Logger))

	// Admin interface - serve static files from embedded FS
	r.StaticFS("/static", h.GetStaticFS())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Agenda Slot Validation API",
			"version": Version,
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/admin", h.AdminInterface)
	r.POST("/admin/login", h.Login)

	admin := r.Group("/admin")
	admin.Use(h.AuthMiddleware())
	{
		admin.POST("/keys", h.GenerateKey)
		admin.GET("/keys", h.ListKeys)
		admin.PUT("/keys/:id", h.UpdateKeyLimit)
		admin.DELETE("/keys/:id", h.RevokeKey)
		admin.GET("/usage/:id", h.GetUsage)

		clinics := admin.Group("/clinics/:clinicID")
		clinics.PUT("/schedule", h.PutSchedule)
		clinics.GET("/exceptions", h.ListExceptions)
		clinics.POST("/exceptions", h.PostException)
		clinics.DELETE("/exceptions/:id", h.DeleteException)
		clinics.GET("/blocks", h.ListBlocks)
		clinics.POST("/blocks", h.PostBlock)
		clinics.DELETE("/blocks/:id", h.DeleteBlock)
		clinics.POST("/bookings", h.PostBooking)
		clinics.DELETE("/bookings/:id", h.DeleteBooking)
	}

	api := r.Group("/api")
	api.Use(h.APIKeyMiddleware())
	{
		api.POST("/validate", h.Validate)
		api.POST("/validate/batch", h.ValidateBatch)
		api.POST("/context/check", h.CheckContext)
		api.GET("/usage", h.GetMyUsage)

		clinic := api.Group("/clinics/:clinicID")
		clinic.POST("/validate", h.ValidateStored)
		clinic.POST("/bookings/:bookingID/move", h.MoveBooking)
		clinic.POST("/bookings/:bookingID/resize", h.ResizeBooking)
		clinic.POST("/bookings/:bookingID/nudge", h.NudgeBooking)
	}

	return r
}
