package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/veskar/guildhall/internal/models"
	"github.com/veskar/guildhall/internal/services"
)

type webhookPayload struct {
	Signups []services.BotNotification `json:"signups" binding:"required,min=1,dive"`
}

// RaidBotWebhook receives signup notifications from the external Discord
// scheduling bot. Each notification is reconciled independently; the
// response always carries per-notification outcomes, and the status is 207
// when some of them failed.
func RaidBotWebhook(rs *services.ReconcileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload webhookPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		results := rs.ReconcileBatch(c.Request.Context(), payload.Signups)

		failed := 0
		for _, result := range results {
			if !result.Applied {
				failed++
			}
		}

		status := http.StatusOK
		if failed > 0 {
			status = http.StatusMultiStatus
		}

		c.JSON(status, models.ApiResponse{
			Success: failed == 0,
			Data:    results,
			Total:   len(results),
		})
	}
}
