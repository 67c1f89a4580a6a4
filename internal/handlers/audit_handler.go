package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/veskar/guildhall/internal/models"
	"github.com/veskar/guildhall/internal/services"
)

// ListAuditLog serves the admin audit viewer: newest mutations first,
// optionally filtered to one event via ?event_id=.
func ListAuditLog(as *services.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		offset, limit, ok := parsePagination(c, "0", "50")
		if !ok {
			return
		}

		records, total, err := as.ListByEvent(c.Request.Context(), c.Query("event_id"), offset, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, models.PaginatedResponse(records, offset/limit+1, limit, total))
	}
}
