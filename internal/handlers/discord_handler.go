package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/veskar/guildhall/internal/models"
	"github.com/veskar/guildhall/internal/services"
)

// LinkDiscord completes the OAuth flow: the web client forwards the code
// Discord redirected back with, and the server exchanges and stores the link.
func LinkDiscord(ds *services.DiscordService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := requireClaims(c)
		if !ok {
			return
		}
		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid user ID in token"))
			return
		}

		var req struct {
			Code string `json:"code" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		link, err := ds.LinkDiscordAccount(c.Request.Context(), userID, req.Code)
		if err != nil {
			c.JSON(http.StatusBadGateway, models.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(link, "Discord account linked"))
	}
}

func GetDiscordLink(ds *services.DiscordService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := requireClaims(c)
		if !ok {
			return
		}
		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid user ID in token"))
			return
		}

		link, err := ds.GetLink(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}
		if link == nil {
			c.JSON(http.StatusNotFound, models.ErrorResponse("no discord account linked"))
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(link, ""))
	}
}

func UnlinkDiscord(ds *services.DiscordService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := requireClaims(c)
		if !ok {
			return
		}
		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid user ID in token"))
			return
		}

		if err := ds.UnlinkDiscordAccount(c.Request.Context(), userID); err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Discord account unlinked"))
	}
}
