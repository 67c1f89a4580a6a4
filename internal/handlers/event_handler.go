package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/veskar/guildhall/internal/helpers"
	"github.com/veskar/guildhall/internal/models"
	"github.com/veskar/guildhall/internal/services"
)

type createEventRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	Start       time.Time `json:"start" binding:"required"`
	Difficulty  string    `json:"difficulty"`
	MaxPlayers  int       `json:"max_players"`
	Weekly      bool      `json:"weekly"`
}

func CreateEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := requireClaims(c)
		if !ok {
			return
		}

		var req createEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		event := &models.Event{
			Title:       req.Title,
			Description: req.Description,
			Start:       req.Start,
			Difficulty:  req.Difficulty,
			MaxPlayers:  req.MaxPlayers,
		}

		created, err := es.CreateEvent(c.Request.Context(), event, req.Weekly, claims.Username)

		var partial *models.SeriesPartialError
		if errors.As(err, &partial) {
			// Some instances were persisted before the failure; report both
			// so the caller can decide whether to keep or delete them.
			c.JSON(http.StatusInternalServerError, models.ApiResponse{
				Success: false,
				Error:   partial.Error(),
				Data:    created,
				Total:   partial.Created,
			})
			return
		}
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(created, "Event created successfully"))
	}
}

func ListEvents(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		offset, limit, ok := parsePagination(c, "0", "20")
		if !ok {
			return
		}

		// Default to upcoming events; ?all=true includes past ones.
		from := time.Now()
		if c.Query("all") == "true" {
			from = time.Time{}
		}

		events, total, err := es.ListEvents(c.Request.Context(), from, offset, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, models.PaginatedResponse(events, offset/limit+1, limit, total))
	}
}

func GetEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		event, err := es.GetEvent(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, models.ErrEventNotFound) {
				c.JSON(http.StatusNotFound, models.ErrorResponse("event not found"))
				return
			}
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{
			"event":  event,
			"roster": event.Roster(),
		}, ""))
	}
}

func DeleteEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := es.DeleteEvent(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, models.ErrEventNotFound) {
				c.JSON(http.StatusNotFound, models.ErrorResponse("event not found"))
				return
			}
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Event and its signups deleted"))
	}
}

// requireClaims pulls the enhanced claims set by the auth middleware.
func requireClaims(c *gin.Context) (*helpers.EnhancedClaims, bool) {
	claims, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
		return nil, false
	}
	enhancedClaims, ok := claims.(*helpers.EnhancedClaims)
	if !ok {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse("invalid user claims"))
		return nil, false
	}
	return enhancedClaims, true
}

func parsePagination(c *gin.Context, defaultOffset, defaultLimit string) (int, int, bool) {
	offset, err := strconv.Atoi(c.DefaultQuery("offset", defaultOffset))
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid offset parameter"))
		return 0, 0, false
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", defaultLimit))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid limit parameter"))
		return 0, 0, false
	}
	return offset, limit, true
}
