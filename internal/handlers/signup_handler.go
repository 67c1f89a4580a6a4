package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/veskar/guildhall/internal/models"
	"github.com/veskar/guildhall/internal/services"
)

type signupRequest struct {
	CharacterID string `json:"character_id" binding:"required"`
	Role        string `json:"role"`
	Spec        string `json:"spec"`
}

func signupStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrEventNotFound), errors.Is(err, models.ErrCharacterNotFound), errors.Is(err, models.ErrSignupNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrDuplicateSignup), errors.Is(err, models.ErrStoreConflict):
		return http.StatusConflict
	case errors.Is(err, models.ErrCapacityExceeded):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func SignUpForEvent(ss *services.SignupService) gin.HandlerFunc {
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

		var req signupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		roster, err := ss.SignUp(c.Request.Context(), c.Param("id"), userID, claims.Username, req.CharacterID, models.ParseRole(req.Role), req.Spec)
		if err != nil {
			c.JSON(signupStatus(err), models.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(roster, "Signed up"))
	}
}

func EditSignup(ss *services.SignupService) gin.HandlerFunc {
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

		var req signupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		roster, err := ss.EditSignup(c.Request.Context(), c.Param("id"), userID, req.CharacterID, models.ParseRole(req.Role), req.Spec)
		if err != nil {
			c.JSON(signupStatus(err), models.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(roster, "Signup updated"))
	}
}

func MarkAbsent(ss *services.SignupService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := requireClaims(c)
		if !ok {
			return
		}

		var req struct {
			Reason string `json:"reason"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		identity := models.UserIdentity(claims.UserID)
		roster, err := ss.MarkAbsent(c.Request.Context(), c.Param("id"), identity, req.Reason)
		if err != nil {
			c.JSON(signupStatus(err), models.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(roster, "Marked absent"))
	}
}

func Withdraw(ss *services.SignupService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := requireClaims(c)
		if !ok {
			return
		}

		identity := models.UserIdentity(claims.UserID)
		roster, err := ss.Withdraw(c.Request.Context(), c.Param("id"), identity)
		if err != nil {
			c.JSON(signupStatus(err), models.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(roster, "Withdrawn"))
	}
}

func GetRoster(ss *services.SignupService) gin.HandlerFunc {
	return func(c *gin.Context) {
		roster, err := ss.RosterView(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(signupStatus(err), models.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(roster, ""))
	}
}
