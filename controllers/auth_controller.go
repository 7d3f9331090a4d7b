package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-backend/middleware"
	"storefront-backend/models"
	"storefront-backend/services"
)

// AuthController exposes account endpoints.
type AuthController struct {
	auth services.AuthService
}

// NewAuthController creates an AuthController.
func NewAuthController(auth services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// Register handles POST /api/auth/register.
func (ctl *AuthController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, svcErr := ctl.auth.Register(c.Request.Context(), &req)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Login handles POST /api/auth/login.
func (ctl *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, svcErr := ctl.auth.Login(c.Request.Context(), &req)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetProfile handles GET /api/auth/profile.
func (ctl *AuthController) GetProfile(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization token required"})
		return
	}
	ctl.respondProfile(c, *userID, nil)
}

// UpdateProfile handles PATCH /api/auth/profile.
func (ctl *AuthController) UpdateProfile(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization token required"})
		return
	}
	var req models.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	ctl.respondProfile(c, *userID, &req)
}

func (ctl *AuthController) respondProfile(c *gin.Context, userID primitive.ObjectID, update *models.UpdateProfileRequest) {
	var user *models.User
	var svcErr *services.ServiceError
	if update != nil {
		user, svcErr = ctl.auth.UpdateProfile(c.Request.Context(), userID, update)
	} else {
		user, svcErr = ctl.auth.GetProfile(c.Request.Context(), userID)
	}
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
