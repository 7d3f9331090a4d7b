package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-backend/services"
)

func respondError(c *gin.Context, err *services.ServiceError) {
	c.JSON(err.StatusCode, gin.H{"error": err.Message})
}

func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return false
	}
	return true
}
