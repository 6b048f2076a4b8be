package controllers

import (
	"strconv"

	"eventhub-api/models"
	"eventhub-api/repositories"

	"github.com/gin-gonic/gin"
)

// callerFrom reads the identity set by the auth middleware.
func callerFrom(c *gin.Context) models.Caller {
	role, _ := models.ParseRole(c.GetString("role"))
	return models.Caller{
		UserID: c.GetString("user_id"),
		Email:  c.GetString("email"),
		Role:   role,
	}
}

func pageFrom(c *gin.Context) repositories.Page {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	return repositories.Page{
		Page:      page,
		Limit:     limit,
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}
}
