// File: /controllers/review_controller.go
package controllers

import (
	"net/http"

	"eventhub-api/services"
	"eventhub-api/utils"

	"github.com/gin-gonic/gin"
)

type ReviewController struct {
	reviews *services.ReviewService
}

func NewReviewController(reviews *services.ReviewService) *ReviewController {
	return &ReviewController{reviews: reviews}
}

func (rc *ReviewController) CreateReview(c *gin.Context) {
	var req services.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}
	if !utils.IsValidRating(req.Rating) {
		utils.SendServiceError(c, services.ErrInvalidRating)
		return
	}

	review, err := rc.reviews.CreateReview(c.Request.Context(), callerFrom(c), req)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendCreated(c, "Review created successfully", review)
}

func (rc *ReviewController) UpdateReview(c *gin.Context) {
	var req services.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	review, err := rc.reviews.UpdateReview(c.Request.Context(), callerFrom(c), c.Param("id"), req)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendSuccess(c, "Review updated successfully", review)
}

func (rc *ReviewController) DeleteReview(c *gin.Context) {
	if err := rc.reviews.DeleteReview(c.Request.Context(), callerFrom(c), c.Param("id")); err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendSuccess(c, "Review deleted successfully", nil)
}

func (rc *ReviewController) GetReview(c *gin.Context) {
	review, err := rc.reviews.GetReview(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

func (rc *ReviewController) HostReviews(c *gin.Context) {
	reviews, err := rc.reviews.HostReviews(c.Request.Context(), c.Param("hostId"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews, "count": len(reviews)})
}

func (rc *ReviewController) EventReviews(c *gin.Context) {
	reviews, err := rc.reviews.EventReviews(c.Request.Context(), c.Param("eventId"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews, "count": len(reviews)})
}

func (rc *ReviewController) MyReviews(c *gin.Context) {
	reviews, err := rc.reviews.MyReviews(c.Request.Context(), callerFrom(c))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews, "count": len(reviews)})
}
