package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "bizdir/internal/errors"
	"bizdir/internal/pagination"
	"bizdir/internal/services"
)

// ReviewHandler handles review-related requests.
type ReviewHandler struct {
	reviewService services.ReviewServicer
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviewService services.ReviewServicer) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// CreateReviewRequest represents the payload for reviewing a listing.
type CreateReviewRequest struct {
	Rating int    `json:"rating" binding:"required,min=1,max=5"`
	Text   string `json:"text" binding:"max=2000"`
}

// ListReviews
// @Summary     List reviews of a business
// @Tags        reviews
// @Produce     json
// @Param       id        path  string true  "Business ID"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Review]
// @Router      /businesses/{id}/reviews [get]
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	businessID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.reviewService.ListReviews(c.Request.Context(), businessID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CreateReview
// @Summary     Review a business
// @Tags        reviews
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Business ID"
// @Param       request body CreateReviewRequest true "Review"
// @Success     201 {object} models.Review
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Business not found"
// @Router      /businesses/{id}/reviews [post]
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	businessID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	review, err := h.reviewService.CreateReview(c.Request.Context(), userID, businessID, req.Rating, req.Text)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"review": review})
}

// DeleteReview
// @Summary     Delete a review
// @Tags        reviews
// @Security    BearerAuth
// @Param       id path string true "Review ID"
// @Success     200 {object} MessageResponse
// @Failure     403 {object} ErrorResponse "Not the author"
// @Failure     404 {object} ErrorResponse "Review not found"
// @Router      /reviews/{id} [delete]
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.reviewService.DeleteReview(c.Request.Context(), userID, id); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Review deleted"})
}
