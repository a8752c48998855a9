package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "bizdir/internal/errors"
	"bizdir/internal/services"
)

// NewsletterHandler handles newsletter signups.
type NewsletterHandler struct {
	newsletterService services.NewsletterServicer
}

// NewNewsletterHandler creates a new NewsletterHandler.
func NewNewsletterHandler(newsletterService services.NewsletterServicer) *NewsletterHandler {
	return &NewsletterHandler{newsletterService: newsletterService}
}

// SubscribeRequest represents the newsletter signup payload.
type SubscribeRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
}

// Subscribe
// @Summary     Subscribe to the newsletter
// @Tags        newsletter
// @Accept      json
// @Produce     json
// @Param       request body SubscribeRequest true "Email"
// @Success     200 {object} MessageResponse
// @Failure     400 {object} ErrorResponse "Invalid email"
// @Router      /newsletter/subscribe [post]
func (h *NewsletterHandler) Subscribe(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if _, err := h.newsletterService.Subscribe(c.Request.Context(), req.Email); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Subscribed"})
}
