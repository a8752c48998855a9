package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "bizdir/internal/errors"
	"bizdir/internal/services"
)

// PromotionHandler handles promotion-related requests.
type PromotionHandler struct {
	promotionService services.PromotionServicer
}

// NewPromotionHandler creates a new PromotionHandler.
func NewPromotionHandler(promotionService services.PromotionServicer) *PromotionHandler {
	return &PromotionHandler{promotionService: promotionService}
}

// CreatePromotionRequest represents the payload for a new promotion.
type CreatePromotionRequest struct {
	Title           string    `json:"title" binding:"required,max=200"`
	Description     string    `json:"description" binding:"max=2000"`
	OriginalPrice   *float64  `json:"original_price" binding:"omitempty,gte=0"`
	DiscountedPrice *float64  `json:"discounted_price" binding:"omitempty,gte=0"`
	StartsAt        time.Time `json:"starts_at" binding:"required"`
	EndsAt          time.Time `json:"ends_at" binding:"required"`
}

// ListActive
// @Summary     List running promotions
// @Tags        promotions
// @Produce     json
// @Success     200 {object} map[string][]models.Promotion
// @Router      /promotions [get]
func (h *PromotionHandler) ListActive(c *gin.Context) {
	promotions, err := h.promotionService.ListActive(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"promotions": promotions})
}

// CreatePromotion attaches a promotion to one of the caller's listings
// @Summary     Create a promotion
// @Tags        promotions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                 true "Business ID"
// @Param       request body CreatePromotionRequest true "Promotion"
// @Success     201 {object} models.Promotion
// @Failure     400 {object} ErrorResponse "Invalid input or prices out of order"
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Router      /businesses/{id}/promotions [post]
func (h *PromotionHandler) CreatePromotion(c *gin.Context) {
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

	var req CreatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	promotion, err := h.promotionService.CreatePromotion(c.Request.Context(), userID, businessID, services.PromotionInput{
		Title:           req.Title,
		Description:     req.Description,
		OriginalPrice:   req.OriginalPrice,
		DiscountedPrice: req.DiscountedPrice,
		StartsAt:        req.StartsAt,
		EndsAt:          req.EndsAt,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"promotion": promotion})
}

// DeletePromotion
// @Summary     Delete a promotion
// @Tags        promotions
// @Security    BearerAuth
// @Param       id path string true "Promotion ID"
// @Success     200 {object} MessageResponse
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Promotion not found"
// @Router      /promotions/{id} [delete]
func (h *PromotionHandler) DeletePromotion(c *gin.Context) {
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

	if err := h.promotionService.DeletePromotion(c.Request.Context(), userID, id); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Promotion deleted"})
}
