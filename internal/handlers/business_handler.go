package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "bizdir/internal/errors"
	"bizdir/internal/models"
	"bizdir/internal/services"
)

// BusinessHandler handles listing CRUD for owners and the public.
type BusinessHandler struct {
	businessService   services.BusinessServicer
	moderationService services.ModerationServicer
}

// NewBusinessHandler creates a new BusinessHandler.
func NewBusinessHandler(businessService services.BusinessServicer, moderationService services.ModerationServicer) *BusinessHandler {
	return &BusinessHandler{businessService: businessService, moderationService: moderationService}
}

// BusinessRequest represents the payload for creating or updating a listing.
// Status is not accepted; listings always enter moderation as Pending.
type BusinessRequest struct {
	Name        string   `json:"name" binding:"required,max=200"`
	Category    string   `json:"category" binding:"required,business_category"`
	Address     string   `json:"address" binding:"max=300"`
	City        string   `json:"city" binding:"max=100"`
	Description string   `json:"description" binding:"max=2000"`
	Phone       string   `json:"phone" binding:"max=50"`
	Email       string   `json:"email" binding:"omitempty,email,max=255"`
	Website     string   `json:"website" binding:"omitempty,url,max=300"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	OpenDays    *[7]bool `json:"open_days"`
}

func (r BusinessRequest) toInput() services.BusinessInput {
	return services.BusinessInput{
		Name:        r.Name,
		Category:    models.BusinessCategory(r.Category),
		Address:     r.Address,
		City:        r.City,
		Description: r.Description,
		Phone:       r.Phone,
		Email:       r.Email,
		Website:     r.Website,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		OpenDays:    r.OpenDays,
	}
}

// BusinessResponse is a listing with its open days expanded.
type BusinessResponse struct {
	models.Business
	OpenDaysList [7]bool `json:"open_days_list"`
}

func toBusinessResponse(b *models.Business) BusinessResponse {
	return BusinessResponse{Business: *b, OpenDaysList: models.DecodeOpenDays(b.OpenDays)}
}

func toBusinessResponses(businesses []models.Business) []BusinessResponse {
	out := make([]BusinessResponse, len(businesses))
	for i := range businesses {
		out[i] = toBusinessResponse(&businesses[i])
	}
	return out
}

// ListBusinesses returns approved listings
// @Summary     List approved businesses
// @Tags        businesses
// @Produce     json
// @Param       keyword  query string false "Substring of name, description, city or address"
// @Param       city     query string false "City, aliases accepted"
// @Param       category query string false "Comma-separated categories"
// @Success     200 {object} map[string][]BusinessResponse
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /businesses [get]
func (h *BusinessHandler) ListBusinesses(c *gin.Context) {
	filter := services.ListFilter{
		Keyword:  c.Query("keyword"),
		City:     c.Query("city"),
		Category: c.Query("category"),
	}

	businesses, err := h.businessService.ListApproved(c.Request.Context(), filter)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"businesses": toBusinessResponses(businesses)})
}

// GetBusiness returns one approved listing
// @Summary     Get a business
// @Tags        businesses
// @Produce     json
// @Param       id path string true "Business ID"
// @Success     200 {object} BusinessResponse
// @Failure     404 {object} ErrorResponse "Business not found"
// @Router      /businesses/{id} [get]
func (h *BusinessHandler) GetBusiness(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	business, err := h.businessService.GetApprovedByID(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"business": toBusinessResponse(business)})
}

// CreateBusiness registers a listing for moderation
// @Summary     Create a business
// @Description The listing starts in Pending status and is hidden until approved
// @Tags        businesses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body BusinessRequest true "Business details"
// @Success     201 {object} BusinessResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /businesses [post]
func (h *BusinessHandler) CreateBusiness(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	business, err := h.businessService.CreateBusiness(c.Request.Context(), userID, req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"business": toBusinessResponse(business)})
}

// UpdateBusiness edits one of the caller's listings
// @Summary     Update a business
// @Tags        businesses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string          true "Business ID"
// @Param       request body BusinessRequest true "Business details"
// @Success     200 {object} BusinessResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Business not found"
// @Failure     409 {object} ErrorResponse "Listing no longer editable"
// @Router      /businesses/{id} [put]
func (h *BusinessHandler) UpdateBusiness(c *gin.Context) {
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

	var req BusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	business, err := h.businessService.UpdateBusiness(c.Request.Context(), userID, id, req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"business": toBusinessResponse(business)})
}

// DeleteBusiness removes one of the caller's listings together with its
// reviews, favorites and promotions
// @Summary     Delete a business
// @Tags        businesses
// @Security    BearerAuth
// @Param       id path string true "Business ID"
// @Success     200 {object} MessageResponse
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Business not found"
// @Router      /businesses/{id} [delete]
func (h *BusinessHandler) DeleteBusiness(c *gin.Context) {
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

	if err := h.moderationService.Delete(requestContext(c), id, userID, nil); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Business deleted"})
}

// GetMyBusinesses returns the caller's listings in every status
// @Summary     List my businesses
// @Tags        businesses
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]BusinessResponse
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /me/businesses [get]
func (h *BusinessHandler) GetMyBusinesses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	businesses, err := h.businessService.GetOwnerBusinesses(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"businesses": toBusinessResponses(businesses)})
}

// ListCities returns the cities that have approved listings
// @Summary     List cities
// @Tags        businesses
// @Produce     json
// @Success     200 {object} map[string][]string
// @Router      /cities [get]
func (h *BusinessHandler) ListCities(c *gin.Context) {
	cities, err := h.businessService.ListCities(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cities": cities})
}
