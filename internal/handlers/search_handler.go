package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "bizdir/internal/errors"
	"bizdir/internal/services"
)

const defaultSearchLimit = 20

// SearchHandler serves listing search and recommendations.
type SearchHandler struct {
	searchService services.SearchServicer
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(searchService services.SearchServicer) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// SearchRequest holds the query parameters of a search. Range checks on the
// geo parameters happen in the service so every caller gets the same errors.
type SearchRequest struct {
	Keyword        string   `form:"keyword"`
	Categories     string   `form:"categories"`
	Locations      string   `form:"locations"`
	BBox           string   `form:"bbox"`
	HasCoordinates bool     `form:"has_coordinates"`
	Lat            *float64 `form:"lat"`
	Lng            *float64 `form:"lng"`
	RadiusKm       *float64 `form:"radius_km"`
	SortBy         string   `form:"sort_by" binding:"sort_by"`
	Page           int      `form:"page"`
	Limit          *int     `form:"limit"`
}

// RecommendationRequest holds the query parameters of a recommendation request.
type RecommendationRequest struct {
	Category string `form:"category"`
	Location string `form:"location"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

// Search runs the public listing search
// @Summary     Search businesses
// @Description Filters approved listings by keyword, categories, locations, bounding box and
// @Description distance, then ranks by distance (when lat/lng given) or by sort_by.
// @Description An identified caller with no filters gets recommendations instead.
// @Tags        businesses
// @Produce     json
// @Param       keyword         query string  false "Keyword; near-me phrases are ignored"
// @Param       categories      query string  false "Comma-separated categories; unknown tokens dropped"
// @Param       locations       query string  false "Comma-separated cities; aliases and diacritics accepted"
// @Param       bbox            query string  false "minLng,minLat,maxLng,maxLat; ignored if malformed"
// @Param       has_coordinates query bool    false "Only listings with a stored position"
// @Param       lat             query number  false "Latitude of the search centre"
// @Param       lng             query number  false "Longitude of the search centre"
// @Param       radius_km       query number  false "Radius in km (0.1 to 300)"
// @Param       sort_by         query string  false "rating or createdAt"
// @Param       page            query int     false "Page number (default 1)"
// @Param       limit           query int     false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[services.PublicBusiness]
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /businesses/search [get]
func (h *SearchHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	limit := defaultSearchLimit
	if req.Limit != nil {
		limit = *req.Limit
	}

	result, err := h.searchService.Search(c.Request.Context(), services.SearchQuery{
		UserID:         optionalUserID(c),
		Keyword:        req.Keyword,
		Categories:     req.Categories,
		Locations:      req.Locations,
		BBox:           req.BBox,
		HasCoordinates: req.HasCoordinates,
		Lat:            req.Lat,
		Lng:            req.Lng,
		RadiusKm:       req.RadiusKm,
		SortBy:         req.SortBy,
		Page:           req.Page,
		Limit:          limit,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Recommendations suggests listings for the caller
// @Summary     Recommended businesses
// @Tags        businesses
// @Produce     json
// @Param       category query string false "Category filter"
// @Param       location query string false "City filter"
// @Param       limit    query int    false "Maximum results (default 10)"
// @Success     200 {object} map[string][]BusinessResponse
// @Router      /businesses/recommendations [get]
func (h *SearchHandler) Recommendations(c *gin.Context) {
	var req RecommendationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	businesses, err := h.searchService.Recommendations(c.Request.Context(), services.RecommendationQuery{
		UserID:   optionalUserID(c),
		Category: req.Category,
		Location: req.Location,
		Limit:    req.Limit,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"businesses": toBusinessResponses(businesses)})
}
