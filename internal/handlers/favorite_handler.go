package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bizdir/internal/services"
)

// FavoriteHandler handles bookmarks.
type FavoriteHandler struct {
	favoriteService services.FavoriteServicer
}

// NewFavoriteHandler creates a new FavoriteHandler.
func NewFavoriteHandler(favoriteService services.FavoriteServicer) *FavoriteHandler {
	return &FavoriteHandler{favoriteService: favoriteService}
}

// ToggleFavorite bookmarks a listing or removes the bookmark
// @Summary     Toggle a favorite
// @Tags        favorites
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Business ID"
// @Success     200 {object} map[string]bool
// @Failure     404 {object} ErrorResponse "Business not found"
// @Router      /favorites/{id} [post]
func (h *FavoriteHandler) ToggleFavorite(c *gin.Context) {
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

	favorited, err := h.favoriteService.ToggleFavorite(c.Request.Context(), userID, businessID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorited": favorited})
}

// ListFavorites
// @Summary     List my favorites
// @Tags        favorites
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]BusinessResponse
// @Router      /favorites [get]
func (h *FavoriteHandler) ListFavorites(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	businesses, err := h.favoriteService.ListFavorites(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"businesses": toBusinessResponses(businesses)})
}
