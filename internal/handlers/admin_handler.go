package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "bizdir/internal/errors"
	"bizdir/internal/models"
	"bizdir/internal/pagination"
	"bizdir/internal/services"
)

// AdminHandler serves the moderation back office. Every route is behind
// RequireRole(Admin); services re-check the stored role for privileged writes.
type AdminHandler struct {
	businessService   services.BusinessServicer
	moderationService services.ModerationServicer
	userService       services.UserServicer
	auditService      services.AuditServicer
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	businessService services.BusinessServicer,
	moderationService services.ModerationServicer,
	userService services.UserServicer,
	auditService services.AuditServicer,
) *AdminHandler {
	return &AdminHandler{
		businessService:   businessService,
		moderationService: moderationService,
		userService:       userService,
		auditService:      auditService,
	}
}

// ModerationRequest carries the optional reason for a suspension or deletion.
type ModerationRequest struct {
	Reason *string `json:"reason" binding:"omitempty,max=500"`
}

// UpdateRoleRequest represents the payload for changing a user's role.
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,user_role"`
}

// AdminBusinessQuery filters the moderation queue.
type AdminBusinessQuery struct {
	pagination.PageRequest
	Status string `form:"status" binding:"omitempty,business_status"`
}

// AuditLogQuery filters the audit log.
type AuditLogQuery struct {
	pagination.PageRequest
	Action   string `form:"action"`
	EntityID string `form:"entity_id"`
	ActorID  string `form:"actor_id"`
}

// bindOptionalJSON binds the body into req, treating an empty body as no input.
func bindOptionalJSON(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	return nil
}

// ListBusinesses pages through listings of any status
// @Summary     List businesses for moderation
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       status    query string false "Pending, Approved, Rejected or Suspended"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Business]
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /admin/businesses [get]
func (h *AdminHandler) ListBusinesses(c *gin.Context) {
	var q AdminBusinessQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var status *models.BusinessStatus
	if q.Status != "" {
		s, _ := models.ParseBusinessStatus(q.Status)
		status = &s
	}

	result, err := h.businessService.ListByStatus(c.Request.Context(), status, q.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ApproveBusiness publishes a listing
// @Summary     Approve a business
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Business ID"
// @Success     200 {object} BusinessResponse
// @Failure     404 {object} ErrorResponse "Business not found"
// @Failure     409 {object} ErrorResponse "Already approved or status changed"
// @Router      /admin/businesses/{id}/approve [post]
func (h *AdminHandler) ApproveBusiness(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	business, err := h.moderationService.Approve(requestContext(c), id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"business": toBusinessResponse(business)})
}

// RejectBusiness
// @Summary     Reject a business
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Business ID"
// @Success     200 {object} BusinessResponse
// @Failure     404 {object} ErrorResponse "Business not found"
// @Failure     409 {object} ErrorResponse "Already rejected or status changed"
// @Router      /admin/businesses/{id}/reject [post]
func (h *AdminHandler) RejectBusiness(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	business, err := h.moderationService.Reject(requestContext(c), id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"business": toBusinessResponse(business)})
}

// SuspendBusiness hides an approved listing and records the decision in the
// audit log
// @Summary     Suspend a business
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true  "Business ID"
// @Param       request body ModerationRequest false "Suspension reason"
// @Success     200 {object} BusinessResponse
// @Failure     400 {object} ErrorResponse "Listing not approved"
// @Failure     404 {object} ErrorResponse "Business not found"
// @Failure     409 {object} ErrorResponse "Already suspended or status changed"
// @Router      /admin/businesses/{id}/suspend [post]
func (h *AdminHandler) SuspendBusiness(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ModerationRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	business, err := h.moderationService.Suspend(requestContext(c), id, actorID, req.Reason)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"business": toBusinessResponse(business)})
}

// DeleteBusiness
// @Summary     Delete a business
// @Tags        admin
// @Accept      json
// @Security    BearerAuth
// @Param       id      path string            true  "Business ID"
// @Param       request body ModerationRequest false "Deletion reason"
// @Success     200 {object} MessageResponse
// @Failure     404 {object} ErrorResponse "Business not found"
// @Router      /admin/businesses/{id} [delete]
func (h *AdminHandler) DeleteBusiness(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ModerationRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.moderationService.Delete(requestContext(c), id, actorID, req.Reason); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Business deleted"})
}

// ListUsers
// @Summary     List users
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.User]
// @Router      /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.userService.ListUsers(c.Request.Context(), page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// UpdateUserRole
// @Summary     Change a user's role
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "User ID"
// @Param       request body UpdateRoleRequest true "New role"
// @Success     200 {object} UserResponse
// @Failure     400 {object} ErrorResponse "Invalid role"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /admin/users/{id}/role [put]
func (h *AdminHandler) UpdateUserRole(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.UpdateUserRole(requestContext(c), actorID, id, models.UserRole(req.Role))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}

// ListAuditLogs
// @Summary     List audit log entries
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       action    query string false "Action, e.g. BUSINESS_SUSPENDED"
// @Param       entity_id query string false "Entity ID"
// @Param       actor_id  query string false "Actor ID"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.AuditLog]
// @Router      /admin/audit-logs [get]
func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	var q AuditLogQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter := services.AuditFilter{Action: q.Action, EntityID: q.EntityID, ActorID: q.ActorID}
	result, err := h.auditService.List(c.Request.Context(), filter, q.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
