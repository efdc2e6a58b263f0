package connection

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/recoveryconnect/match-backend/internal/db"
	svcErr "github.com/recoveryconnect/match-backend/internal/errors"
)

// Handler exposes the lifecycle service over JSON/HTTP. It does no
// business logic of its own: bind, call, map the error, render.
type Handler struct {
	svc *Service
	log *slog.Logger
}

// NewHandler creates a handler around the given service.
func NewHandler(svc *Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

type createRequestInput struct {
	RequesterType string  `json:"requester_type" binding:"required,oneof=applicant peer_support landlord employer"`
	RequesterID   string  `json:"requester_id" binding:"required"`
	RecipientType string  `json:"recipient_type" binding:"required,oneof=applicant peer_support landlord employer"`
	RecipientID   string  `json:"recipient_id" binding:"required"`
	RequestType   string  `json:"request_type" binding:"required,oneof=roommate peer_support housing employment"`
	Message       string  `json:"message"`
	PropertyID    *string `json:"property_id"`
}

type approveInput struct {
	ProfileIDs map[string]string `json:"profile_ids"`
}

type rejectInput struct {
	Reason string `json:"reason" binding:"required"`
}

type reconnectInput struct {
	ProfileIDs map[string]string `json:"profile_ids" binding:"required"`
}

// Create handles POST /api/requests.
func (h *Handler) Create(c *gin.Context) {
	var input createRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req, err := h.svc.Create(c.Request.Context(), CreateParams{
		RequesterType: db.Role(input.RequesterType),
		RequesterID:   input.RequesterID,
		RecipientType: db.Role(input.RecipientType),
		RecipientID:   input.RecipientID,
		RequestType:   db.RequestType(input.RequestType),
		Message:       input.Message,
		PropertyID:    input.PropertyID,
	})
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"request": req})
}

// Get handles GET /api/requests/:id.
func (h *Handler) Get(c *gin.Context) {
	req, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": req})
}

// List handles GET /api/requests?profile_id=...&page_token=...&limit=...
func (h *Handler) List(c *gin.Context) {
	profileID := c.Query("profile_id")
	if profileID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "profile_id is required"})
		return
	}

	var token *string
	if t := c.Query("page_token"); t != "" {
		token = &t
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	requests, nextToken, err := h.svc.ListForProfile(c.Request.Context(), profileID, token, limit)
	if err != nil {
		h.renderError(c, err)
		return
	}

	resp := gin.H{"requests": requests}
	if nextToken != nil {
		resp["next_page_token"] = *nextToken
	}
	c.JSON(http.StatusOK, resp)
}

// PendingCount handles GET /api/requests/pending/count?profile_id=...
func (h *Handler) PendingCount(c *gin.Context) {
	profileID := c.Query("profile_id")
	if profileID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "profile_id is required"})
		return
	}

	count, err := h.svc.PendingCount(c.Request.Context(), profileID)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// Stats handles GET /api/requests/stats?profile_id=...
func (h *Handler) Stats(c *gin.Context) {
	profileID := c.Query("profile_id")
	if profileID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "profile_id is required"})
		return
	}

	stats, err := h.svc.StatsForProfile(c.Request.Context(), profileID)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// Approve handles POST /api/requests/:id/approve.
func (h *Handler) Approve(c *gin.Context) {
	var input approveInput
	if err := c.ShouldBindJSON(&input); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req, err := h.svc.Approve(c.Request.Context(), c.Param("id"), toProfileIDs(input.ProfileIDs))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": req})
}

// Reject handles POST /api/requests/:id/reject.
func (h *Handler) Reject(c *gin.Context) {
	var input rejectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req, err := h.svc.Reject(c.Request.Context(), c.Param("id"), input.Reason)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": req})
}

// Cancel handles POST /api/requests/:id/cancel.
func (h *Handler) Cancel(c *gin.Context) {
	req, err := h.svc.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": req})
}

// Unmatch handles POST /api/requests/:id/unmatch.
func (h *Handler) Unmatch(c *gin.Context) {
	req, err := h.svc.Unmatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": req})
}

// Reconnect handles POST /api/requests/:id/reconnect.
func (h *Handler) Reconnect(c *gin.Context) {
	var input reconnectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req, err := h.svc.Reconnect(c.Request.Context(), c.Param("id"), toProfileIDs(input.ProfileIDs))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"request": req})
}

func (h *Handler) renderError(c *gin.Context, err error) {
	status, msg := svcErr.Map(err)
	if status == http.StatusInternalServerError {
		h.log.Error("request handler failed", "path", c.FullPath(), "err", err)
	}
	c.JSON(status, gin.H{"error": msg})
}

func toProfileIDs(m map[string]string) ProfileIDs {
	if len(m) == 0 {
		return nil
	}
	ids := make(ProfileIDs, len(m))
	for role, id := range m {
		ids[db.Role(role)] = id
	}
	return ids
}
