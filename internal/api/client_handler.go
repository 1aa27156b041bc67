// internal/api/client_handler.go
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"coachplan/scheduling-app/internal/service"
)

type ClientHandler struct {
	clientService service.ClientService
}

func NewClientHandler(clientService service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// clientIDFromContext extracts and parses the authenticated client's ID.
func clientIDFromContext(c *gin.Context) (primitive.ObjectID, bool) {
	idStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify client from token.")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid client ID format in token.")
		return primitive.NilObjectID, false
	}
	return id, true
}

// --- DTOs ---

type CompleteSessionResponse struct {
	Session    SessionResponse          `json:"session"`
	Reschedule service.RescheduleResult `json:"reschedule"`
}

// --- Handler Methods ---

// GetMySessions godoc
// @Summary Get the authenticated client's sessions
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Success 200 {array} SessionResponse
// @Router /client/sessions [get]
func (h *ClientHandler) GetMySessions(c *gin.Context) {
	clientID, ok := clientIDFromContext(c)
	if !ok {
		return
	}

	sessions, err := h.clientService.GetMySessions(c.Request.Context(), clientID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve sessions.")
		return
	}

	c.JSON(http.StatusOK, MapSessionsToResponse(sessions))
}

// CompleteSession godoc
// @Summary Mark a session completed
// @Description Marks the session completed and reschedules the client's
// @Description remaining overdue sessions, preserving each one's weekday.
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} CompleteSessionResponse
// @Failure 403 {object} gin.H "Session belongs to another client"
// @Failure 404 {object} gin.H "Session not found"
// @Failure 409 {object} gin.H "Session already completed"
// @Router /client/sessions/{id}/complete [post]
func (h *ClientHandler) CompleteSession(c *gin.Context) {
	clientID, ok := clientIDFromContext(c)
	if !ok {
		return
	}
	sessionID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid session ID format.")
		return
	}

	result, err := h.clientService.CompleteSession(c.Request.Context(), clientID, sessionID, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrSessionNotBelongToUser):
			abortWithError(c, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrSessionAlreadyCompleted):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to complete session.")
		}
		return
	}

	resp := CompleteSessionResponse{Session: MapSessionToResponse(result.Session)}
	if result.Reschedule != nil {
		resp.Reschedule = *result.Reschedule
	}
	c.JSON(http.StatusOK, resp)
}
