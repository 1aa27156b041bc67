// internal/api/coach_handler.go
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"coachplan/scheduling-app/internal/domain"
	"coachplan/scheduling-app/internal/service"
)

type CoachHandler struct {
	coachService service.CoachService
}

func NewCoachHandler(coachService service.CoachService) *CoachHandler {
	return &CoachHandler{coachService: coachService}
}

// coachIDFromContext extracts and parses the authenticated coach's ID.
func coachIDFromContext(c *gin.Context) (primitive.ObjectID, bool) {
	idStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify coach from token.")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid coach ID format in token.")
		return primitive.NilObjectID, false
	}
	return id, true
}

// --- DTOs for Client Management ---

type AddClientRequest struct {
	ClientEmail string `json:"clientEmail" binding:"required,email"`
}

// --- DTOs for Training Plan Management ---

type TemplateEntryRequest struct {
	Name  string `json:"name" binding:"required"`
	Week  int    `json:"week" binding:"required,min=1"`
	Day   int    `json:"day" binding:"required,min=1"`
	Notes string `json:"notes"`
}

type CreateTrainingPlanRequest struct {
	Name        string                 `json:"name" binding:"required"`
	Description string                 `json:"description"`
	Entries     []TemplateEntryRequest `json:"entries" binding:"required,min=1,dive"`
	IsActive    bool                   `json:"isActive"`
}

type TemplateEntryResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Week  int    `json:"week"`
	Day   int    `json:"day"`
	Notes string `json:"notes,omitempty"`
}

type TrainingPlanResponse struct {
	ID          string                  `json:"id"`
	CoachID     string                  `json:"coachId"`
	ClientID    string                  `json:"clientId"`
	Name        string                  `json:"name"`
	Description string                  `json:"description,omitempty"`
	Entries     []TemplateEntryResponse `json:"entries"`
	IsActive    bool                    `json:"isActive"`
	CreatedAt   time.Time               `json:"createdAt"`
	UpdatedAt   time.Time               `json:"updatedAt"`
}

// MapTrainingPlanToResponse converts domain.TrainingPlan to DTO
func MapTrainingPlanToResponse(p *domain.TrainingPlan) TrainingPlanResponse {
	if p == nil {
		return TrainingPlanResponse{}
	}
	entries := make([]TemplateEntryResponse, len(p.Entries))
	for i, e := range p.Entries {
		entries[i] = TemplateEntryResponse{
			ID:    e.ID.Hex(),
			Name:  e.Name,
			Week:  e.Week,
			Day:   e.Day,
			Notes: e.Notes,
		}
	}
	return TrainingPlanResponse{
		ID:          p.ID.Hex(),
		CoachID:     p.CoachID.Hex(),
		ClientID:    p.ClientID.Hex(),
		Name:        p.Name,
		Description: p.Description,
		Entries:     entries,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// --- DTOs for Sessions ---

// SessionResponse is shared by the coach calendar view and the client's own view.
type SessionResponse struct {
	ID             string     `json:"id"`
	PlanID         string     `json:"planId"`
	TemplateID     string     `json:"templateId"`
	ClientID       string     `json:"clientId"`
	Name           string     `json:"name"`
	ScheduledDate  time.Time  `json:"scheduledDate"`
	Completed      bool       `json:"completed"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	PlacedFallback bool       `json:"placedFallback,omitempty"`
}

// MapSessionToResponse converts domain.Session to SessionResponse DTO
func MapSessionToResponse(s *domain.Session) SessionResponse {
	if s == nil {
		return SessionResponse{}
	}
	return SessionResponse{
		ID:             s.ID.Hex(),
		PlanID:         s.PlanID.Hex(),
		TemplateID:     s.TemplateID.Hex(),
		ClientID:       s.ClientID.Hex(),
		Name:           s.Name,
		ScheduledDate:  s.ScheduledDate,
		Completed:      s.Completed,
		CompletedAt:    s.CompletedAt,
		PlacedFallback: s.PlacedFallback,
	}
}

// MapSessionsToResponse converts a slice of domain.Session
func MapSessionsToResponse(sessions []domain.Session) []SessionResponse {
	responses := make([]SessionResponse, len(sessions))
	for i, s := range sessions {
		responses[i] = MapSessionToResponse(&s)
	}
	return responses
}

// --- DTOs for Program Scheduling ---

type ScheduleProgramRequest struct {
	StartDate time.Time `json:"startDate" binding:"required"` // ISO8601, e.g. "2024-05-10T00:00:00Z"
}

type ScheduleProgramResponse struct {
	Sessions  []SessionResponse `json:"sessions"`
	Fallbacks int               `json:"fallbacks"`
}

// --- DTOs for Block Rules ---

type CreateBlockRuleRequest struct {
	ClientID *string    `json:"clientId"` // Absent means the rule is global
	Date     *time.Time `json:"date"`
	Weekday  *int       `json:"weekday"` // 0 (Sunday) .. 6 (Saturday)
	Reason   string     `json:"reason"`
}

type BlockRuleResponse struct {
	ID        string     `json:"id"`
	ClientID  *string    `json:"clientId,omitempty"`
	Date      *time.Time `json:"date,omitempty"`
	Weekday   *int       `json:"weekday,omitempty"`
	Reason    string     `json:"reason,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// MapBlockRuleToResponse converts domain.BlockRule to BlockRuleResponse DTO
func MapBlockRuleToResponse(r *domain.BlockRule) BlockRuleResponse {
	if r == nil {
		return BlockRuleResponse{}
	}
	resp := BlockRuleResponse{
		ID:        r.ID.Hex(),
		Date:      r.Date,
		Reason:    r.Reason,
		CreatedAt: r.CreatedAt,
	}
	if r.ClientID != nil && *r.ClientID != primitive.NilObjectID {
		hex := r.ClientID.Hex()
		resp.ClientID = &hex
	}
	if r.Weekday != nil {
		w := int(*r.Weekday)
		resp.Weekday = &w
	}
	return resp
}

// --- Handler Methods for Client Management ---

// AddClientByEmail godoc
// @Summary Add a client to the coach's roster by email
// @Description Associates an existing client user with the authenticated coach.
// @Tags Coach
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param clientRequest body AddClientRequest true "Client's email"
// @Success 200 {object} UserResponse "Client successfully added/associated"
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 403 {object} gin.H "Forbidden (user is not a client, or already has a coach)"
// @Failure 404 {object} gin.H "Client not found"
// @Router /coach/clients [post]
func (h *CoachHandler) AddClientByEmail(c *gin.Context) {
	var req AddClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}

	client, err := h.coachService.AddClientByEmail(c.Request.Context(), coachID, req.ClientEmail)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClientNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrClientNotRole), errors.Is(err, service.ErrClientAlreadyAssigned):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to add client.")
		}
		return
	}

	c.JSON(http.StatusOK, MapUserToResponse(client))
}

// GetManagedClients godoc
// @Summary Get the coach's managed clients
// @Tags Coach
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse "List of managed clients"
// @Router /coach/clients [get]
func (h *CoachHandler) GetManagedClients(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}

	clients, err := h.coachService.GetManagedClients(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve managed clients.")
		return
	}
	if clients == nil {
		c.JSON(http.StatusOK, []UserResponse{}) // Return empty JSON array, not null
		return
	}
	c.JSON(http.StatusOK, MapUsersToResponse(clients))
}

// --- Handler Methods for Training Plans ---

// CreateTrainingPlan godoc
// @Summary Create a training plan for a managed client
// @Tags Coach
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Param plan body CreateTrainingPlanRequest true "Plan with ordered template entries"
// @Success 201 {object} TrainingPlanResponse
// @Router /coach/clients/{clientId}/plans [post]
func (h *CoachHandler) CreateTrainingPlan(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}
	clientID, err := primitive.ObjectIDFromHex(c.Param("clientId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid client ID format.")
		return
	}
	var req CreateTrainingPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	entries := make([]domain.TemplateEntry, len(req.Entries))
	for i, e := range req.Entries {
		entries[i] = domain.TemplateEntry{Name: e.Name, Week: e.Week, Day: e.Day, Notes: e.Notes}
	}

	plan, err := h.coachService.CreateTrainingPlan(c.Request.Context(), coachID, clientID, req.Name, req.Description, entries, req.IsActive)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClientNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrClientNotManaged):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to create training plan.")
		}
		return
	}

	c.JSON(http.StatusCreated, MapTrainingPlanToResponse(plan))
}

// GetTrainingPlansForClient godoc
// @Summary List the coach's plans for one client
// @Tags Coach
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Success 200 {array} TrainingPlanResponse
// @Router /coach/clients/{clientId}/plans [get]
func (h *CoachHandler) GetTrainingPlansForClient(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}
	clientID, err := primitive.ObjectIDFromHex(c.Param("clientId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid client ID format.")
		return
	}

	plans, err := h.coachService.GetTrainingPlansForClient(c.Request.Context(), coachID, clientID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClientNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrClientNotManaged):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve training plans.")
		}
		return
	}

	responses := make([]TrainingPlanResponse, len(plans))
	for i := range plans {
		responses[i] = MapTrainingPlanToResponse(&plans[i])
	}
	c.JSON(http.StatusOK, responses)
}

// --- Handler Methods for Program Scheduling ---

// ScheduleProgram godoc
// @Summary Schedule a plan's workouts onto the client's calendar
// @Description Places each template entry on the next open date from startDate,
// @Description skipping blocked dates. Placements that exhausted the search
// @Description window are flagged in the fallbacks count.
// @Tags Coach
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Plan ID"
// @Param schedule body ScheduleProgramRequest true "Start date"
// @Success 201 {object} ScheduleProgramResponse
// @Router /coach/plans/{planId}/schedule [post]
func (h *CoachHandler) ScheduleProgram(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}
	planID, err := primitive.ObjectIDFromHex(c.Param("planId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format.")
		return
	}
	var req ScheduleProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	result, err := h.coachService.ScheduleProgram(c.Request.Context(), coachID, planID, req.StartDate)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlanNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrPlanAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrPlanHasNoEntries):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to schedule program.")
		}
		return
	}

	c.JSON(http.StatusCreated, ScheduleProgramResponse{
		Sessions:  MapSessionsToResponse(result.Sessions),
		Fallbacks: result.Fallbacks,
	})
}

// GetClientSessions godoc
// @Summary View one managed client's session calendar
// @Tags Coach
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Success 200 {array} SessionResponse
// @Router /coach/clients/{clientId}/sessions [get]
func (h *CoachHandler) GetClientSessions(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}
	clientID, err := primitive.ObjectIDFromHex(c.Param("clientId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid client ID format.")
		return
	}

	sessions, err := h.coachService.GetClientSessions(c.Request.Context(), coachID, clientID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClientNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrClientNotManaged):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve sessions.")
		}
		return
	}

	c.JSON(http.StatusOK, MapSessionsToResponse(sessions))
}

// --- Handler Methods for Block Rules ---

// CreateBlockRule godoc
// @Summary Block a specific date or a recurring weekday
// @Description Creates a block rule, optionally scoped to one managed client.
// @Tags Coach
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param rule body CreateBlockRuleRequest true "Rule (exactly one of date/weekday)"
// @Success 201 {object} BlockRuleResponse
// @Router /coach/block-rules [post]
func (h *CoachHandler) CreateBlockRule(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}
	var req CreateBlockRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	var clientID *primitive.ObjectID
	if req.ClientID != nil && *req.ClientID != "" {
		id, err := primitive.ObjectIDFromHex(*req.ClientID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid client ID format.")
			return
		}
		clientID = &id
	}
	var weekday *time.Weekday
	if req.Weekday != nil {
		if *req.Weekday < 0 || *req.Weekday > 6 {
			abortWithError(c, http.StatusBadRequest, "Weekday must be between 0 (Sunday) and 6 (Saturday).")
			return
		}
		w := time.Weekday(*req.Weekday)
		weekday = &w
	}

	rule, err := h.coachService.CreateBlockRule(c.Request.Context(), coachID, clientID, req.Date, weekday, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidBlockRule):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrClientNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrClientNotManaged):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to create block rule.")
		}
		return
	}

	c.JSON(http.StatusCreated, MapBlockRuleToResponse(rule))
}

// GetBlockRules godoc
// @Summary List the coach's block rules
// @Tags Coach
// @Produce json
// @Security BearerAuth
// @Success 200 {array} BlockRuleResponse
// @Router /coach/block-rules [get]
func (h *CoachHandler) GetBlockRules(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}

	rules, err := h.coachService.GetBlockRules(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve block rules.")
		return
	}

	responses := make([]BlockRuleResponse, len(rules))
	for i := range rules {
		responses[i] = MapBlockRuleToResponse(&rules[i])
	}
	c.JSON(http.StatusOK, responses)
}

// DeleteBlockRule godoc
// @Summary Delete one of the coach's block rules
// @Tags Coach
// @Produce json
// @Security BearerAuth
// @Param id path string true "Rule ID"
// @Success 204 "Deleted"
// @Router /coach/block-rules/{id} [delete]
func (h *CoachHandler) DeleteBlockRule(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}
	ruleID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid rule ID format.")
		return
	}

	if err := h.coachService.DeleteBlockRule(c.Request.Context(), coachID, ruleID); err != nil {
		if errors.Is(err, service.ErrRuleNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete block rule.")
		}
		return
	}

	c.Status(http.StatusNoContent)
}
