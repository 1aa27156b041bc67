package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"coachplan/scheduling-app/internal/domain"
	"coachplan/scheduling-app/internal/metrics"
	"coachplan/scheduling-app/internal/repository"
	"coachplan/scheduling-app/internal/scheduling"
)

// --- Error Definitions ---
var (
	ErrClientNotFound        = errors.New("client user not found")
	ErrClientNotRole         = errors.New("user found but is not a client")
	ErrClientAlreadyAssigned = errors.New("client is already assigned to a coach")
	ErrClientNotManaged      = errors.New("client is not managed by this coach")
	ErrPlanNotFound          = errors.New("training plan not found")
	ErrPlanAccessDenied      = errors.New("access denied to this training plan")
	ErrPlanHasNoEntries      = errors.New("training plan has no template entries")
	ErrInvalidBlockRule      = errors.New("block rule requires exactly one of date or weekday")
	ErrRuleNotFound          = errors.New("block rule not found")
)

// ScheduleProgramResult reports an initial placement: the sessions created and
// how many of them degraded to the bounded fallback.
type ScheduleProgramResult struct {
	Sessions  []domain.Session `json:"sessions"`
	Fallbacks int              `json:"fallbacks"`
}

// --- Service Interface ---
type CoachService interface {
	// Client Management
	AddClientByEmail(ctx context.Context, coachID primitive.ObjectID, clientEmail string) (*domain.User, error)
	GetManagedClients(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error)

	// Training Plan Management
	CreateTrainingPlan(ctx context.Context, coachID, clientID primitive.ObjectID, name, description string, entries []domain.TemplateEntry, isActive bool) (*domain.TrainingPlan, error)
	GetTrainingPlansForClient(ctx context.Context, coachID, clientID primitive.ObjectID) ([]domain.TrainingPlan, error)

	// Program Scheduling (initial placement onto the calendar)
	ScheduleProgram(ctx context.Context, coachID, planID primitive.ObjectID, startDate time.Time) (*ScheduleProgramResult, error)
	GetClientSessions(ctx context.Context, coachID, clientID primitive.ObjectID) ([]domain.Session, error)

	// Blocked-Date Management
	CreateBlockRule(ctx context.Context, coachID primitive.ObjectID, clientID *primitive.ObjectID, date *time.Time, weekday *time.Weekday, reason string) (*domain.BlockRule, error)
	GetBlockRules(ctx context.Context, coachID primitive.ObjectID) ([]domain.BlockRule, error)
	DeleteBlockRule(ctx context.Context, coachID, ruleID primitive.ObjectID) error
}

// --- Service Implementation ---

// coachService implements the CoachService interface.
type coachService struct {
	userRepo    repository.UserRepository
	planRepo    repository.TrainingPlanRepository
	sessionRepo repository.SessionRepository
	ruleRepo    repository.BlockRuleRepository
	logger      *zap.Logger
}

// NewCoachService creates a new instance of coachService.
func NewCoachService(
	userRepo repository.UserRepository,
	planRepo repository.TrainingPlanRepository,
	sessionRepo repository.SessionRepository,
	ruleRepo repository.BlockRuleRepository,
	logger *zap.Logger,
) CoachService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &coachService{
		userRepo:    userRepo,
		planRepo:    planRepo,
		sessionRepo: sessionRepo,
		ruleRepo:    ruleRepo,
		logger:      logger,
	}
}

// === Client Management ===

// AddClientByEmail finds a client by email and assigns them to the coach.
func (s *coachService) AddClientByEmail(ctx context.Context, coachID primitive.ObjectID, clientEmail string) (*domain.User, error) {
	if coachID == primitive.NilObjectID || clientEmail == "" {
		return nil, errors.New("coach ID and client email are required")
	}

	client, err := s.userRepo.GetByEmail(ctx, clientEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}

	if client.Role != domain.RoleClient {
		return nil, ErrClientNotRole
	}

	// Check if the client is already assigned to any coach
	if client.CoachID != nil && *client.CoachID != primitive.NilObjectID {
		if *client.CoachID == coachID {
			// Already managed by this coach; treat as success.
			return client, nil
		}
		return nil, ErrClientAlreadyAssigned
	}

	// Assign client to coach (update both records)
	if err := s.userRepo.AddClientIDToCoach(ctx, coachID, client.ID); err != nil {
		return nil, err
	}
	if err := s.userRepo.SetCoachForClient(ctx, client.ID, coachID); err != nil {
		return nil, err
	}

	client.CoachID = &coachID
	return client, nil
}

// GetManagedClients retrieves the list of clients managed by the coach.
func (s *coachService) GetManagedClients(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error) {
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID is required")
	}
	clients, err := s.userRepo.GetClientsByCoachID(ctx, coachID)
	if err != nil {
		return nil, err
	}
	// Clear password hashes before returning
	for i := range clients {
		clients[i].PasswordHash = ""
	}
	return clients, nil
}

// requireManagedClient fetches the client and verifies the coach manages them.
func (s *coachService) requireManagedClient(ctx context.Context, coachID, clientID primitive.ObjectID) (*domain.User, error) {
	client, err := s.userRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if client.CoachID == nil || *client.CoachID != coachID {
		return nil, ErrClientNotManaged
	}
	return client, nil
}

// === Training Plan Management ===

// CreateTrainingPlan creates a plan with its embedded template entries for a managed client.
func (s *coachService) CreateTrainingPlan(ctx context.Context, coachID, clientID primitive.ObjectID, name, description string, entries []domain.TemplateEntry, isActive bool) (*domain.TrainingPlan, error) {
	if coachID == primitive.NilObjectID || clientID == primitive.NilObjectID || name == "" {
		return nil, errors.New("coach ID, client ID, and plan name are required")
	}
	for _, e := range entries {
		if e.Week < 1 || e.Day < 1 {
			return nil, errors.New("template entries require week and day numbers starting at 1")
		}
	}

	if _, err := s.requireManagedClient(ctx, coachID, clientID); err != nil {
		return nil, err
	}

	plan := &domain.TrainingPlan{
		CoachID:     coachID,
		ClientID:    clientID,
		Name:        name,
		Description: description,
		Entries:     entries,
		IsActive:    isActive,
	}
	planID, err := s.planRepo.Create(ctx, plan)
	if err != nil {
		return nil, err
	}
	plan.ID = planID
	return plan, nil
}

// GetTrainingPlansForClient retrieves the coach's plans for one managed client.
func (s *coachService) GetTrainingPlansForClient(ctx context.Context, coachID, clientID primitive.ObjectID) ([]domain.TrainingPlan, error) {
	if _, err := s.requireManagedClient(ctx, coachID, clientID); err != nil {
		return nil, err
	}
	return s.planRepo.GetByClientAndCoachID(ctx, clientID, coachID)
}

// === Program Scheduling ===

// ScheduleProgram runs the initial placement for a plan: each template entry
// gets the next open calendar date on or after startDate, skipping dates the
// coach has blocked for this client, and one session row is created per entry.
// A placement that exhausted its search window is still created but flagged,
// logged, and counted — the coach's workflow never fails over a blocked-out
// calendar.
func (s *coachService) ScheduleProgram(ctx context.Context, coachID, planID primitive.ObjectID, startDate time.Time) (*ScheduleProgramResult, error) {
	if coachID == primitive.NilObjectID || planID == primitive.NilObjectID {
		return nil, errors.New("coach ID and plan ID are required")
	}

	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if plan.CoachID != coachID {
		return nil, ErrPlanAccessDenied
	}
	if len(plan.Entries) == 0 {
		return nil, ErrPlanHasNoEntries
	}

	rules, err := s.ruleRepo.GetByCoachID(ctx, coachID)
	if err != nil {
		return nil, err
	}

	drafts := scheduling.PlaceProgram(plan.Entries, startDate, plan.ClientID, rules)

	names := make(map[primitive.ObjectID]string, len(plan.Entries))
	for _, e := range plan.Entries {
		names[e.ID] = e.Name
	}

	result := &ScheduleProgramResult{}
	sessions := make([]domain.Session, 0, len(drafts))
	for _, d := range drafts {
		if d.Fallback {
			result.Fallbacks++
			metrics.SchedulingFallbacks.Inc()
			s.logger.Warn("placement search exhausted, assigning blocked date",
				zap.String("plan_id", planID.Hex()),
				zap.String("template_id", d.TemplateID.Hex()),
				zap.Time("date", d.ScheduledDate),
			)
		}
		sessions = append(sessions, domain.Session{
			PlanID:         planID,
			TemplateID:     d.TemplateID,
			CoachID:        coachID,
			ClientID:       plan.ClientID,
			Name:           names[d.TemplateID],
			ScheduledDate:  d.ScheduledDate,
			PlacedFallback: d.Fallback,
		})
	}

	ids, err := s.sessionRepo.CreateMany(ctx, sessions)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		if i < len(ids) {
			sessions[i].ID = ids[i]
		}
		metrics.SessionsPlaced.Inc()
	}
	result.Sessions = sessions

	s.logger.Info("program scheduled",
		zap.String("plan_id", planID.Hex()),
		zap.String("client_id", plan.ClientID.Hex()),
		zap.Int("sessions", len(sessions)),
		zap.Int("fallbacks", result.Fallbacks),
	)
	return result, nil
}

// GetClientSessions returns the calendar of one managed client.
func (s *coachService) GetClientSessions(ctx context.Context, coachID, clientID primitive.ObjectID) ([]domain.Session, error) {
	if _, err := s.requireManagedClient(ctx, coachID, clientID); err != nil {
		return nil, err
	}
	return s.sessionRepo.GetByClientID(ctx, clientID)
}

// === Blocked-Date Management ===

// CreateBlockRule records a date- or weekday-shaped exclusion, optionally
// scoped to one managed client.
func (s *coachService) CreateBlockRule(ctx context.Context, coachID primitive.ObjectID, clientID *primitive.ObjectID, date *time.Time, weekday *time.Weekday, reason string) (*domain.BlockRule, error) {
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID is required")
	}
	if (date == nil) == (weekday == nil) {
		return nil, ErrInvalidBlockRule
	}
	if weekday != nil && (*weekday < time.Sunday || *weekday > time.Saturday) {
		return nil, errors.New("weekday must be between 0 (Sunday) and 6 (Saturday)")
	}
	if clientID != nil && *clientID != primitive.NilObjectID {
		if _, err := s.requireManagedClient(ctx, coachID, *clientID); err != nil {
			return nil, err
		}
	} else {
		clientID = nil
	}
	if date != nil {
		normalized := scheduling.Day(*date)
		date = &normalized
	}

	rule := &domain.BlockRule{
		CoachID:  coachID,
		ClientID: clientID,
		Date:     date,
		Weekday:  weekday,
		Reason:   reason,
	}
	ruleID, err := s.ruleRepo.Create(ctx, rule)
	if err != nil {
		return nil, err
	}
	rule.ID = ruleID
	return rule, nil
}

// GetBlockRules returns the coach's full rule set.
func (s *coachService) GetBlockRules(ctx context.Context, coachID primitive.ObjectID) ([]domain.BlockRule, error) {
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID is required")
	}
	return s.ruleRepo.GetByCoachID(ctx, coachID)
}

// DeleteBlockRule removes one of the coach's rules.
func (s *coachService) DeleteBlockRule(ctx context.Context, coachID, ruleID primitive.ObjectID) error {
	err := s.ruleRepo.Delete(ctx, ruleID, coachID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrRuleNotFound
	}
	return err
}
