package service

// Hand-written repository fakes shared by the service tests. They keep state in
// maps and honour the same ordering contracts the Mongo implementations do.

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"coachplan/scheduling-app/internal/domain"
	"coachplan/scheduling-app/internal/repository"
)

type fakeSessionRepo struct {
	sessions map[primitive.ObjectID]*domain.Session
	// updateErrs makes UpdateScheduledDate fail for specific sessions.
	updateErrs map[primitive.ObjectID]error
	// applied records the order date updates were applied in.
	applied []primitive.ObjectID
}

func newFakeSessionRepo(sessions ...domain.Session) *fakeSessionRepo {
	r := &fakeSessionRepo{
		sessions:   make(map[primitive.ObjectID]*domain.Session),
		updateErrs: make(map[primitive.ObjectID]error),
	}
	for i := range sessions {
		s := sessions[i]
		r.sessions[s.ID] = &s
	}
	return r
}

func (r *fakeSessionRepo) CreateMany(_ context.Context, sessions []domain.Session) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, len(sessions))
	for i := range sessions {
		s := sessions[i]
		s.ID = primitive.NewObjectID()
		r.sessions[s.ID] = &s
		ids[i] = s.ID
	}
	return ids, nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Session, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeSessionRepo) GetByClientID(_ context.Context, clientID primitive.ObjectID) ([]domain.Session, error) {
	return r.list(clientID, false), nil
}

func (r *fakeSessionRepo) GetPendingByClientID(_ context.Context, clientID primitive.ObjectID) ([]domain.Session, error) {
	return r.list(clientID, true), nil
}

func (r *fakeSessionRepo) list(clientID primitive.ObjectID, pendingOnly bool) []domain.Session {
	var out []domain.Session
	for _, s := range r.sessions {
		if s.ClientID != clientID {
			continue
		}
		if pendingOnly && s.Completed {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledDate.Before(out[j].ScheduledDate) })
	return out
}

func (r *fakeSessionRepo) UpdateScheduledDate(_ context.Context, id primitive.ObjectID, date time.Time) error {
	if err := r.updateErrs[id]; err != nil {
		return err
	}
	s, ok := r.sessions[id]
	if !ok || s.Completed {
		return repository.ErrNotFound
	}
	s.ScheduledDate = date
	r.applied = append(r.applied, id)
	return nil
}

func (r *fakeSessionRepo) MarkCompleted(_ context.Context, id primitive.ObjectID, completedAt time.Time) error {
	s, ok := r.sessions[id]
	if !ok || s.Completed {
		return repository.ErrNotFound
	}
	s.Completed = true
	at := completedAt.UTC()
	s.CompletedAt = &at
	return nil
}

type fakeUserRepo struct {
	users map[primitive.ObjectID]*domain.User
}

func newFakeUserRepo(users ...domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
	for i := range users {
		u := users[i]
		r.users[u.ID] = &u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	user.ID = primitive.NewObjectID()
	copied := *user
	r.users[user.ID] = &copied
	return user.ID, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) AddClientIDToCoach(_ context.Context, coachID, clientID primitive.ObjectID) error {
	coach, ok := r.users[coachID]
	if !ok {
		return repository.ErrNotFound
	}
	coach.ClientIDs = append(coach.ClientIDs, clientID)
	return nil
}

func (r *fakeUserRepo) SetCoachForClient(_ context.Context, clientID, coachID primitive.ObjectID) error {
	client, ok := r.users[clientID]
	if !ok {
		return repository.ErrNotFound
	}
	client.CoachID = &coachID
	return nil
}

func (r *fakeUserRepo) GetClientsByCoachID(_ context.Context, coachID primitive.ObjectID) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users {
		if u.Role == domain.RoleClient && u.CoachID != nil && *u.CoachID == coachID {
			out = append(out, *u)
		}
	}
	return out, nil
}

type fakeRuleRepo struct {
	rules []domain.BlockRule
}

func (r *fakeRuleRepo) Create(_ context.Context, rule *domain.BlockRule) (primitive.ObjectID, error) {
	rule.ID = primitive.NewObjectID()
	r.rules = append(r.rules, *rule)
	return rule.ID, nil
}

func (r *fakeRuleRepo) GetByCoachID(_ context.Context, coachID primitive.ObjectID) ([]domain.BlockRule, error) {
	var out []domain.BlockRule
	for _, rule := range r.rules {
		if rule.CoachID == coachID {
			out = append(out, rule)
		}
	}
	return out, nil
}

func (r *fakeRuleRepo) Delete(_ context.Context, id primitive.ObjectID, coachID primitive.ObjectID) error {
	for i, rule := range r.rules {
		if rule.ID == id && rule.CoachID == coachID {
			r.rules = append(r.rules[:i], r.rules[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakePlanRepo struct {
	plans map[primitive.ObjectID]*domain.TrainingPlan
}

func newFakePlanRepo(plans ...domain.TrainingPlan) *fakePlanRepo {
	r := &fakePlanRepo{plans: make(map[primitive.ObjectID]*domain.TrainingPlan)}
	for i := range plans {
		p := plans[i]
		r.plans[p.ID] = &p
	}
	return r
}

func (r *fakePlanRepo) Create(_ context.Context, plan *domain.TrainingPlan) (primitive.ObjectID, error) {
	plan.ID = primitive.NewObjectID()
	for i := range plan.Entries {
		if plan.Entries[i].ID == primitive.NilObjectID {
			plan.Entries[i].ID = primitive.NewObjectID()
		}
	}
	copied := *plan
	r.plans[plan.ID] = &copied
	return plan.ID, nil
}

func (r *fakePlanRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.TrainingPlan, error) {
	p, ok := r.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakePlanRepo) GetByClientAndCoachID(_ context.Context, clientID, coachID primitive.ObjectID) ([]domain.TrainingPlan, error) {
	var out []domain.TrainingPlan
	for _, p := range r.plans {
		if p.ClientID == clientID && p.CoachID == coachID {
			out = append(out, *p)
		}
	}
	return out, nil
}
