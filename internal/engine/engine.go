package engine

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/roach88/habitarc/internal/dates"
	"github.com/roach88/habitarc/internal/entitlement"
	"github.com/roach88/habitarc/internal/habit"
	"github.com/roach88/habitarc/internal/store"
)

// Engine executes habit and ledger operations against a Store.
type Engine struct {
	store *store.Store
	now   func() time.Time
	log   *log.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the wall clock. Tests pin it to a fixed instant.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger overrides the default logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// New creates an Engine over the given store.
func New(s *store.Store, opts ...Option) *Engine {
	e := &Engine{
		store: s,
		now:   time.Now,
		log:   log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// userContext is the resolved identity for one operation: the user record,
// their zone, and today's bucket in that zone.
type userContext struct {
	user  *store.User
	loc   *time.Location
	today dates.Date
}

func (e *Engine) resolveUser(ctx context.Context, userID string) (*userContext, error) {
	u, err := e.store.GetUser(ctx, userID)
	if err != nil {
		return nil, habit.WrapPersistence("load user", err)
	}
	if u == nil {
		return nil, habit.NewNotFound("user %s not found", userID)
	}
	loc, err := dates.LoadZone(u.Timezone)
	if err != nil {
		return nil, habit.NewValidation("user %s has unusable timezone %q", userID, u.Timezone)
	}
	return &userContext{
		user:  u,
		loc:   loc,
		today: dates.LocalToday(e.now(), loc),
	}, nil
}

// limits resolves the entitlement gate for a user.
func (e *Engine) limits(u *store.User) entitlement.Limits {
	return entitlement.ForTier(entitlement.Tier(u.Tier))
}

// RegisterUser creates or updates the local user record. The timezone is
// validated here once; operations after this trust the stored value.
func (e *Engine) RegisterUser(ctx context.Context, userID, timezone string, tier entitlement.Tier) error {
	if _, err := dates.LoadZone(timezone); err != nil {
		return habit.NewValidation("timezone: %v", err)
	}
	if tier == "" {
		tier = entitlement.TierFree
	}
	err := e.store.UpsertUser(ctx, store.User{
		ID:        userID,
		Timezone:  timezone,
		Tier:      string(tier),
		CreatedAt: e.now(),
	})
	if err != nil {
		return habit.WrapPersistence("register user", err)
	}
	return nil
}

// CreateHabitParams are the caller-supplied fields for a new habit.
// Zero-valued optional fields take defaults.
type CreateHabitParams struct {
	UserID       string
	Name         string
	Description  string
	Color        string
	Icon         string
	Frequency    habit.Frequency
	Schedule     habit.Schedule
	TargetPerDay int
}

// CreateHabit validates, gates on entitlements, and persists a new habit
// with its schedule rows.
func (e *Engine) CreateHabit(ctx context.Context, p CreateHabitParams) (*habit.Habit, error) {
	if p.Name == "" {
		return nil, habit.NewValidation("habit name is required")
	}
	if p.Frequency == "" {
		p.Frequency = habit.FrequencyDaily
	}
	if !p.Frequency.Valid() {
		return nil, habit.NewValidation("unknown frequency %q", p.Frequency)
	}
	if err := p.Schedule.ValidateFor(p.Frequency); err != nil {
		return nil, err
	}
	if p.TargetPerDay == 0 {
		p.TargetPerDay = 1
	}
	if p.TargetPerDay < 1 {
		return nil, habit.NewValidation("target_per_day must be at least 1")
	}
	if p.Color == "" {
		p.Color = habit.DefaultColor
	}
	if p.Icon == "" {
		p.Icon = habit.DefaultIcon
	}

	uc, err := e.resolveUser(ctx, p.UserID)
	if err != nil {
		return nil, err
	}

	if existing, err := e.store.FindHabitByName(ctx, p.UserID, p.Name); err != nil {
		return nil, habit.WrapPersistence("check name", err)
	} else if existing != nil {
		return nil, habit.NewConflict("a habit named %q already exists", existing.Name)
	}

	limits := e.limits(uc.user)
	count, err := e.store.CountActiveHabits(ctx, p.UserID)
	if err != nil {
		return nil, habit.WrapPersistence("count habits", err)
	}
	if !limits.CanCreateHabit(count) {
		return nil, habit.NewForbidden("habit limit reached for tier %s", uc.user.Tier)
	}
	if !limits.CanUseFrequency(p.Frequency) {
		return nil, habit.NewForbidden("frequency %s not available on tier %s", p.Frequency, uc.user.Tier)
	}

	now := e.now()
	h := &habit.Habit{
		ID:           uuid.NewString(),
		UserID:       p.UserID,
		Name:         p.Name,
		Description:  p.Description,
		Color:        p.Color,
		Icon:         p.Icon,
		Frequency:    p.Frequency,
		TargetPerDay: p.TargetPerDay,
		SortOrder:    count,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := e.store.CreateHabit(ctx, h, p.Schedule.Normalize(), uc.today); err != nil {
		return nil, habit.WrapPersistence("create habit", err)
	}
	e.log.Debug("habit created", "habit", h.ID, "user", p.UserID, "frequency", p.Frequency)
	return h, nil
}

// ArchiveHabit soft-deletes a habit; its completion history stays.
func (e *Engine) ArchiveHabit(ctx context.Context, userID, habitID string) error {
	archived, err := e.store.ArchiveHabit(ctx, userID, habitID)
	if err != nil {
		return habit.WrapPersistence("archive habit", err)
	}
	if !archived {
		return habit.NewNotFound("habit %s not found", habitID)
	}
	return nil
}

// ChangeSchedule swaps a habit's frequency and schedule shape.
func (e *Engine) ChangeSchedule(ctx context.Context, userID, habitID string, freq habit.Frequency, sched habit.Schedule) error {
	if !freq.Valid() {
		return habit.NewValidation("unknown frequency %q", freq)
	}
	if err := sched.ValidateFor(freq); err != nil {
		return err
	}
	uc, err := e.resolveUser(ctx, userID)
	if err != nil {
		return err
	}
	if !e.limits(uc.user).CanUseFrequency(freq) {
		return habit.NewForbidden("frequency %s not available on tier %s", freq, uc.user.Tier)
	}
	h, err := e.activeHabit(ctx, userID, habitID)
	if err != nil {
		return err
	}
	if err := e.store.ReplaceSchedule(ctx, h.ID, freq, sched.Normalize()); err != nil {
		return habit.WrapPersistence("replace schedule", err)
	}
	return nil
}

// FindHabit resolves a habit by display name (case- and width-insensitive).
func (e *Engine) FindHabit(ctx context.Context, userID, name string) (*habit.Habit, error) {
	h, err := e.store.FindHabitByName(ctx, userID, name)
	if err != nil {
		return nil, habit.WrapPersistence("find habit", err)
	}
	if h == nil || h.Archived {
		return nil, habit.NewNotFound("no habit named %q", name)
	}
	return h, nil
}

// activeHabit fetches a habit and rejects missing or soft-deleted ones.
func (e *Engine) activeHabit(ctx context.Context, userID, habitID string) (*habit.Habit, error) {
	h, err := e.store.GetHabit(ctx, userID, habitID)
	if err != nil {
		return nil, habit.WrapPersistence("load habit", err)
	}
	if h == nil || h.Archived {
		return nil, habit.NewNotFound("habit %s not found", habitID)
	}
	return h, nil
}
