package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/roach88/habitarc/internal/dates"
	"github.com/roach88/habitarc/internal/habit"
)

// DailyLogParams carry one wellbeing upsert. Scores are 1-5; zero means
// "not supplied", which preserves any stored value for that field.
type DailyLogParams struct {
	UserID string
	Date   dates.Date
	Mood   int
	Energy int
	Stress int
	Note   string
}

func validScore(v int) bool { return v >= 0 && v <= 5 }

// UpsertDailyLog records mood/energy/stress for one local day, merging into
// any existing row for that day.
func (e *Engine) UpsertDailyLog(ctx context.Context, p DailyLogParams) (*habit.DailyLog, error) {
	if !validScore(p.Mood) || !validScore(p.Energy) || !validScore(p.Stress) {
		return nil, habit.NewValidation("mood, energy and stress must be between 1 and 5")
	}
	if p.Mood == 0 && p.Energy == 0 && p.Stress == 0 && p.Note == "" {
		return nil, habit.NewValidation("daily log requires at least one field")
	}

	uc, err := e.resolveUser(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if p.Date.IsZero() {
		p.Date = uc.today
	} else if err := dates.CheckExplicitDate(p.Date, uc.today); err != nil {
		return nil, habit.NewValidation("%v", err)
	}

	now := e.now()
	logRow, err := e.store.UpsertDailyLog(ctx, habit.DailyLog{
		ID:        uuid.NewString(),
		UserID:    p.UserID,
		LogDate:   p.Date,
		Mood:      p.Mood,
		Energy:    p.Energy,
		Stress:    p.Stress,
		Note:      p.Note,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, habit.WrapPersistence("upsert daily log", err)
	}
	return logRow, nil
}

// ListDailyLogs returns the user's wellbeing rows in a range, most recent
// first. Zero bounds default to the last 30 days.
func (e *Engine) ListDailyLogs(ctx context.Context, userID string, start, end dates.Date) ([]habit.DailyLog, error) {
	uc, err := e.resolveUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if end.IsZero() {
		end = uc.today
	}
	if start.IsZero() {
		start = end.AddDays(-30)
	}
	logs, err := e.store.ListDailyLogs(ctx, userID, start, end)
	if err != nil {
		return nil, habit.WrapPersistence("list daily logs", err)
	}
	return logs, nil
}
