package habit

import (
	"errors"
	"fmt"
	"testing"
)

func TestCanonicalName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Exercise", "exercise"},
		{"  Exercise  ", "exercise"},
		{"EXERCISE", "exercise"},
		// NFD "é" (e + combining acute) normalizes to the NFC form.
		{"Café", "café"},
	}
	for _, tc := range cases {
		if got := CanonicalName(tc.in); got != tc.want {
			t.Errorf("CanonicalName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestScheduleValidateFor(t *testing.T) {
	cases := []struct {
		name  string
		freq  Frequency
		sched Schedule
		ok    bool
	}{
		{"daily empty", FrequencyDaily, Schedule{}, true},
		{"daily with days", FrequencyDaily, Schedule{Days: []int{1}}, false},
		{"daily with target", FrequencyDaily, Schedule{TimesPerWeek: 3}, false},
		{"weekly_days valid", FrequencyWeeklyDays, Schedule{Days: []int{1, 3, 5}}, true},
		{"weekly_days empty", FrequencyWeeklyDays, Schedule{}, false},
		{"weekly_days out of range", FrequencyWeeklyDays, Schedule{Days: []int{0, 3}}, false},
		{"weekly_days eight", FrequencyWeeklyDays, Schedule{Days: []int{8}}, false},
		{"weekly_days duplicate", FrequencyWeeklyDays, Schedule{Days: []int{2, 2}}, false},
		{"weekly_days both shapes", FrequencyWeeklyDays, Schedule{Days: []int{1}, TimesPerWeek: 2}, false},
		{"weekly_target valid", FrequencyWeeklyTarget, Schedule{TimesPerWeek: 4}, true},
		{"weekly_target zero", FrequencyWeeklyTarget, Schedule{}, false},
		{"weekly_target eight", FrequencyWeeklyTarget, Schedule{TimesPerWeek: 8}, false},
		{"weekly_target with days", FrequencyWeeklyTarget, Schedule{Days: []int{1}, TimesPerWeek: 2}, false},
		{"unknown frequency", Frequency("monthly"), Schedule{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.sched.ValidateFor(tc.freq)
			if tc.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tc.ok {
				if err == nil {
					t.Fatal("expected validation error, got nil")
				}
				if !IsValidation(err) {
					t.Errorf("error is not a validation error: %v", err)
				}
			}
		})
	}
}

func TestScheduleNormalize(t *testing.T) {
	s := Schedule{Days: []int{5, 1, 3, 5, 1}}
	got := s.Normalize()
	want := []int{1, 3, 5}
	if len(got.Days) != len(want) {
		t.Fatalf("Normalize() days = %v, want %v", got.Days, want)
	}
	for i := range want {
		if got.Days[i] != want[i] {
			t.Fatalf("Normalize() days = %v, want %v", got.Days, want)
		}
	}
}

func TestErrorCodePredicates(t *testing.T) {
	cases := []struct {
		err  error
		pred func(error) bool
	}{
		{NewValidation("bad"), IsValidation},
		{NewNotFound("gone"), IsNotFound},
		{NewConflict("clash"), IsConflict},
		{NewForbidden("nope"), IsForbidden},
		{WrapPersistence("db", errors.New("io")), IsPersistence},
	}
	for _, tc := range cases {
		if !tc.pred(tc.err) {
			t.Errorf("predicate failed for %v", tc.err)
		}
		// Predicates must see through wrapping.
		wrapped := fmt.Errorf("outer: %w", tc.err)
		if !tc.pred(wrapped) {
			t.Errorf("predicate failed for wrapped %v", tc.err)
		}
	}
	if IsValidation(errors.New("plain")) {
		t.Error("IsValidation matched a plain error")
	}
	if IsNotFound(NewValidation("bad")) {
		t.Error("IsNotFound matched a validation error")
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := WrapPersistence("write counters", cause)
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not find the wrapped cause")
	}
}
