package service

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"tutorbook/internal/model"
	"tutorbook/internal/repository/memory"
	"tutorbook/internal/schedule"
)

// A Monday well inside the allowed window; every test schedules on it.
var testDay = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func at(hour, min int) time.Time {
	return testDay.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

type env struct {
	store         *memory.Store
	sessions      *SessionService
	registrations *RegistrationService
	feedback      *FeedbackService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	store := memory.NewStore()
	for _, u := range []*model.User{
		{ID: "tutor-1", Email: "t1@example.edu", Name: "Tutor One", Role: model.RoleTutor,
			Profile: &model.TutorProfile{Expertise: []string{"Math"}, Bio: "bio", OfficeRoom: "B4-201"}},
		{ID: "tutor-2", Email: "t2@example.edu", Name: "Tutor Two", Role: model.RoleTutor},
		{ID: "student-1", Email: "s1@example.edu", Name: "Student One", Role: model.RoleStudent},
		{ID: "student-2", Email: "s2@example.edu", Name: "Student Two", Role: model.RoleStudent},
		{ID: "student-3", Email: "s3@example.edu", Name: "Student Three", Role: model.RoleStudent},
	} {
		store.PutUser(u)
	}

	hours := schedule.Hours{Location: time.UTC, OpenHour: 7, CloseHour: 18}
	logger := zap.NewNop()

	return &env{
		store:         store,
		sessions:      NewSessionService(store, hours, logger),
		registrations: NewRegistrationService(store, hours, logger),
		feedback:      NewFeedbackService(store, logger),
	}
}

func offlineInput(title, room string, start, end time.Time, capacity int) CreateSessionInput {
	return CreateSessionInput{
		Title:    title,
		Mode:     model.ModeOffline,
		Room:     room,
		StartAt:  start,
		EndAt:    end,
		Capacity: capacity,
		Subjects: []string{"Math"},
	}
}

func onlineInput(title string, start, end time.Time, capacity int) CreateSessionInput {
	return CreateSessionInput{
		Title:    title,
		Mode:     model.ModeOnline,
		URL:      "https://meet.example.com/" + title,
		StartAt:  start,
		EndAt:    end,
		Capacity: capacity,
	}
}
