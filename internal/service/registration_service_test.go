package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutorbook/internal/apperr"
	"tutorbook/internal/model"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("joins an open session and bumps the counter", func(t *testing.T) {
		e := newEnv(t)
		sess, err := e.sessions.Create(ctx, "tutor-1", onlineInput("Session", at(9, 0), at(10, 0), 2))
		require.NoError(t, err)

		reg, err := e.registrations.Register(ctx, sess.ID, "student-1")
		require.NoError(t, err)
		assert.Equal(t, model.RegistrationStatusJoined, reg.Status)

		got, err := e.sessions.Get(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.CurrentCount)
		assert.Equal(t, model.SessionStatusOpen, got.Status)
	})

	t.Run("unknown session", func(t *testing.T) {
		e := newEnv(t)
		_, err := e.registrations.Register(ctx, "nope", "student-1")
		requireCode(t, err, apperr.CodeNotFound)
	})

	t.Run("double registration leaves the counter alone", func(t *testing.T) {
		e := newEnv(t)
		sess, err := e.sessions.Create(ctx, "tutor-1", onlineInput("Session", at(9, 0), at(10, 0), 2))
		require.NoError(t, err)

		_, err = e.registrations.Register(ctx, sess.ID, "student-1")
		require.NoError(t, err)
		_, err = e.registrations.Register(ctx, sess.ID, "student-1")
		requireCode(t, err, apperr.CodeAlreadyRegistered)

		got, err := e.sessions.Get(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.CurrentCount)
	})

	t.Run("last seat flips the session to full", func(t *testing.T) {
		e := newEnv(t)
		sess, err := e.sessions.Create(ctx, "tutor-1", onlineInput("Session", at(9, 0), at(10, 0), 2))
		require.NoError(t, err)

		_, err = e.registrations.Register(ctx, sess.ID, "student-1")
		require.NoError(t, err)
		_, err = e.registrations.Register(ctx, sess.ID, "student-2")
		require.NoError(t, err)

		got, err := e.sessions.Get(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, model.SessionStatusFull, got.Status)
		assert.Equal(t, 2, got.CurrentCount)

		_, err = e.registrations.Register(ctx, sess.ID, "student-3")
		requireCode(t, err, apperr.CodeSessionFull)
	})

	t.Run("rejects a cancelled session", func(t *testing.T) {
		e := newEnv(t)
		sess, err := e.sessions.Create(ctx, "tutor-1", onlineInput("Session", at(9, 0), at(10, 0), 2))
		require.NoError(t, err)
		require.NoError(t, e.sessions.Cancel(ctx, sess.ID, "tutor-1"))

		_, err = e.registrations.Register(ctx, sess.ID, "student-1")
		requireCode(t, err, apperr.CodeSessionNotOpen)
	})

	t.Run("rejects an overlapping registration elsewhere", func(t *testing.T) {
		e := newEnv(t)
		first, err := e.sessions.Create(ctx, "tutor-1", onlineInput("First", at(9, 0), at(10, 0), 2))
		require.NoError(t, err)
		second, err := e.sessions.Create(ctx, "tutor-2", onlineInput("Second", at(9, 30), at(10, 30), 2))
		require.NoError(t, err)

		_, err = e.registrations.Register(ctx, first.ID, "student-1")
		require.NoError(t, err)

		_, err = e.registrations.Register(ctx, second.ID, "student-1")
		ae := requireCode(t, err, apperr.CodeScheduleConflict)

		confliction, ok := ae.Details.(*model.Session)
		require.True(t, ok)
		assert.Equal(t, first.ID, confliction.ID)
	})

	t.Run("rejoining after cancelling is allowed", func(t *testing.T) {
		e := newEnv(t)
		sess, err := e.sessions.Create(ctx, "tutor-1", onlineInput("Session", at(9, 0), at(10, 0), 2))
		require.NoError(t, err)

		first, err := e.registrations.Register(ctx, sess.ID, "student-1")
		require.NoError(t, err)
		require.NoError(t, e.registrations.Unregister(ctx, sess.ID, "student-1"))

		second, err := e.registrations.Register(ctx, sess.ID, "student-1")
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID, "a rejoin creates a fresh registration record")
	})
}

func TestUnregister(t *testing.T) {
	ctx := context.Background()

	t.Run("full session reopens when a seat frees up", func(t *testing.T) {
		e := newEnv(t)
		sess, err := e.sessions.Create(ctx, "tutor-1", onlineInput("Session", at(9, 0), at(10, 0), 2))
		require.NoError(t, err)

		_, err = e.registrations.Register(ctx, sess.ID, "student-1")
		require.NoError(t, err)
		_, err = e.registrations.Register(ctx, sess.ID, "student-2")
		require.NoError(t, err)

		require.NoError(t, e.registrations.Unregister(ctx, sess.ID, "student-2"))

		got, err := e.sessions.Get(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, model.SessionStatusOpen, got.Status)
		assert.Equal(t, 1, got.CurrentCount)

		_, err = e.registrations.Register(ctx, sess.ID, "student-3")
		assert.NoError(t, err)
	})

	t.Run("without a registration", func(t *testing.T) {
		e := newEnv(t)
		sess, err := e.sessions.Create(ctx, "tutor-1", onlineInput("Session", at(9, 0), at(10, 0), 2))
		require.NoError(t, err)

		err = e.registrations.Unregister(ctx, sess.ID, "student-1")
		requireCode(t, err, apperr.CodeNotFound)
	})

	t.Run("twice in a row", func(t *testing.T) {
		e := newEnv(t)
		sess, err := e.sessions.Create(ctx, "tutor-1", onlineInput("Session", at(9, 0), at(10, 0), 2))
		require.NoError(t, err)

		_, err = e.registrations.Register(ctx, sess.ID, "student-1")
		require.NoError(t, err)
		require.NoError(t, e.registrations.Unregister(ctx, sess.ID, "student-1"))

		err = e.registrations.Unregister(ctx, sess.ID, "student-1")
		requireCode(t, err, apperr.CodeNotFound)

		got, err := e.sessions.Get(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.CurrentCount, "counter never goes negative")
	})
}

func TestListMine(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	first, err := e.sessions.Create(ctx, "tutor-1", onlineInput("First", at(9, 0), at(10, 0), 2))
	require.NoError(t, err)
	second, err := e.sessions.Create(ctx, "tutor-2", onlineInput("Second", at(11, 0), at(12, 0), 2))
	require.NoError(t, err)

	_, err = e.registrations.Register(ctx, first.ID, "student-1")
	require.NoError(t, err)
	_, err = e.registrations.Register(ctx, second.ID, "student-1")
	require.NoError(t, err)
	require.NoError(t, e.registrations.Unregister(ctx, second.ID, "student-1"))

	regs, err := e.registrations.ListMine(ctx, "student-1")
	require.NoError(t, err)
	require.Len(t, regs, 1, "cancelled registrations are not listed")
	require.NotNil(t, regs[0].Session)
	assert.Equal(t, first.ID, regs[0].Session.ID)
	require.NotNil(t, regs[0].Session.Tutor)
	assert.Equal(t, "Tutor One", regs[0].Session.Tutor.Name)

	empty, err := e.registrations.ListMine(ctx, "student-2")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestListForSession(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	sess, err := e.sessions.Create(ctx, "tutor-1", onlineInput("Session", at(9, 0), at(10, 0), 3))
	require.NoError(t, err)
	_, err = e.registrations.Register(ctx, sess.ID, "student-1")
	require.NoError(t, err)
	_, err = e.registrations.Register(ctx, sess.ID, "student-2")
	require.NoError(t, err)

	t.Run("owner sees the roster with student info", func(t *testing.T) {
		regs, err := e.registrations.ListForSession(ctx, sess.ID, "tutor-1")
		require.NoError(t, err)
		require.Len(t, regs, 2)
		for _, reg := range regs {
			require.NotNil(t, reg.Student)
		}
	})

	t.Run("other tutors are rejected", func(t *testing.T) {
		_, err := e.registrations.ListForSession(ctx, sess.ID, "tutor-2")
		requireCode(t, err, apperr.CodeForbidden)
	})

	t.Run("unknown session", func(t *testing.T) {
		_, err := e.registrations.ListForSession(ctx, "nope", "tutor-1")
		requireCode(t, err, apperr.CodeNotFound)
	})
}
