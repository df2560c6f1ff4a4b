package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutorbook/internal/apperr"
	"tutorbook/internal/model"
)

func feedbackSession(t *testing.T, e *env) string {
	t.Helper()
	ctx := context.Background()
	sess, err := e.sessions.Create(ctx, "tutor-1", onlineInput("Session", at(9, 0), at(10, 0), 3))
	require.NoError(t, err)
	_, err = e.registrations.Register(ctx, sess.ID, "student-1")
	require.NoError(t, err)
	return sess.ID
}

func TestSubmitFeedback(t *testing.T) {
	ctx := context.Background()

	ratingPtr := func(r int) *int { return &r }
	strPtr := func(s string) *string { return &s }
	statePtr := func(s model.FeedbackState) *model.FeedbackState { return &s }

	t.Run("requires a joined registration", func(t *testing.T) {
		e := newEnv(t)
		id := feedbackSession(t, e)

		_, err := e.feedback.Submit(ctx, id, "student-2", FeedbackInput{Comment: strPtr("hi")})
		requireCode(t, err, apperr.CodeNotRegistered)
	})

	t.Run("first submit creates a draft by default", func(t *testing.T) {
		e := newEnv(t)
		id := feedbackSession(t, e)

		fb, err := e.feedback.Submit(ctx, id, "student-1", FeedbackInput{Comment: strPtr("so far so good")})
		require.NoError(t, err)
		assert.Equal(t, model.FeedbackStateDraft, fb.State)
		assert.Equal(t, 0, fb.Rating)
		assert.Equal(t, "so far so good", fb.Comment)
	})

	t.Run("repeat submits merge into the same record", func(t *testing.T) {
		e := newEnv(t)
		id := feedbackSession(t, e)

		first, err := e.feedback.Submit(ctx, id, "student-1", FeedbackInput{Comment: strPtr("draft comment")})
		require.NoError(t, err)

		second, err := e.feedback.Submit(ctx, id, "student-1", FeedbackInput{
			Rating:   ratingPtr(4),
			Question: strPtr("will there be a follow-up?"),
		})
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "draft comment", second.Comment, "absent fields keep their stored value")
		assert.Equal(t, 4, second.Rating)
		assert.Equal(t, "will there be a follow-up?", second.Question)
	})

	t.Run("saving demands a rating in the request", func(t *testing.T) {
		e := newEnv(t)
		id := feedbackSession(t, e)

		_, err := e.feedback.Submit(ctx, id, "student-1", FeedbackInput{State: statePtr(model.FeedbackStateSaved)})
		requireCode(t, err, apperr.CodeValidation)

		_, err = e.feedback.Submit(ctx, id, "student-1", FeedbackInput{
			Rating: ratingPtr(0),
			State:  statePtr(model.FeedbackStateSaved),
		})
		requireCode(t, err, apperr.CodeValidation)

		fb, err := e.feedback.Submit(ctx, id, "student-1", FeedbackInput{
			Rating: ratingPtr(5),
			State:  statePtr(model.FeedbackStateSaved),
		})
		require.NoError(t, err)
		assert.Equal(t, model.FeedbackStateSaved, fb.State)
		assert.Equal(t, 5, fb.Rating)
	})

	t.Run("no feedback after unregistering", func(t *testing.T) {
		e := newEnv(t)
		id := feedbackSession(t, e)
		require.NoError(t, e.registrations.Unregister(ctx, id, "student-1"))

		_, err := e.feedback.Submit(ctx, id, "student-1", FeedbackInput{Comment: strPtr("too late")})
		requireCode(t, err, apperr.CodeNotRegistered)
	})
}

func TestGetMyFeedback(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	id := feedbackSession(t, e)

	_, err := e.feedback.GetMine(ctx, id, "student-1")
	requireCode(t, err, apperr.CodeNotFound)

	comment := "helpful session"
	_, err = e.feedback.Submit(ctx, id, "student-1", FeedbackInput{Comment: &comment})
	require.NoError(t, err)

	fb, err := e.feedback.GetMine(ctx, id, "student-1")
	require.NoError(t, err)
	assert.Equal(t, comment, fb.Comment)
}

func TestDeleteFeedback(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	id := feedbackSession(t, e)

	requireCode(t, e.feedback.Delete(ctx, id, "student-1"), apperr.CodeNotFound)

	comment := "to be removed"
	_, err := e.feedback.Submit(ctx, id, "student-1", FeedbackInput{Comment: &comment})
	require.NoError(t, err)

	require.NoError(t, e.feedback.Delete(ctx, id, "student-1"))

	_, err = e.feedback.GetMine(ctx, id, "student-1")
	requireCode(t, err, apperr.CodeNotFound)

	// A second delete finds nothing.
	requireCode(t, e.feedback.Delete(ctx, id, "student-1"), apperr.CodeNotFound)
}
