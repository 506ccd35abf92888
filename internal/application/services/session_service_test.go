package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corkboard/core/internal/domain/entities"
	"github.com/corkboard/core/internal/ports"
)

func newSessionFixture(t *testing.T) (*SessionService, *WidgetService, *fakeWidgetRepo) {
	t.Helper()
	widgets, repo, _ := newWidgetFixture(t)
	return NewSessionService(widgets, testLogger(t)), widgets, repo
}

func TestDragLifecycle(t *testing.T) {
	sessions, widgets, repo := newSessionFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	w := mustAdd(t, widgets, uuid.New(), ports.CreateWidgetRequest{
		Type: entities.WidgetTypeNote, X: 100, Y: 200,
	})

	started, err := sessions.StartDrag(ctx, userID, w.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.Position{X: 100, Y: 200}, started.Position)

	// Intermediate moves only update the live position.
	live, err := sessions.MoveDrag(userID, 30.6, -20.2)
	require.NoError(t, err)
	assert.Equal(t, entities.Position{X: 130.6, Y: 179.8}, live)

	writesBefore := repo.positionN

	committed, err := sessions.EndDrag(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, committed)

	// Final position commits once, with rounded integer coordinates.
	assert.Equal(t, entities.Position{X: 131, Y: 180}, *committed)
	assert.Equal(t, writesBefore+1, repo.positionN)

	stored, err := widgets.GetWidget(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.Position{X: 131, Y: 180}, stored.Position)
}

func TestDragZeroDeltaIsNoOp(t *testing.T) {
	sessions, widgets, repo := newSessionFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	w := mustAdd(t, widgets, uuid.New(), ports.CreateWidgetRequest{
		Type: entities.WidgetTypeNote, X: 50, Y: 60,
	})

	_, err := sessions.StartDrag(ctx, userID, w.ID)
	require.NoError(t, err)

	// Wander and come back: the cumulative delta is what counts.
	_, err = sessions.MoveDrag(userID, 40, 40)
	require.NoError(t, err)
	_, err = sessions.MoveDrag(userID, 0, 0)
	require.NoError(t, err)

	writesBefore := repo.positionN
	committed, err := sessions.EndDrag(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, committed)
	assert.Equal(t, writesBefore, repo.positionN, "zero-delta drag must not write")
}

func TestDragSingleSlot(t *testing.T) {
	sessions, widgets, _ := newSessionFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	boardID := uuid.New()

	a := mustAdd(t, widgets, boardID, ports.CreateWidgetRequest{Type: entities.WidgetTypeNote, X: 0, Y: 0})
	b := mustAdd(t, widgets, boardID, ports.CreateWidgetRequest{Type: entities.WidgetTypeNote, X: 10, Y: 10})

	_, err := sessions.StartDrag(ctx, userID, a.ID)
	require.NoError(t, err)

	_, err = sessions.StartDrag(ctx, userID, b.ID)
	assert.ErrorIs(t, err, entities.ErrDragInProgress)

	// Ending the first drag frees the slot.
	_, err = sessions.EndDrag(ctx, userID)
	require.NoError(t, err)
	_, err = sessions.StartDrag(ctx, userID, b.ID)
	assert.NoError(t, err)
}

func TestDragClampsToContainer(t *testing.T) {
	sessions, widgets, _ := newSessionFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	w := mustAdd(t, widgets, uuid.New(), ports.CreateWidgetRequest{
		Type: entities.WidgetTypeNote, X: 100, Y: 100,
	})

	_, err := sessions.StartDrag(ctx, userID, w.ID)
	require.NoError(t, err)

	// Yank far past the container edge: clamped to origin.
	live, err := sessions.MoveDrag(userID, -5000, -5000)
	require.NoError(t, err)
	assert.Equal(t, entities.Position{X: 0, Y: 0}, live)

	committed, err := sessions.EndDrag(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, committed)
	assert.Equal(t, entities.Position{X: 0, Y: 0}, *committed)
}

func TestDragWithoutStart(t *testing.T) {
	sessions, _, _ := newSessionFixture(t)

	_, err := sessions.MoveDrag(uuid.New(), 5, 5)
	assert.ErrorIs(t, err, entities.ErrNoDragInProgress)

	_, err = sessions.EndDrag(context.Background(), uuid.New())
	assert.ErrorIs(t, err, entities.ErrNoDragInProgress)
}

func TestDragCommitFailureSurfacesAndFreesSlot(t *testing.T) {
	sessions, widgets, repo := newSessionFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	w := mustAdd(t, widgets, uuid.New(), ports.CreateWidgetRequest{
		Type: entities.WidgetTypeNote, X: 10, Y: 10,
	})

	_, err := sessions.StartDrag(ctx, userID, w.ID)
	require.NoError(t, err)
	_, err = sessions.MoveDrag(userID, 25, 25)
	require.NoError(t, err)

	repo.positionErr = errors.New("connection reset")
	_, err = sessions.EndDrag(ctx, userID)
	assert.Error(t, err)

	// The slot must not stay stuck behind the failed commit.
	repo.positionErr = nil
	_, err = sessions.StartDrag(ctx, userID, w.ID)
	assert.NoError(t, err)
}

func TestLivePositionVisibleDuringDrag(t *testing.T) {
	sessions, widgets, _ := newSessionFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	w := mustAdd(t, widgets, uuid.New(), ports.CreateWidgetRequest{
		Type: entities.WidgetTypeNote, X: 10, Y: 20,
	})

	if _, ok := sessions.LivePosition(userID, w.ID); ok {
		t.Fatal("live position reported outside a drag")
	}

	_, err := sessions.StartDrag(ctx, userID, w.ID)
	require.NoError(t, err)
	_, err = sessions.MoveDrag(userID, 4, 6)
	require.NoError(t, err)

	live, ok := sessions.LivePosition(userID, w.ID)
	require.True(t, ok)
	assert.Equal(t, entities.Position{X: 14, Y: 26}, live)

	_, err = sessions.EndDrag(ctx, userID)
	require.NoError(t, err)
	if _, ok := sessions.LivePosition(userID, w.ID); ok {
		t.Fatal("live position lingered after drag end")
	}
}

func TestSelectionActions(t *testing.T) {
	sessions, widgets, repo := newSessionFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	w := mustAdd(t, widgets, uuid.New(), ports.CreateWidgetRequest{
		Type: entities.WidgetTypeNote, X: 10, Y: 10,
	})

	// Nothing selected: every action is a quiet no-op.
	rotated, err := sessions.RotateSelected(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, rotated)
	require.NoError(t, sessions.DeleteSelected(ctx, userID))
	assert.Len(t, repo.widgets, 1)

	sessions.Select(userID, w.ID)
	selected, ok := sessions.Selected(userID)
	require.True(t, ok)
	assert.Equal(t, w.ID, selected)

	rotated, err = sessions.RotateSelected(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, rotated)

	// Clicking the background clears the selection.
	sessions.ClearSelection(userID)
	_, ok = sessions.Selected(userID)
	assert.False(t, ok)
}

func TestDeleteSelectedClearsSelection(t *testing.T) {
	sessions, widgets, repo := newSessionFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	w := mustAdd(t, widgets, uuid.New(), ports.CreateWidgetRequest{
		Type: entities.WidgetTypeNote, X: 10, Y: 10,
	})

	sessions.Select(userID, w.ID)
	require.NoError(t, sessions.DeleteSelected(ctx, userID))

	assert.Empty(t, repo.widgets)
	_, ok := sessions.Selected(userID)
	assert.False(t, ok)

	// Deleting again with the now-empty selection stays a no-op.
	require.NoError(t, sessions.DeleteSelected(ctx, userID))
}

func TestSessionsIsolatedPerUser(t *testing.T) {
	sessions, widgets, _ := newSessionFixture(t)
	ctx := context.Background()
	alice := uuid.New()
	bob := uuid.New()
	boardID := uuid.New()

	a := mustAdd(t, widgets, boardID, ports.CreateWidgetRequest{Type: entities.WidgetTypeNote, X: 0, Y: 0})
	b := mustAdd(t, widgets, boardID, ports.CreateWidgetRequest{Type: entities.WidgetTypeNote, X: 10, Y: 10})

	_, err := sessions.StartDrag(ctx, alice, a.ID)
	require.NoError(t, err)

	// One user's active drag must not block another's.
	_, err = sessions.StartDrag(ctx, bob, b.ID)
	assert.NoError(t, err)
}
