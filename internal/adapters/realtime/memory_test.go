package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/corkboard/core/internal/domain/entities"
	"github.com/corkboard/core/internal/ports"
)

func recv(t *testing.T, ch <-chan ports.Event) ports.Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return ports.Event{}
	}
}

func TestMemoryHubFanOut(t *testing.T) {
	t.Parallel()

	hub := NewMemoryHub()
	ctx := context.Background()
	boardID := uuid.New()

	first, cancelFirst, err := hub.Subscribe(ctx, boardID)
	if err != nil {
		t.Fatal(err)
	}
	defer cancelFirst()
	second, cancelSecond, err := hub.Subscribe(ctx, boardID)
	if err != nil {
		t.Fatal(err)
	}
	defer cancelSecond()

	event := ports.Event{Type: ports.EventWidgetDeleted, BoardID: boardID, WidgetID: uuid.New()}
	if err := hub.Publish(ctx, event); err != nil {
		t.Fatal(err)
	}

	for _, ch := range []<-chan ports.Event{first, second} {
		got := recv(t, ch)
		if got.Type != event.Type || got.WidgetID != event.WidgetID {
			t.Errorf("got %+v, want %+v", got, event)
		}
	}
}

func TestMemoryHubScopedToBoard(t *testing.T) {
	t.Parallel()

	hub := NewMemoryHub()
	ctx := context.Background()

	other, cancel, err := hub.Subscribe(ctx, uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	defer cancel()

	if err := hub.Publish(ctx, ports.Event{Type: ports.EventWidgetInserted, BoardID: uuid.New()}); err != nil {
		t.Fatal(err)
	}

	select {
	case e := <-other:
		t.Errorf("event leaked across boards: %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryHubCancelStopsDelivery(t *testing.T) {
	t.Parallel()

	hub := NewMemoryHub()
	ctx := context.Background()
	boardID := uuid.New()

	ch, cancel, err := hub.Subscribe(ctx, boardID)
	if err != nil {
		t.Fatal(err)
	}
	cancel()
	// Cancel must be safe to call twice (board switch plus unmount).
	cancel()

	if err := hub.Publish(ctx, ports.Event{Type: ports.EventWidgetInserted, BoardID: boardID}); err != nil {
		t.Fatal(err)
	}

	if _, open := <-ch; open {
		t.Error("channel still open after cancel")
	}
}

func TestMemoryHubCacheRoundTrip(t *testing.T) {
	t.Parallel()

	hub := NewMemoryHub()
	ctx := context.Background()
	boardID := uuid.New()

	if _, ok := hub.GetWidgets(ctx, boardID); ok {
		t.Fatal("cold cache reported a hit")
	}

	widgets := []*entities.Widget{
		{ID: uuid.New(), BoardID: boardID, Type: entities.WidgetTypeNote},
	}
	hub.SetWidgets(ctx, boardID, widgets)

	got, ok := hub.GetWidgets(ctx, boardID)
	if !ok || len(got) != 1 || got[0].ID != widgets[0].ID {
		t.Fatalf("cache read = %v, %v", got, ok)
	}

	hub.Invalidate(ctx, boardID)
	if _, ok := hub.GetWidgets(ctx, boardID); ok {
		t.Error("cache hit after invalidation")
	}
}
