package live

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"
)

func TestHubDeliversToSubscribedGroupsOnly(t *testing.T) {
	hub := NewHub(nil)
	pharmacy := hub.Subscribe([]string{"pharmacy"}, 4)
	defer pharmacy.Close()
	admin := hub.Subscribe([]string{"admin"}, 4)
	defer admin.Close()

	err := hub.Broadcast(context.Background(), "pharmacy", Notification{
		EventType: "DrugDispensed",
		Payload:   json.RawMessage(`{}`),
		At:        time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("broadcast: %v", err)
	}

	select {
	case n := <-pharmacy.C:
		if n.Group != "pharmacy" || n.EventType != "DrugDispensed" {
			t.Fatalf("notification = %+v", n)
		}
	default:
		t.Fatal("pharmacy subscriber missed the notification")
	}

	select {
	case n := <-admin.C:
		t.Fatalf("admin received foreign notification: %+v", n)
	default:
	}
}

func TestHubDropsSlowSubscriberWithoutBlocking(t *testing.T) {
	hub := NewHub(nil)
	slow := hub.Subscribe([]string{"admin"}, 1)
	defer slow.Close()

	for i := 0; i < 3; i++ {
		err := hub.Broadcast(context.Background(), "admin", Notification{EventType: "Event"})
		if err != nil {
			t.Fatalf("broadcast %d: %v", i, err)
		}
	}

	// Buffer of one: the first notification is queued, the rest are dropped.
	if got := len(slow.C); got != 1 {
		t.Fatalf("queued = %d, want 1", got)
	}
}

func TestSubscriberCloseIsIdempotent(t *testing.T) {
	hub := NewHub(nil)
	sub := hub.Subscribe([]string{"admin"}, 1)
	sub.Close()
	sub.Close()

	if err := hub.Broadcast(context.Background(), "admin", Notification{EventType: "Event"}); err != nil {
		t.Fatalf("broadcast after close: %v", err)
	}
}

func TestFeedKeepsNewestFirstWithCap(t *testing.T) {
	feed := NewFeed(nil)
	for i := 0; i < feedCapacity+10; i++ {
		err := feed.Notify(context.Background(), fmt.Sprintf("Event%d", i), json.RawMessage(`{}`))
		if err != nil {
			t.Fatalf("notify %d: %v", i, err)
		}
	}

	recent := feed.Recent()
	if len(recent) != feedCapacity {
		t.Fatalf("recent = %d, want capped at %d", len(recent), feedCapacity)
	}
	if recent[0].EventType != fmt.Sprintf("Event%d", feedCapacity+9) {
		t.Fatalf("newest = %s, want most recent event first", recent[0].EventType)
	}
	if recent[len(recent)-1].EventType != "Event10" {
		t.Fatalf("oldest = %s, want Event10 after trimming", recent[len(recent)-1].EventType)
	}
}
