package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(hub *Hub) *Client {
	return &Client{
		Hub:    hub,
		UserID: uuid.New(),
		Send:   make(chan []byte, 8),
	}
}

func receiveEvent(t *testing.T, client *Client) *Event {
	t.Helper()
	select {
	case payload := <-client.Send:
		var event Event
		require.NoError(t, json.Unmarshal(payload, &event))
		return &event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestPublishReachesSubscribers(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	communityID := uuid.New()
	subscriber := testClient(hub)
	bystander := testClient(hub)

	hub.subscribe <- &subscription{client: subscriber, communityID: communityID}
	hub.subscribe <- &subscription{client: bystander, communityID: uuid.New()}

	hub.Publish(EventPostCreated, communityID, map[string]interface{}{"postId": "abc"})

	event := receiveEvent(t, subscriber)
	assert.Equal(t, EventPostCreated, event.Type)
	assert.Equal(t, communityID, event.CommunityID)
	assert.NotZero(t, event.Timestamp)

	select {
	case <-bystander.Send:
		t.Fatal("bystander received an event for a community it never subscribed to")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	communityID := uuid.New()
	client := testClient(hub)

	hub.subscribe <- &subscription{client: client, communityID: communityID}
	hub.Publish(EventMemberJoined, communityID, nil)
	receiveEvent(t, client)

	hub.unsubscribe <- &subscription{client: client, communityID: communityID}
	hub.Publish(EventMemberJoined, communityID, nil)

	select {
	case <-client.Send:
		t.Fatal("received an event after unsubscribing")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestUnregisterSweepsAllSubscriptions(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	first := uuid.New()
	second := uuid.New()
	client := testClient(hub)

	hub.subscribe <- &subscription{client: client, communityID: first}
	hub.subscribe <- &subscription{client: client, communityID: second}
	hub.Unregister <- client

	hub.Publish(EventPostCreated, first, nil)
	hub.Publish(EventPostCreated, second, nil)

	select {
	case <-client.Send:
		t.Fatal("received an event after unregistering")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPublishDropsWhenClientBufferFull(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	communityID := uuid.New()
	client := &Client{Hub: hub, UserID: uuid.New(), Send: make(chan []byte)}

	hub.subscribe <- &subscription{client: client, communityID: communityID}

	// No reader on Send: the hub must drop instead of blocking.
	hub.Publish(EventCommentAdded, communityID, nil)
	hub.Publish(EventCommentAdded, communityID, nil)

	// The hub loop is still responsive afterwards.
	responsive := testClient(hub)
	hub.subscribe <- &subscription{client: responsive, communityID: communityID}
	hub.Publish(EventCommentAdded, communityID, nil)
	receiveEvent(t, responsive)
}
