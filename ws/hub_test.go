package ws

import (
	"io"
	"log"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kmcheng/discusshub-backend/db/model"
)

func newTestClient(h *Hub, uid, did uint, groupID *uint, creator bool) *Client {
	u := &model.User{}
	u.ID = uid
	return NewClient(&ClientCfg{
		Logger:       log.New(io.Discard, "", 0),
		Hub:          h,
		User:         u,
		DiscussionID: did,
		GroupID:      groupID,
		Creator:      creator,
	})
}

func join(t *testing.T, h *Hub, cs ...*Client) {
	t.Helper()
	for _, c := range cs {
		h.register <- c
	}
	dead := time.Now().Add(time.Second)
	for atomic.LoadInt64(&h.count) != int64(len(cs)) {
		if time.Now().After(dead) {
			t.Fatal("clients not registered in time")
		}
		time.Sleep(time.Millisecond)
	}
}

func recv(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case b := <-c.send:
		return b
	case <-time.After(time.Second):
		t.Fatal("no payload received")
		return nil
	}
}

func assertSilent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case b := <-c.send:
		t.Fatalf("unexpected payload: %s", b)
	case <-time.After(50 * time.Millisecond):
	}
}

func ptr(v uint) *uint { return &v }

func TestBroadcastGroupScoped(t *testing.T) {
	h := NewHub()
	go h.Run()

	sender := newTestClient(h, 1, 100, ptr(10), false)
	sameGroup := newTestClient(h, 2, 100, ptr(10), false)
	otherGroup := newTestClient(h, 3, 100, ptr(20), false)
	creator := newTestClient(h, 4, 100, nil, true)
	otherRoom := newTestClient(h, 5, 200, ptr(10), false)
	join(t, h, sender, sameGroup, otherGroup, creator, otherRoom)

	payload := []byte(`{"type":"message"}`)
	h.Broadcast(100, 1, ptr(10), payload)

	if got := recv(t, sameGroup); string(got) != string(payload) {
		t.Errorf("same-group payload = %s", got)
	}
	recv(t, creator)
	assertSilent(t, sender)
	assertSilent(t, otherGroup)
	assertSilent(t, otherRoom)
}

func TestBroadcastUngroupedReachesEveryGroup(t *testing.T) {
	h := NewHub()
	go h.Run()

	g1 := newTestClient(h, 2, 100, ptr(10), false)
	g2 := newTestClient(h, 3, 100, ptr(20), false)
	join(t, h, g1, g2)

	h.Broadcast(100, 1, nil, []byte("x"))
	recv(t, g1)
	recv(t, g2)
}

func TestBroadcastSkipsAllSenderConnections(t *testing.T) {
	h := NewHub()
	go h.Run()

	// same user connected twice
	c1 := newTestClient(h, 1, 100, ptr(10), false)
	c2 := newTestClient(h, 1, 100, ptr(10), false)
	peer := newTestClient(h, 2, 100, ptr(10), false)
	join(t, h, c1, c2, peer)

	h.Broadcast(100, 1, ptr(10), []byte("x"))
	recv(t, peer)
	assertSilent(t, c1)
	assertSilent(t, c2)
}

func TestTypingExcludesOriginOnly(t *testing.T) {
	h := NewHub()
	go h.Run()

	origin := newTestClient(h, 1, 100, ptr(10), false)
	sameUserElsewhere := newTestClient(h, 1, 100, ptr(10), false)
	peer := newTestClient(h, 2, 100, ptr(20), false)
	join(t, h, origin, sameUserElsewhere, peer)

	h.Typing(origin, []byte("typing"))
	recv(t, sameUserElsewhere)
	recv(t, peer)
	assertSilent(t, origin)
}

func TestUnregisterLeavesRoom(t *testing.T) {
	h := NewHub()
	go h.Run()

	c := newTestClient(h, 1, 100, ptr(10), false)
	peer := newTestClient(h, 2, 100, ptr(10), false)
	join(t, h, c, peer)

	h.unregister <- peer
	dead := time.Now().Add(time.Second)
	for atomic.LoadInt64(&h.count) != 1 {
		if time.Now().After(dead) {
			t.Fatal("client not unregistered in time")
		}
		time.Sleep(time.Millisecond)
	}

	if _, ok := <-peer.send; ok {
		t.Error("send channel still open after unregister")
	}
	h.Broadcast(100, 3, ptr(10), []byte("x"))
	recv(t, c)
}
