package ws

import (
	"context"
	"testing"

	"github.com/dkozyar/parlor/internal/infrastructure/repository"
)

func newTestLifecycle() (*Lifecycle, *Directory) {
	d := NewDirectory()
	m := newTestMetrics()
	relay := NewRelay(d, nopLogger{}, m)
	history := repository.NewHistoryRepository(16)
	return NewLifecycle(d, relay, history, nopLogger{}, m), d
}

func join(t *testing.T, l *Lifecycle, s *Session, room string) {
	t.Helper()
	l.HandleMessage(context.Background(), s, &Message{Type: RoomJoin, Room: room})
	if s.State() != StateJoined {
		t.Fatalf("session should be joined after join frame, state=%s", s.State())
	}
}

func TestJoinRepliesWithMemberList(t *testing.T) {
	l, _ := newTestLifecycle()

	aliceT := &fakeTransport{}
	alice := l.NewSession("alice", aliceT)
	join(t, l, alice, "lobby")

	bobT := &fakeTransport{}
	bob := l.NewSession("bob", bobT)
	join(t, l, bob, "lobby")

	lists := bobT.byType(MemberList)
	if len(lists) != 1 {
		t.Fatalf("expected one member list, got %d", len(lists))
	}
	if lists[0].To != "bob" {
		t.Errorf("member list must carry the joiner's own id in To, got %q", lists[0].To)
	}
	if len(lists[0].Members) != 1 || lists[0].Members[0] != "alice" {
		t.Errorf("bob should see [alice], got %v", lists[0].Members)
	}
}

func TestJoinAnnouncesToExistingMembers(t *testing.T) {
	l, _ := newTestLifecycle()

	aliceT := &fakeTransport{}
	alice := l.NewSession("alice", aliceT)
	join(t, l, alice, "lobby")

	bobT := &fakeTransport{}
	join(t, l, l.NewSession("bob", bobT), "lobby")

	joined := aliceT.byType(MemberJoined)
	if len(joined) != 1 || joined[0].From != "bob" {
		t.Fatalf("alice should learn that bob joined, got %v", joined)
	}
	if len(bobT.byType(MemberJoined)) != 0 {
		t.Error("the joiner must not receive its own join announcement")
	}
}

func TestJoinWithoutRoomKeyIsRejected(t *testing.T) {
	l, d := newTestLifecycle()

	tr := &fakeTransport{}
	s := l.NewSession("alice", tr)
	l.HandleMessage(context.Background(), s, &Message{Type: RoomJoin, Room: "   "})

	if s.State() != StateConnected {
		t.Errorf("session must stay connected after a rejected join, state=%s", s.State())
	}
	errs := tr.byType(ErrorEvent)
	if len(errs) != 1 {
		t.Fatalf("expected one error frame, got %d", len(errs))
	}
	if d.Members() != 0 {
		t.Error("nothing was registered")
	}
}

func TestDuplicateJoinMovesRooms(t *testing.T) {
	l, d := newTestLifecycle()

	redPeerT := &fakeTransport{}
	join(t, l, l.NewSession("peer", redPeerT), "red")

	aliceT := &fakeTransport{}
	alice := l.NewSession("alice", aliceT)
	join(t, l, alice, "red")
	join(t, l, alice, "blue")

	if alice.Room() != "blue" {
		t.Errorf("session room must follow the move, got %q", alice.Room())
	}
	if _, ok := d.Lookup("red", "alice"); ok {
		t.Error("alice must be gone from red")
	}

	left := redPeerT.byType(MemberLeft)
	if len(left) != 1 || left[0].From != "alice" {
		t.Fatalf("red should see alice leave, got %v", left)
	}
}

func TestRejoinSameRoomDoesNotReannounce(t *testing.T) {
	l, _ := newTestLifecycle()

	peerT := &fakeTransport{}
	join(t, l, l.NewSession("peer", peerT), "lobby")

	aliceT := &fakeTransport{}
	alice := l.NewSession("alice", aliceT)
	join(t, l, alice, "lobby")
	join(t, l, alice, "lobby")

	if got := len(peerT.byType(MemberJoined)); got != 1 {
		t.Errorf("same-room rejoin must not repeat the announcement, got %d", got)
	}
	if got := len(aliceT.byType(MemberList)); got != 2 {
		t.Errorf("every join frame gets a member list reply, got %d", got)
	}
}

func TestSignalBeforeJoinIsDropped(t *testing.T) {
	l, _ := newTestLifecycle()

	tr := &fakeTransport{}
	s := l.NewSession("alice", tr)
	l.HandleMessage(context.Background(), s, &Message{Type: SignalEvent, To: "bob", Kind: KindOffer})

	if len(tr.sent()) != 0 {
		t.Error("signaling before join is dropped without a reply")
	}
}

func TestSignalWithBadKindIsDropped(t *testing.T) {
	l, _ := newTestLifecycle()

	bobT := &fakeTransport{}
	join(t, l, l.NewSession("bob", bobT), "lobby")

	alice := l.NewSession("alice", &fakeTransport{})
	join(t, l, alice, "lobby")
	l.HandleMessage(context.Background(), alice, &Message{Type: SignalEvent, To: "bob", Kind: "bogus"})

	if len(bobT.byType(SignalEvent)) != 0 {
		t.Error("an unknown signal kind must not reach the target")
	}
}

func TestChatFanoutIncludesSender(t *testing.T) {
	l, _ := newTestLifecycle()

	aliceT := &fakeTransport{}
	alice := l.NewSession("alice", aliceT)
	join(t, l, alice, "lobby")

	bobT := &fakeTransport{}
	join(t, l, l.NewSession("bob", bobT), "lobby")

	l.HandleMessage(context.Background(), alice, &Message{Type: ChatEvent, Body: "hello"})

	for name, tr := range map[string]*fakeTransport{"alice": aliceT, "bob": bobT} {
		chats := tr.byType(ChatEvent)
		if len(chats) != 1 {
			t.Fatalf("%s should get the chat line, got %d frames", name, len(chats))
		}
		if chats[0].From != "alice" || chats[0].Body != "hello" {
			t.Errorf("%s got wrong chat frame: %+v", name, chats[0])
		}
	}
}

func TestChatHistoryReplaysToLateJoiner(t *testing.T) {
	l, _ := newTestLifecycle()

	alice := l.NewSession("alice", &fakeTransport{})
	join(t, l, alice, "lobby")
	l.HandleMessage(context.Background(), alice, &Message{Type: ChatEvent, Body: "first"})
	l.HandleMessage(context.Background(), alice, &Message{Type: ChatEvent, Body: "second"})

	bobT := &fakeTransport{}
	join(t, l, l.NewSession("bob", bobT), "lobby")

	chats := bobT.byType(ChatEvent)
	if len(chats) != 2 {
		t.Fatalf("late joiner should get the retained tail, got %d", len(chats))
	}
	if chats[0].Body != "first" || chats[1].Body != "second" {
		t.Errorf("replay must preserve order, got %q then %q", chats[0].Body, chats[1].Body)
	}
}

func TestHistoryClearedWhenRoomEmpties(t *testing.T) {
	l, _ := newTestLifecycle()

	alice := l.NewSession("alice", &fakeTransport{})
	join(t, l, alice, "lobby")
	l.HandleMessage(context.Background(), alice, &Message{Type: ChatEvent, Body: "ephemeral"})
	l.HandleClose(context.Background(), alice)

	bobT := &fakeTransport{}
	join(t, l, l.NewSession("bob", bobT), "lobby")

	if got := len(bobT.byType(ChatEvent)); got != 0 {
		t.Errorf("history must not survive an emptied room, got %d frames", got)
	}
}

func TestCloseAnnouncesDeparture(t *testing.T) {
	l, d := newTestLifecycle()

	peerT := &fakeTransport{}
	join(t, l, l.NewSession("peer", peerT), "lobby")

	alice := l.NewSession("alice", &fakeTransport{})
	join(t, l, alice, "lobby")
	l.HandleClose(context.Background(), alice)

	left := peerT.byType(MemberLeft)
	if len(left) != 1 || left[0].From != "alice" {
		t.Fatalf("peer should see alice leave, got %v", left)
	}
	if d.RoomSize("lobby") != 1 {
		t.Errorf("only the peer remains, size=%d", d.RoomSize("lobby"))
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	l, _ := newTestLifecycle()

	peerT := &fakeTransport{}
	join(t, l, l.NewSession("peer", peerT), "lobby")

	alice := l.NewSession("alice", &fakeTransport{})
	join(t, l, alice, "lobby")
	l.HandleClose(context.Background(), alice)
	l.HandleClose(context.Background(), alice)

	if got := len(peerT.byType(MemberLeft)); got != 1 {
		t.Errorf("departure must be announced exactly once, got %d", got)
	}
}

func TestFramesAfterLeaveAreDiscarded(t *testing.T) {
	l, _ := newTestLifecycle()

	peerT := &fakeTransport{}
	join(t, l, l.NewSession("peer", peerT), "lobby")

	aliceT := &fakeTransport{}
	alice := l.NewSession("alice", aliceT)
	join(t, l, alice, "lobby")
	l.HandleClose(context.Background(), alice)

	l.HandleMessage(context.Background(), alice, &Message{Type: SignalEvent, To: "peer", Kind: KindOffer})
	l.HandleMessage(context.Background(), alice, &Message{Type: ChatEvent, Body: "too late"})
	l.HandleMessage(context.Background(), alice, &Message{Type: RoomJoin, Room: "lobby"})

	if alice.State() != StateLeft {
		t.Errorf("left is terminal, state=%s", alice.State())
	}
	if got := len(peerT.byType(SignalEvent)); got != 0 {
		t.Errorf("no signal may arrive from a departed session, got %d", got)
	}
	if got := len(peerT.byType(ChatEvent)); got != 0 {
		t.Errorf("no chat may arrive from a departed session, got %d", got)
	}
}

func TestExplicitLeaveClosesTransport(t *testing.T) {
	l, _ := newTestLifecycle()

	tr := &fakeTransport{}
	s := l.NewSession("alice", tr)
	join(t, l, s, "lobby")
	l.HandleMessage(context.Background(), s, &Message{Type: RoomLeave})

	if s.State() != StateLeft {
		t.Errorf("explicit leave terminates the session, state=%s", s.State())
	}
	tr.mu.Lock()
	closed := tr.closed
	tr.mu.Unlock()
	if !closed {
		t.Error("explicit leave closes the transport")
	}
}

func TestUnknownFrameTypeIsIgnored(t *testing.T) {
	l, d := newTestLifecycle()

	tr := &fakeTransport{}
	s := l.NewSession("alice", tr)
	join(t, l, s, "lobby")
	l.HandleMessage(context.Background(), s, &Message{Type: "bogus.event"})

	if s.State() != StateJoined {
		t.Errorf("unknown frames must not disturb the session, state=%s", s.State())
	}
	if d.RoomSize("lobby") != 1 {
		t.Error("membership must be untouched")
	}
}
