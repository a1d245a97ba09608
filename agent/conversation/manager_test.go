package conversation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/wayfarerlabs/tripmind/agent/contract"
)

// greetingFactory builds sessions whose model always greets the user by id.
func greetingFactory(userID string) *Conversation {
	model := &fakeModel{script: []contract.Completion{
		{Text: fmt.Sprintf("hello %s", userID)},
		{Text: fmt.Sprintf("hello again %s", userID)},
	}}
	return New(userID, "system", model, nil, &fakeGateway{})
}

func TestManagerRoutesPerUser(t *testing.T) {
	t.Parallel()

	m := NewManager(greetingFactory)
	ctx := context.Background()

	if reply, err := m.Chat(ctx, "alice", "hi"); err != nil || reply != "hello alice" {
		t.Fatalf("alice reply = %q, err = %v", reply, err)
	}
	if reply, err := m.Chat(ctx, "bob", "hi"); err != nil || reply != "hello bob" {
		t.Fatalf("bob reply = %q, err = %v", reply, err)
	}

	if got := m.ActiveSessions(); got != 2 {
		t.Fatalf("active sessions = %d", got)
	}
	if h := m.History("alice"); len(h) != 2 || h[1].Content != "hello alice" {
		t.Fatalf("alice history = %v", h)
	}
	if h := m.History("carol"); h != nil {
		t.Fatalf("unknown user history = %v", h)
	}
}

func TestManagerClear(t *testing.T) {
	t.Parallel()

	m := NewManager(greetingFactory)

	if _, err := m.Chat(context.Background(), "alice", "hi"); err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	m.Clear("alice")
	if h := m.History("alice"); len(h) != 0 {
		t.Fatalf("history after Clear = %v", h)
	}

	// Clearing an unknown user must not create a session.
	m.Clear("ghost")
	if got := m.ActiveSessions(); got != 1 {
		t.Fatalf("active sessions = %d", got)
	}
}

// gatedModel blocks inside Complete until released, signalling entry first.
type gatedModel struct {
	entered chan struct{}
	release chan struct{}
}

func (g *gatedModel) Complete(context.Context, string, []contract.Message, []contract.ToolDefinition) (contract.Completion, error) {
	g.entered <- struct{}{}
	<-g.release
	return contract.Completion{Text: "slow reply"}, nil
}

func TestManagerRunsUsersInParallel(t *testing.T) {
	t.Parallel()

	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	m := NewManager(func(userID string) *Conversation {
		if userID == "alice" {
			return New(userID, "system", &gatedModel{entered: entered, release: release}, nil, &fakeGateway{})
		}
		return greetingFactory(userID)
	})

	aliceDone := make(chan error, 1)
	go func() {
		_, err := m.Chat(context.Background(), "alice", "hi")
		aliceDone <- err
	}()
	<-entered

	// With alice's turn parked inside the model call, bob's whole turn and
	// his history/clear requests must still complete.
	bobDone := make(chan string, 1)
	go func() {
		reply, _ := m.Chat(context.Background(), "bob", "hi")
		bobDone <- reply
	}()
	select {
	case reply := <-bobDone:
		if reply != "hello bob" {
			t.Fatalf("bob reply = %q", reply)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("second user's chat blocked behind another user's turn")
	}

	otherDone := make(chan struct{})
	go func() {
		m.History("bob")
		m.Clear("bob")
		close(otherDone)
	}()
	select {
	case <-otherDone:
	case <-time.After(2 * time.Second):
		t.Fatal("history/clear blocked behind another user's turn")
	}

	close(release)
	if err := <-aliceDone; err != nil {
		t.Fatalf("alice Chat() error = %v", err)
	}
}

func TestManagerEvictsIdleSessions(t *testing.T) {
	t.Parallel()

	m := NewManager(greetingFactory, WithIdleTimeout(10*time.Minute))
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	if _, err := m.Chat(context.Background(), "alice", "hi"); err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	clock = clock.Add(11 * time.Minute)
	if _, err := m.Chat(context.Background(), "bob", "hi"); err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	if got := m.ActiveSessions(); got != 1 {
		t.Fatalf("active sessions after eviction = %d", got)
	}
	if h := m.History("alice"); h != nil {
		t.Fatalf("evicted session still has history: %v", h)
	}
}
