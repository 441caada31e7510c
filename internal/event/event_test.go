package event

import (
	"errors"
	"testing"
)

func TestNotifyOrder(t *testing.T) {
	ev := New[int]()
	var got []int
	ev.Subscribe(func(a *Args[int]) { got = append(got, a.Data*10+1) })
	ev.Subscribe(func(a *Args[int]) { got = append(got, a.Data*10+2) })

	if !ev.Notify(3, nil) {
		t.Error("Notify should return true when nobody stops")
	}
	if len(got) != 2 || got[0] != 31 || got[1] != 32 {
		t.Errorf("handlers ran as %v, want [31 32]", got)
	}
}

func TestStopDoesNotSkipLaterHandlers(t *testing.T) {
	ev := New[string]()
	var secondSawStop bool
	ev.Subscribe(func(a *Args[string]) { a.Stop() })
	ev.Subscribe(func(a *Args[string]) { secondSawStop = a.Stopped() })

	if ev.Notify("x", nil) {
		t.Error("Notify should return false after Stop")
	}
	if !secondSawStop {
		t.Error("second handler should run and observe Stopped")
	}
}

func TestNativePassedThrough(t *testing.T) {
	ev := New[int]()
	var native any
	ev.Subscribe(func(a *Args[int]) { native = a.Native })
	ev.Notify(1, "key")
	if native != "key" {
		t.Errorf("Native = %v, want key", native)
	}
}

func TestUnsubscribe(t *testing.T) {
	ev := New[int]()
	calls := 0
	sub := ev.Subscribe(func(*Args[int]) { calls++ })

	if err := ev.Unsubscribe(sub); err != nil {
		t.Fatalf("Unsubscribe: %v", err)
	}
	ev.Notify(1, nil)
	if calls != 0 {
		t.Errorf("calls = %d after unsubscribe", calls)
	}
	if err := ev.Unsubscribe(sub); !errors.Is(err, ErrSubscriptionNotFound) {
		t.Errorf("second Unsubscribe = %v, want ErrSubscriptionNotFound", err)
	}
	if sub.Active() {
		t.Error("subscription should be inactive")
	}
}

func TestUnsubscribeDuringNotify(t *testing.T) {
	ev := New[int]()
	var later *Subscription
	laterCalls := 0
	ev.Subscribe(func(*Args[int]) { _ = later.Cancel() })
	later = ev.Subscribe(func(*Args[int]) { laterCalls++ })

	ev.Notify(1, nil)
	if laterCalls != 0 {
		t.Error("handler cancelled mid-notify should not run")
	}
	if ev.Len() != 1 {
		t.Errorf("Len() = %d, want 1", ev.Len())
	}
}

func TestSubscribeDuringNotify(t *testing.T) {
	ev := New[int]()
	added := 0
	ev.Subscribe(func(*Args[int]) {
		ev.Subscribe(func(*Args[int]) { added++ })
	})

	ev.Notify(1, nil)
	if added != 0 {
		t.Error("handler added mid-notify should wait for the next notify")
	}
	ev.Notify(2, nil)
	if added != 1 {
		t.Errorf("added = %d, want 1", added)
	}
}

func TestReentrantNotify(t *testing.T) {
	ev := New[int]()
	var seen []int
	ev.Subscribe(func(a *Args[int]) {
		seen = append(seen, a.Data)
		if a.Data < 3 {
			ev.Notify(a.Data+1, nil)
		}
	})
	ev.Notify(1, nil)
	if len(seen) != 3 {
		t.Errorf("seen = %v, want three nested notifications", seen)
	}
}

func TestSubscribeNilPanics(t *testing.T) {
	defer func() {
		if r := recover(); r != ErrNilHandler {
			t.Errorf("recover() = %v, want ErrNilHandler", r)
		}
	}()
	New[int]().Subscribe(nil)
}

func TestClear(t *testing.T) {
	ev := New[int]()
	sub := ev.Subscribe(func(*Args[int]) {})
	ev.Clear()
	if ev.Len() != 0 || sub.Active() {
		t.Error("Clear should remove and deactivate handlers")
	}
}

func TestGroup(t *testing.T) {
	a := New[int]()
	b := New[string]()
	g := NewGroup()

	var calls int
	Attach(g, a, func(*Args[int]) { calls++ })
	sb := Attach(g, b, func(*Args[string]) { calls++ })

	if g.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", g.Len())
	}

	if err := g.Detach(sb); err != nil {
		t.Fatalf("Detach: %v", err)
	}
	b.Notify("x", nil)
	if calls != 0 {
		t.Error("detached handler ran")
	}

	g.UnsubscribeAll()
	a.Notify(1, nil)
	if calls != 0 || a.Len() != 0 || g.Len() != 0 {
		t.Error("UnsubscribeAll should remove every handler")
	}

	if err := g.Detach(sb); !errors.Is(err, ErrSubscriptionNotFound) {
		t.Errorf("Detach of unknown = %v", err)
	}
}
