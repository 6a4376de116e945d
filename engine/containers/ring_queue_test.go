package containers

import (
	"errors"
	"testing"
)

func TestRingQueueFIFOAndWrap(t *testing.T) {
	rq := NewRingQueue[string](2)

	if err := rq.Enqueue("a"); err != nil {
		t.Fatal(err)
	}
	if err := rq.Enqueue("b"); err != nil {
		t.Fatal(err)
	}
	if err := rq.Enqueue("c"); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("Enqueue on full queue err = %v, want ErrQueueFull", err)
	}

	v, _ := rq.Dequeue()
	if v != "a" {
		t.Errorf("Dequeue = %q, want a", v)
	}
	if err := rq.Enqueue("c"); err != nil {
		t.Fatal(err)
	}
	if p, _ := rq.Peek(); p != "b" {
		t.Errorf("Peek = %q, want b", p)
	}

	for _, want := range []string{"b", "c"} {
		got, err := rq.Dequeue()
		if err != nil || got != want {
			t.Errorf("Dequeue = %q, %v, want %q", got, err, want)
		}
	}
	if _, err := rq.Dequeue(); !errors.Is(err, ErrQueueEmpty) {
		t.Errorf("Dequeue on empty queue err = %v, want ErrQueueEmpty", err)
	}
	if rq.Len() != 0 {
		t.Errorf("Len = %d, want 0", rq.Len())
	}
}
