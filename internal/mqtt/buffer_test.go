package mqtt

import (
	"fmt"
	"testing"
)

func msg(i int) bufferedMsg {
	return bufferedMsg{topic: Topic, payload: []byte(fmt.Sprintf("m%d", i)), qos: 1}
}

func TestRingBufferFIFO(t *testing.T) {
	r := newRingBuffer(4)
	for i := 0; i < 3; i++ {
		r.push(msg(i))
	}
	if r.len() != 3 {
		t.Fatalf("expected len 3, got %d", r.len())
	}

	msgs, dropped := r.drain()
	if dropped != 0 {
		t.Errorf("expected 0 dropped, got %d", dropped)
	}
	for i, m := range msgs {
		want := fmt.Sprintf("m%d", i)
		if string(m.payload) != want {
			t.Errorf("msg %d: expected %s, got %s", i, want, m.payload)
		}
	}
	if r.len() != 0 {
		t.Errorf("expected empty buffer after drain, got len %d", r.len())
	}
}

func TestRingBufferOverflowDropsOldest(t *testing.T) {
	r := newRingBuffer(3)
	for i := 0; i < 5; i++ {
		r.push(msg(i))
	}

	msgs, dropped := r.drain()
	if dropped != 2 {
		t.Errorf("expected 2 dropped, got %d", dropped)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	// Oldest two (m0, m1) were discarded.
	for i, m := range msgs {
		want := fmt.Sprintf("m%d", i+2)
		if string(m.payload) != want {
			t.Errorf("msg %d: expected %s, got %s", i, want, m.payload)
		}
	}
}

func TestRingBufferDrainResetsDropCount(t *testing.T) {
	r := newRingBuffer(1)
	r.push(msg(0))
	r.push(msg(1))
	r.drain()

	r.push(msg(2))
	msgs, dropped := r.drain()
	if dropped != 0 {
		t.Errorf("expected drop count reset after drain, got %d", dropped)
	}
	if len(msgs) != 1 || string(msgs[0].payload) != "m2" {
		t.Errorf("unexpected messages: %v", msgs)
	}
}

func TestRingBufferReuseAfterDrain(t *testing.T) {
	r := newRingBuffer(2)
	r.push(msg(0))
	r.drain()

	r.push(msg(1))
	r.push(msg(2))
	msgs, _ := r.drain()
	if len(msgs) != 2 || string(msgs[0].payload) != "m1" || string(msgs[1].payload) != "m2" {
		t.Errorf("unexpected messages after reuse: %v", msgs)
	}
}
