package sensor

import "sync"

// motionBufferSize bounds the samples queued per subscriber between ticks.
// Devicemotion fires at ~60 Hz, so this covers several dropped frames.
const motionBufferSize = 64

// MotionSubscription is one session's view of the motion stream.
type MotionSubscription struct {
	ID int
	C  <-chan MotionSample
}

// MotionHub fans motion samples out to every subscribed session.
// Delivery never blocks the publisher: a full subscriber drops samples.
type MotionHub struct {
	mu     sync.RWMutex
	subs   map[int]chan MotionSample
	nextID int
}

// NewMotionHub creates an empty hub.
func NewMotionHub() *MotionHub {
	return &MotionHub{
		subs:   make(map[int]chan MotionSample),
		nextID: 1,
	}
}

// Subscribe registers a new subscriber.
func (h *MotionHub) Subscribe() *MotionSubscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan MotionSample, motionBufferSize)
	h.subs[id] = ch
	return &MotionSubscription{ID: id, C: ch}
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *MotionHub) Unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

// Publish delivers a sample to every subscriber.
func (h *MotionHub) Publish(s MotionSample) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs {
		select {
		case ch <- s:
		default:
			// Subscriber is not draining (not foreground); drop
		}
	}
}

// Subscribers returns the current subscriber count.
func (h *MotionHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Drain appends every queued sample to dst without blocking. The second
// result is false once the subscription has been closed.
func (s *MotionSubscription) Drain(dst []MotionSample) ([]MotionSample, bool) {
	for {
		select {
		case sample, ok := <-s.C:
			if !ok {
				return dst, false
			}
			dst = append(dst, sample)
		default:
			return dst, true
		}
	}
}
