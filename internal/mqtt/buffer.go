package mqtt

// bufferedMsg stores a serialized MQTT message for replay after reconnection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// ringBuffer is a fixed-capacity FIFO holding messages published while the
// broker is unreachable. When full, the oldest message is discarded.
// Not safe for concurrent use; the caller must synchronize.
type ringBuffer struct {
	buf     []bufferedMsg
	head    int // index of the oldest message
	count   int
	dropped int // messages discarded since the last drain
}

func newRingBuffer(capacity int) *ringBuffer {
	return &ringBuffer{buf: make([]bufferedMsg, capacity)}
}

// push appends a message, discarding the oldest one if the buffer is full.
func (r *ringBuffer) push(m bufferedMsg) {
	if r.count == len(r.buf) {
		r.buf[r.head] = m
		r.head = (r.head + 1) % len(r.buf)
		r.dropped++
		return
	}
	r.buf[(r.head+r.count)%len(r.buf)] = m
	r.count++
}

// drain returns all buffered messages in arrival order along with the
// number dropped since the last drain, and empties the buffer.
func (r *ringBuffer) drain() ([]bufferedMsg, int) {
	msgs := make([]bufferedMsg, 0, r.count)
	for i := 0; i < r.count; i++ {
		msgs = append(msgs, r.buf[(r.head+i)%len(r.buf)])
	}
	dropped := r.dropped
	r.head = 0
	r.count = 0
	r.dropped = 0
	return msgs, dropped
}

// len returns the number of buffered messages.
func (r *ringBuffer) len() int {
	return r.count
}
