package serial

// RingSize is the storage of the transmit ring. One slot is always left
// free to tell a full ring from an empty one, so at most RingSize-1 bytes
// are queued.
const RingSize = 128

const ringMask = RingSize - 1

// ring is a fixed-size single-producer, single-consumer byte queue.
//
// It has no synchronization of its own: the owner guards it with the
// interrupt mask.
type ring struct {
	head uint8
	tail uint8
	buf  [RingSize]byte
}

// push appends b, returning false if the ring is full.
func (r *ring) push(b byte) bool {
	next := (r.head + 1) & ringMask
	if next == r.tail {
		return false
	}
	r.buf[r.head] = b
	r.head = next
	return true
}

// pop removes the oldest byte, returning false if the ring is empty.
func (r *ring) pop() (byte, bool) {
	if r.head == r.tail {
		return 0, false
	}
	b := r.buf[r.tail]
	r.tail = (r.tail + 1) & ringMask
	return b, true
}

func (r *ring) len() int {
	return int((r.head - r.tail) & ringMask)
}

func (r *ring) free() int {
	return RingSize - 1 - r.len()
}
