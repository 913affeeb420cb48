package circlebuf

// offset is a physical position in a backing store of some capacity.
// Arithmetic wraps modulo the capacity; a zero capacity always yields 0.
type offset int

func (o offset) add(n, capacity int) offset {
	if capacity == 0 {
		return 0
	}
	n %= capacity
	v := int(o) + n
	if v >= capacity {
		v -= capacity
	}
	return offset(v)
}

func (o offset) sub(n, capacity int) offset {
	if capacity == 0 {
		return 0
	}
	n %= capacity
	if int(o) >= n {
		return o - offset(n)
	}
	return offset(capacity - (n - int(o)))
}

// span is the half-open physical range [lo, hi).
type span struct {
	lo, hi int
}

func (s span) len() int { return s.hi - s.lo }

// spans returns the physical ranges covering n bytes starting at off.
// The second range is empty unless the window crosses the physical end.
func spans(off offset, n, capacity int) (first, second span) {
	if n == 0 {
		return
	}
	lo := int(off)
	if lo+n <= capacity {
		return span{lo, lo + n}, span{}
	}
	return span{lo, capacity}, span{0, lo + n - capacity}
}
