package harness

import "github.com/KuzmaKhrabrov/nequip/internal/data"

// Pool wraps the sampled frames in an infinite cyclic cursor. The pool owns
// the frames and stays read-only: every retrieval hands out a deep copy, so
// scratch fields written into a frame by the model never corrupt later
// iterations.
type Pool struct {
	frames []data.Frame
	next   int
}

// NewPool takes ownership of the sampled frames.
func NewPool(frames []data.Frame) *Pool {
	return &Pool{frames: frames}
}

// Len returns the number of distinct frames in the pool.
func (p *Pool) Len() int { return len(p.frames) }

// Next returns a fresh copy of the next frame in round-robin order.
func (p *Pool) Next() data.Frame {
	fr := p.frames[p.next%len(p.frames)]
	p.next++
	return fr.Copy()
}

// Reset restarts the cursor at the first frame.
func (p *Pool) Reset() { p.next = 0 }
