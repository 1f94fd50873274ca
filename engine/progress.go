package engine

import "sync/atomic"

// Progress exposes scan counters to other goroutines while an evaluation runs.
type Progress struct {
	scanned atomic.Int64
	matched atomic.Int64
}

func (p *Progress) Scanned() int64 {
	if p == nil {
		return 0
	}
	return p.scanned.Load()
}

func (p *Progress) Matched() int64 {
	if p == nil {
		return 0
	}
	return p.matched.Load()
}

func (p *Progress) add(scanned, matched int64) {
	if p == nil {
		return
	}
	p.scanned.Add(scanned)
	p.matched.Add(matched)
}
