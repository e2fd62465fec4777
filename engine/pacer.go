package engine

import (
	"sync/atomic"
	"time"
)

// pacer keeps a loop on a fixed cadence with deadline drift correction
// Overruns proceed immediately and are counted; falling more than two intervals
// behind resynchronises instead of bursting to catch up
type pacer struct {
	interval time.Duration
	deadline time.Time
	overruns *atomic.Int64
	timer    *time.Timer
}

func newPacer(interval time.Duration, overruns *atomic.Int64) *pacer {
	timer := time.NewTimer(0)
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	if overruns == nil {
		overruns = new(atomic.Int64)
	}
	return &pacer{interval: interval, overruns: overruns, timer: timer}
}

// start anchors the first deadline one interval after now
func (p *pacer) start(now time.Time) {
	p.deadline = now.Add(p.interval)
}

// next returns how long to sleep after a tick whose work finished at now,
// and advances the deadline for the following tick
func (p *pacer) next(now time.Time) time.Duration {
	sleep := p.deadline.Sub(now)
	if sleep < 0 {
		p.overruns.Add(1)
		if maxBehind := p.interval * 2; -sleep > maxBehind {
			p.deadline = now
		}
		sleep = 0
	}
	p.deadline = p.deadline.Add(p.interval)
	return sleep
}

// after arms the reusable timer
func (p *pacer) after(d time.Duration) <-chan time.Time {
	p.timer.Reset(d)
	return p.timer.C
}

// cancel stops the timer when a wait ended early
func (p *pacer) cancel() {
	if !p.timer.Stop() {
		select {
		case <-p.timer.C:
		default:
		}
	}
}

func (p *pacer) close() {
	p.timer.Stop()
}
