package enrollment

import (
	"context"
	"time"
)

// Scan describes a simulated capture: progress advances by Increment every
// Interval until it reaches 100, then holds for Settle before completing.
// There is no real biometric or document pipeline behind it.
type Scan struct {
	Increment int
	Interval  time.Duration
	Settle    time.Duration
}

func FaceScan() Scan {
	return Scan{Increment: 1, Interval: 45 * time.Millisecond, Settle: 1200 * time.Millisecond}
}

func DocumentScan() Scan {
	return Scan{Increment: 5, Interval: 80 * time.Millisecond, Settle: time.Second}
}

// Run drives the simulation, reporting each progress value through
// onProgress. Cancelling ctx stops the scan mid-flight and returns ctx.Err();
// a fresh Run starts over from zero.
func (s Scan) Run(ctx context.Context, onProgress func(pct int)) error {
	timer := time.NewTimer(s.Interval)
	defer timer.Stop()

	for pct := s.Increment; ; pct += s.Increment {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
		if pct > 100 {
			pct = 100
		}
		if onProgress != nil {
			onProgress(pct)
		}
		if pct >= 100 {
			break
		}
		timer.Reset(s.Interval)
	}

	timer.Reset(s.Settle)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}
	return nil
}
