// Package cleanup runs the periodic purge of stale one-time codes.
package cleanup

import (
	"context"
	"log"
	"time"
)

// OTPPurger deletes used and expired codes, returning the number of
// rows removed. *repository.OTPRepo satisfies it.
type OTPPurger interface {
	PurgeStale(ctx context.Context) (int64, error)
}

// Sweeper deletes stale OTP rows on a fixed schedule. Each sweep is
// stateless and idempotent; it only ever touches rows verification can
// no longer accept, so running alongside request handling is safe.
type Sweeper struct {
	OTPs     OTPPurger
	Interval time.Duration
}

func NewSweeper(otps OTPPurger, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{OTPs: otps, Interval: interval}
}

// Run sweeps once immediately and then on every tick until ctx is
// cancelled. Sweep failures are logged and the schedule continues.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweep(ctx)

	t := time.NewTicker(s.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	n, err := s.OTPs.PurgeStale(ctx)
	if err != nil {
		log.Printf("otp-sweeper: purge failed: %v", err)
		return
	}
	log.Printf("otp-sweeper: removed %d expired/used records", n)
}
