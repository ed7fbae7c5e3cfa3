package domain

import "time"

// Streak counts consecutive days on which the user cooked with the assistant.
type Streak struct {
	UserID     string    `json:"user_id"`
	Current    int       `json:"current"`
	Longest    int       `json:"longest"`
	LastActive time.Time `json:"last_active"`
}

// Touch registers activity at now.
// Same calendar day: unchanged. Following day: Current+1. Any gap: reset to 1.
// Days are compared in now's location.
func (s *Streak) Touch(now time.Time) {
	today := day(now)
	if !s.LastActive.IsZero() {
		last := day(s.LastActive.In(now.Location()))
		switch {
		case last.Equal(today):
			return
		case last.AddDate(0, 0, 1).Equal(today):
			s.Current++
		case last.After(today):
			// Clock went backwards; keep the stored streak.
			return
		default:
			s.Current = 1
		}
	} else {
		s.Current = 1
	}

	if s.Current > s.Longest {
		s.Longest = s.Current
	}
	s.LastActive = now
}

// ActiveAt returns the streak as seen at now: zero if the last activity is
// older than yesterday.
func (s Streak) ActiveAt(now time.Time) int {
	if s.LastActive.IsZero() {
		return 0
	}
	last := day(s.LastActive.In(now.Location()))
	if last.AddDate(0, 0, 1).Before(day(now)) {
		return 0
	}
	return s.Current
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
