package schedule

import (
	"fmt"
	"time"
)

// Next holds the upcoming event of each kind. Nil means none is scheduled.
type Next struct {
	Helltide  *Event
	Legion    *Event
	WorldBoss *Event
}

// NextByKind picks the first world boss, and treats the first and second
// generic events as the next Helltide and Legion. events must be sorted.
func NextByKind(events []Event) Next {
	var next Next
	generic := 0
	for i := range events {
		e := events[i]
		switch e.Kind {
		case KindWorldBoss:
			if next.WorldBoss == nil {
				next.WorldBoss = &e
			}
		case KindEvent:
			switch generic {
			case 0:
				e.Kind = KindHelltide
				next.Helltide = &e
			case 1:
				e.Kind = KindLegion
				next.Legion = &e
			}
			generic++
		}
	}
	return next
}

// FormatCountdown renders the time left until target: "NOW" once due,
// otherwise h:mm:ss, or m:ss under an hour.
func FormatCountdown(target, now time.Time) string {
	total := int(target.Sub(now).Seconds())
	if total <= 0 {
		return "NOW"
	}
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// Lines renders the overlay text for next at now.
func Lines(next Next, now time.Time) []string {
	var lines []string
	if next.Helltide != nil {
		lines = append(lines, "Helltide: "+FormatCountdown(next.Helltide.StartsAt, now))
	}
	if next.Legion != nil {
		lines = append(lines, "Legion:   "+FormatCountdown(next.Legion.StartsAt, now))
	}
	if next.WorldBoss != nil {
		boss := next.WorldBoss.Label
		if boss == "" {
			boss = "World Boss"
		}
		lines = append(lines, fmt.Sprintf("WB (%s): %s", boss, FormatCountdown(next.WorldBoss.StartsAt, now)))
	}
	if len(lines) == 0 {
		lines = []string{"No upcoming events"}
	}
	return lines
}
