package notification

import (
	"fmt"
	"time"

	"flowdesk/models"
)

// parseClock converts an "HH:MM" wall-clock string to minutes after
// midnight.
func parseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid clock value %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	return h*60 + m, nil
}

// quietHoursActive reports whether now falls inside the configured quiet
// window. Boundaries are inclusive. A window with start > end wraps
// midnight: active during [start, 24:00) and [00:00, end].
func quietHoursActive(q models.QuietHours, now time.Time) bool {
	if !q.Enabled {
		return false
	}
	start, err := parseClock(q.Start)
	if err != nil {
		return false
	}
	end, err := parseClock(q.End)
	if err != nil {
		return false
	}

	cur := now.Hour()*60 + now.Minute()
	if start <= end {
		return cur >= start && cur <= end
	}
	return cur >= start || cur <= end
}
