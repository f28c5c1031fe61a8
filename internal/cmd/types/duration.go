package types

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration is a time.Duration that can be set from a flag, environment
// variable, or config file. A number without a unit is a number of seconds,
// and a "d" suffix is a number of days.
type Duration time.Duration

func (d *Duration) String() string {
	if d == nil {
		return "0s"
	}
	return time.Duration(*d).String()
}

func (d *Duration) Set(s string) error {
	v, err := parseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d *Duration) Type() string {
	return "duration"
}

func (d Duration) Value() time.Duration {
	return time.Duration(d)
}

func parseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf(`invalid duration ""`)
	}

	if seconds, err := strconv.ParseUint(raw, 10, 32); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}

	var result time.Duration
	days, rest, ok := strings.Cut(raw, "d")
	if ok {
		raw = rest
		v, err := strconv.ParseUint(days, 10, 16)
		if err != nil {
			return 0, fmt.Errorf("invalid number of days: %v", days)
		}
		result += time.Duration(v) * 24 * time.Hour
	}

	if raw != "" {
		v, err := time.ParseDuration(raw)
		if err != nil {
			return 0, err
		}
		result += v
	}
	if result < 0 {
		return 0, fmt.Errorf("duration %v must not be negative", result)
	}
	return result, nil
}
