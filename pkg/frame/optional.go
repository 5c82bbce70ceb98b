package frame

import "time"

// The helpers below turn optional typed values into record values, using NA
// for the absent ones.

func Float(v *float64) any {
	if v == nil {
		return NA
	}
	return *v
}

func String(v string) any {
	if v == "" {
		return NA
	}
	return v
}

func Bool(v *bool) any {
	if v == nil {
		return NA
	}
	return *v
}

func Duration(v *time.Duration) any {
	if v == nil {
		return NA
	}
	return *v
}

// Time maps the zero time to NA.
func Time(v time.Time) any {
	if v.IsZero() {
		return NA
	}
	return v
}
