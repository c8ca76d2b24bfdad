// Copyright 2025 Patrick Steil
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package population

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseTime parses "H:MM:SS" or "H:MM" into seconds since midnight. Hours
// may exceed 23. A leading '-' negates the time, as written by FormatTime.
func ParseTime(s string) (float64, error) {
	t := strings.TrimSpace(s)
	sign := 1.0
	if strings.HasPrefix(t, "-") {
		sign = -1
		t = t[1:]
	}
	parts := strings.Split(t, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q", s)
	}

	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || strings.HasPrefix(p, "-") || strings.HasPrefix(p, "+") {
			return 0, fmt.Errorf("invalid time %q", s)
		}
		v[i] = n
	}
	if v[1] > 59 || v[2] > 59 {
		return 0, fmt.Errorf("invalid time %q", s)
	}

	return sign * float64(v[0]*3600+v[1]*60+v[2]), nil
}

// FormatTime formats seconds since midnight as "HH:MM:SS". Fractions of a
// second are truncated.
func FormatTime(sec float64) string {
	neg := ""
	if sec < 0 {
		neg = "-"
		sec = -sec
	}
	s := int64(math.Floor(sec))
	return fmt.Sprintf("%s%02d:%02d:%02d", neg, s/3600, (s/60)%60, s%60)
}
