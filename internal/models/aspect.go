package models

import (
	"fmt"
	"strconv"
	"strings"
)

// AspectRatio is a target width:height ratio of two positive integers.
type AspectRatio struct {
	W int `json:"w"`
	H int `json:"h"`
}

// SupportedRatios is the fixed set offered to users, in display order.
var SupportedRatios = []AspectRatio{
	{1, 1}, {4, 3}, {3, 4}, {3, 2}, {2, 3},
	{16, 9}, {9, 16}, {21, 9}, {1, 2}, {2, 1},
}

// ParseAspectRatio parses "W:H" into an AspectRatio. Both sides must be
// positive integers.
func ParseAspectRatio(s string) (AspectRatio, error) {
	left, right, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return AspectRatio{}, fmt.Errorf("invalid aspect ratio %q: expected W:H", s)
	}

	w, err := strconv.Atoi(left)
	if err != nil || w <= 0 {
		return AspectRatio{}, fmt.Errorf("invalid aspect ratio %q: width must be a positive integer", s)
	}

	h, err := strconv.Atoi(right)
	if err != nil || h <= 0 {
		return AspectRatio{}, fmt.Errorf("invalid aspect ratio %q: height must be a positive integer", s)
	}

	return AspectRatio{W: w, H: h}, nil
}

func (r AspectRatio) String() string {
	return fmt.Sprintf("%d:%d", r.W, r.H)
}

func (r AspectRatio) Valid() bool {
	return r.W > 0 && r.H > 0
}

// Supported reports whether r is one of SupportedRatios.
func (r AspectRatio) Supported() bool {
	for _, s := range SupportedRatios {
		if s == r {
			return true
		}
	}
	return false
}

// SupportedRatioStrings returns SupportedRatios formatted as "W:H".
func SupportedRatioStrings() []string {
	out := make([]string, len(SupportedRatios))
	for i, r := range SupportedRatios {
		out[i] = r.String()
	}
	return out
}
