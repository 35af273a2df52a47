package model

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

// ID identifies a task. On the wire it is a JSON number: Unix milliseconds at
// creation plus a random fraction.
type ID float64

// NewID draws an id for a task created at now. taken reports ids that are
// already in use; the fraction is re-drawn until a free one is found.
func NewID(now time.Time, r *rand.Rand, taken func(ID) bool) ID {
	base := float64(now.UnixMilli())
	for {
		id := ID(base + r.Float64())
		if id == 0 {
			continue
		}
		if taken == nil || !taken(id) {
			return id
		}
	}
}

func (id ID) String() string {
	return strconv.FormatFloat(float64(id), 'f', -1, 64)
}

// ParseID parses the textual form produced by String.
func ParseID(raw string) (ID, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("model: invalid task id %q", raw)
	}
	if v == 0 {
		return 0, ErrZeroID
	}
	return ID(v), nil
}
