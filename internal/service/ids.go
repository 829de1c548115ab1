package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// newID returns "<prefix>_<unix millis>_<7 random chars>"
func newID(prefix string, now time.Time) string {
	return fmt.Sprintf("%s_%d_%s", prefix, now.UnixMilli(), randomSuffix())
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:7]
}

// timestamp is the clock used for stored times. Postgres keeps microseconds,
// so values are truncated to make in-memory and stored rows compare equal.
func timestamp() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
