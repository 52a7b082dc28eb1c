package ids

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// New returns a lexicographically sortable identifier used as request id.
func New() string {
	return ulid.Make().String()
}

// Time returns the creation time encoded in an id produced by New.
func Time(id string) (time.Time, error) {
	u, err := ulid.ParseStrict(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(u.Time()), nil
}
