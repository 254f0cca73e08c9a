// Package idgen generates the time-ordered identifiers used for message ids,
// folder entry ids and conversation discriminators.
//
// Identifiers are version 7 UUIDs in their canonical string form. Their
// string order is their creation order: the leading 48 bits hold the Unix
// time in milliseconds and the next 12 bits are a per-process sequence, so
// ids generated by one process never go backwards and ids minted in the same
// millisecond by concurrent callers still differ in their random tail.
package idgen

import (
	"encoding/binary"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotTimeOrdered is returned by Time for ids that carry no timestamp
var ErrNotTimeOrdered = errors.New("id is not a time-ordered uuid")

// New returns a fresh identifier. It never blocks and never fails.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Only a failing entropy source gets here.
		return uuid.New().String()
	}
	return id.String()
}

// Time returns the creation time embedded in id, with millisecond precision.
func Time(id string) (time.Time, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return time.Time{}, err
	}
	if u.Version() != 7 {
		return time.Time{}, ErrNotTimeOrdered
	}
	ms := int64(binary.BigEndian.Uint64(u[:8]) >> 16)
	return time.UnixMilli(ms), nil
}

// Compare orders two ids by creation time, like strings.Compare.
func Compare(a, b string) int {
	return strings.Compare(a, b)
}
