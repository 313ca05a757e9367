package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// orderPrefix marks order identifiers; existing clients match on it.
const orderPrefix = "KK"

// New generates a new ULID string. ULIDs are lexicographically sortable
// by creation time and safe for use as DynamoDB partition keys.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// NewOrderID returns a sortable order identifier such as "KK01J9Z3...".
func NewOrderID() string {
	return orderPrefix + New()
}
