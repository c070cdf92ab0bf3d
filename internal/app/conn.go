package app

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

// Conn is the transport handle used to push messages to a client. The id is
// opaque and assigned at accept time; the registry matches connections by id
// rather than by object identity.
type Conn interface {
	ID() string
	Send(v any) error
}

// newID builds an identifier from a random component and a time component,
// unique with overwhelming probability across the process lifetime.
func newID(prefix string) string {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	return prefix + "_" + hex.EncodeToString(buf) + "_" + strconv.FormatInt(time.Now().UnixNano(), 36)
}

// NewConnID mints an opaque connection id for transports to assign at accept.
func NewConnID() string {
	return newID("c")
}
