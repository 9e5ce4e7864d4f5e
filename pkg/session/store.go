// Package session keeps instructor sessions on the server, keyed by an opaque id carried in a
// signed cookie. Flash messages are one-shot: TakeFlash reads and clears them in one step.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a session id has no live record.
var ErrNotFound = errors.New("session not found")

// Identity is the authenticated instructor bound to a session.
type Identity struct {
	InstructorID    int64
	InstructorName  string
	InstructorEmail string
}

// FlashKind selects which one-shot message slot to write.
type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
)

// Flash carries the pending one-shot messages.
type Flash struct {
	Success string
	Error   string
}

// Empty reports whether no message is pending.
func (f Flash) Empty() bool {
	return f.Success == "" && f.Error == ""
}

// Data is the stored state of one session.
type Data struct {
	Identity Identity
	Flash    Flash
}

// Authenticated reports whether an instructor is bound to the session.
func (d Data) Authenticated() bool {
	return d.Identity.InstructorID > 0
}

// Store persists session data. Implementations must make TakeFlash atomic so that concurrent
// requests on one session never both observe the same message.
type Store interface {
	Get(ctx context.Context, id string) (*Data, error)
	SetIdentity(ctx context.Context, id string, identity Identity, ttl time.Duration) error
	SetFlash(ctx context.Context, id string, kind FlashKind, message string, ttl time.Duration) error
	TakeFlash(ctx context.Context, id string) (Flash, error)
	Destroy(ctx context.Context, id string) error
}
