// Package leads defines the finished lead record and the sinks that store it.
package leads

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// TimestampLayout is the minute-resolution local time format used in rows and notifications.
const TimestampLayout = "2006-01-02 15:04"

// Record is the immutable snapshot of a completed dialog.
type Record struct {
	UserID      int64     `db:"user_id"`
	Name        string    `db:"name"`
	Project     string    `db:"project"`
	Budget      string    `db:"budget"`
	Contact     string    `db:"contact"`
	SubmittedAt time.Time `db:"submitted_at"`
}

// Timestamp formats SubmittedAt in local time.
func (r Record) Timestamp() string {
	return r.SubmittedAt.Local().Format(TimestampLayout)
}

// Row returns the ordered tuple appended to row stores.
func (r Record) Row() []string {
	return []string{r.Name, r.Project, r.Budget, r.Contact, r.Timestamp()}
}

// ContactHandle returns @username when the user has one and a profile link otherwise.
func ContactHandle(username string, userID int64) string {
	if username != "" {
		return "@" + username
	}
	return "https://t.me/user?id=" + strconv.FormatInt(userID, 10)
}

// Sink durably records a lead.
type Sink interface {
	Record(ctx context.Context, rec Record) error
}

// ErrNoBackends is returned when no lead backend is configured.
var ErrNoBackends = errors.New("leads: no backends configured")

// StorageError reports a failed write to one backend.
type StorageError struct {
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("leads: %s: %v", e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Code is the stable error code used in handler logs.
func (e *StorageError) Code() string { return "LEAD_STORAGE" }

func storageErr(backend string, err error) error {
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Backend: backend, Err: err}
}
