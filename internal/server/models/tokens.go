package models

import "time"

// RefreshToken is a long-lived opaque credential. A user holds at most one
// per application: re-issuing for the same (UserID, AppID) pair overwrites
// the previous row.
type RefreshToken struct {
	Token     string
	UserID    string
	AppID     string
	Expires   time.Time
	CreatedAt time.Time
}

// EphemeralToken is a single-use, time-boxed opaque value sent out of band:
// account verification and password recovery both use this shape.
type EphemeralToken struct {
	Token     string
	UserID    string
	Expires   time.Time
	CreatedAt time.Time
}
