package config

import "time"

// SessionTTL is the fixed lifetime of a requested session.
const SessionTTL = 2 * time.Hour

// ChallengeLength is the number of random alphanumeric characters in a
// session's challenge string.
const ChallengeLength = 24

// BaseStampDifficulty is the sole accepted proof-of-work difficulty for
// system-issued one-time stamps.
const BaseStampDifficulty uint64 = 50_000

// OnetimeStampValidity is how long a freshly-issued one-time stamp remains
// usable before it expires.
const OnetimeStampValidity = 15 * time.Minute

// StampRequestWindow returns how long an OneTimeStampRequest stays solvable
// after creation).
func StampRequestWindow() time.Duration {
	return MustParseDuration("STAMP_REQUEST_WINDOW", "10m")
}
