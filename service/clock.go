package service

import "time"

// Clock supplies the current time. Every time-policy rule (creation lead
// time, publish lead time, moderation cutoff) reads through it, so tests can
// pin the clock instead of sleeping.
type Clock func() time.Time
