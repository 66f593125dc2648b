package service

import (
	"eventhub/data/repository"
)

// CapacityGuard answers questions about an event's admitted participants.
// Its reads are advisory: any caller that checks a count and then writes a
// status depending on it must make that decision inside the repository's
// locked transaction, using the pure helpers below against the count read
// under the lock.
type CapacityGuard struct {
	repo repository.DBRepo
}

func NewCapacityGuard(repo repository.DBRepo) *CapacityGuard {
	return &CapacityGuard{repo: repo}
}

// AdmittedCount returns the number of CONFIRMED requests for the event as of
// the query. It is recomputed from the request rows, never cached.
func (g *CapacityGuard) AdmittedCount(eventID int64) (int, error) {
	return g.repo.CountConfirmedRequests(eventID)
}

// HasRoom reports whether one more participant could currently be admitted
// under the given limit. A zero limit means unlimited.
func (g *CapacityGuard) HasRoom(eventID int64, limit int) (bool, error) {
	if limit == 0 {
		return true, nil
	}
	admitted, err := g.repo.CountConfirmedRequests(eventID)
	if err != nil {
		return false, err
	}
	return hasRoom(limit, admitted), nil
}

// WouldExceed reports whether admitting additional more participants would
// push the event past the given limit.
func (g *CapacityGuard) WouldExceed(eventID int64, limit, additional int) (bool, error) {
	if limit == 0 {
		return false, nil
	}
	admitted, err := g.repo.CountConfirmedRequests(eventID)
	if err != nil {
		return false, err
	}
	return wouldExceed(limit, admitted, additional), nil
}

func hasRoom(limit, admitted int) bool {
	return limit == 0 || admitted < limit
}

func wouldExceed(limit, admitted, additional int) bool {
	return limit != 0 && admitted+additional > limit
}
