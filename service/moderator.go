package service

import (
	"context"
	"eventhub/data/models"
	"eventhub/data/repository"
	"fmt"
	"log"
)

// RequestModerator owns the participation-request side of the engine:
// creating requests against published events, canceling them, and the
// initiator's bulk confirm/reject pass. Every decision that reads the
// admitted count and then writes a status is made inside the repository's
// locked transaction, so the count cannot move between the check and the
// write.
type RequestModerator struct {
	repo repository.DBRepo
	now  Clock
}

func NewRequestModerator(repo repository.DBRepo, now Clock) *RequestModerator {
	return &RequestModerator{repo: repo, now: now}
}

// CreateRequest submits a participation request from requesterID for
// eventID. The event must be published and not yet started, the requester
// must not be the initiator and must not already hold an active request, and
// a limited event must still have room. The request lands CONFIRMED
// immediately unless the event moderates admission.
func (rm *RequestModerator) CreateRequest(ctx context.Context, requesterID, eventID int64) (models.Request, error) {
	exists, err := rm.repo.UserExists(requesterID)
	if err != nil {
		return models.Request{}, err
	}
	if !exists {
		return models.Request{}, fmt.Errorf("user %d: %w", requesterID, ErrNotFound)
	}

	req, err := rm.repo.AdmitRequest(ctx, eventID, requesterID, func(view repository.AdmissionView) (models.RequestStatus, error) {
		ev := view.Event

		if ev.InitiatorID == requesterID {
			return "", fmt.Errorf("initiator cannot request own event: %w", ErrConflict)
		}
		if ev.State != models.EventPublished {
			return "", fmt.Errorf("cannot request event in state %s: %w", ev.State, ErrConflict)
		}
		if !ev.EventDate.After(rm.now()) {
			return "", fmt.Errorf("event %d already started: %w", eventID, ErrConflict)
		}
		for _, r := range view.Existing {
			if r.Active() {
				return "", fmt.Errorf("user %d already has an active request for event %d: %w",
					requesterID, eventID, ErrConflict)
			}
		}
		if !hasRoom(ev.ParticipantLimit, view.Confirmed) {
			return "", fmt.Errorf("event %d reached its participant limit: %w", eventID, ErrConflict)
		}

		if ev.Moderated() {
			return models.RequestPending, nil
		}
		return models.RequestConfirmed, nil
	})
	if err != nil {
		return models.Request{}, mapRepoErr(err)
	}

	log.Printf("Created participation request with id = %d", req.ID)
	return req, nil
}

// CancelRequest cancels the requester's own request. Any status may move to
// CANCELED; canceling an already canceled request is a no-op. A freed
// CONFIRMED slot is not handed to any PENDING request automatically.
func (rm *RequestModerator) CancelRequest(ctx context.Context, requesterID, requestID int64) (models.Request, error) {
	req, err := rm.repo.GetRequestByID(requestID)
	if err != nil {
		return models.Request{}, mapRepoErr(err)
	}
	// a foreign request is reported as absent, not as forbidden
	if req.RequesterID != requesterID {
		return models.Request{}, fmt.Errorf("user %d has no request %d: %w", requesterID, requestID, ErrNotFound)
	}

	if req.Status == models.RequestCanceled {
		return req, nil
	}

	req.Status = models.RequestCanceled
	if err := rm.repo.Update(req); err != nil {
		return models.Request{}, err
	}

	log.Printf("Request with id = %d was canceled by user with id = %d", requestID, requesterID)
	return req, nil
}

// ModerateRequests confirms or rejects a batch of PENDING requests on behalf
// of the event's initiator. Confirmation is all-or-nothing: a batch that
// would overshoot the participant limit fails whole. When the batch fills
// the event exactly, every other PENDING request is rejected in the same
// transaction. The returned result partitions the event's requests into
// confirmed and rejected as of commit.
func (rm *RequestModerator) ModerateRequests(ctx context.Context, initiatorID, eventID int64, requestIDs []int64, target models.RequestStatus) (repository.ModerationResult, error) {
	if target != models.RequestConfirmed && target != models.RequestRejected {
		return repository.ModerationResult{}, fmt.Errorf("cannot moderate requests to status %s: %w", target, ErrValidation)
	}

	ids := dedupe(requestIDs)

	result, err := rm.repo.ModerateRequests(ctx, eventID, ids, func(view repository.ModerationView) (repository.ModerationPlan, error) {
		ev := view.Event

		if ev.InitiatorID != initiatorID {
			return repository.ModerationPlan{}, fmt.Errorf("user %d is not the initiator of event %d: %w",
				initiatorID, eventID, ErrForbidden)
		}
		if !ev.Moderated() {
			return repository.ModerationPlan{}, fmt.Errorf("event %d does not moderate requests: %w", eventID, ErrConflict)
		}
		if !ev.EventDate.After(rm.now()) {
			return repository.ModerationPlan{}, fmt.Errorf("event %d already started: %w", eventID, ErrConflict)
		}
		if !hasRoom(ev.ParticipantLimit, view.Confirmed) {
			return repository.ModerationPlan{}, fmt.Errorf("event %d reached its participant limit: %w", eventID, ErrConflict)
		}

		if len(view.Batch) < len(ids) {
			return repository.ModerationPlan{}, fmt.Errorf("not all requests found for event %d: %w", eventID, ErrNotFound)
		}
		for _, r := range view.Batch {
			if r.Status != models.RequestPending {
				return repository.ModerationPlan{}, fmt.Errorf("cannot moderate request %d in status %s: %w",
					r.ID, r.Status, ErrConflict)
			}
		}

		plan := repository.ModerationPlan{Status: target}
		if target == models.RequestConfirmed {
			if wouldExceed(ev.ParticipantLimit, view.Confirmed, len(ids)) {
				return repository.ModerationPlan{}, fmt.Errorf("confirming %d requests would exceed the participant limit: %w",
					len(ids), ErrConflict)
			}
			// an exact fill closes admission for everyone still pending
			plan.RejectRemaining = view.Confirmed+len(ids) == ev.ParticipantLimit
		}
		return plan, nil
	})
	if err != nil {
		return repository.ModerationResult{}, mapRepoErr(err)
	}

	log.Printf("Moderated %d requests of event %d to status %s", len(ids), eventID, target)
	return result, nil
}

// ListEventRequests returns every participation request of the event, visible
// to the initiator only.
func (rm *RequestModerator) ListEventRequests(ctx context.Context, initiatorID, eventID int64) ([]models.Request, error) {
	ev, err := rm.repo.GetEventByID(eventID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if ev.InitiatorID != initiatorID {
		return nil, fmt.Errorf("user %d is not the initiator of event %d: %w", initiatorID, eventID, ErrForbidden)
	}
	return rm.repo.RequestsByEventID(eventID)
}

// ListUserRequests returns all requests the user has ever submitted.
func (rm *RequestModerator) ListUserRequests(ctx context.Context, requesterID int64) ([]models.Request, error) {
	exists, err := rm.repo.UserExists(requesterID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("user %d: %w", requesterID, ErrNotFound)
	}
	return rm.repo.RequestsByRequesterID(requesterID)
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
