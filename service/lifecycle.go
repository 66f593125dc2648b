package service

import (
	"context"
	"database/sql"
	"eventhub/data/models"
	"eventhub/data/repository"
	"fmt"
	"log"
	"time"
)

const (
	// an event must be at least this far away when created or rescheduled
	minLeadOnCreate = 2 * time.Hour
	// and at least this far away when an admin publishes it
	minLeadOnPublish = time.Hour
)

// UserStateAction is a state transition requested by the event's initiator
// alongside a field edit.
type UserStateAction string

const (
	SendToReview UserStateAction = "SEND_TO_REVIEW"
	CancelReview UserStateAction = "CANCEL_REVIEW"
)

// AdminStateAction is a state transition requested by an admin.
type AdminStateAction string

const (
	PublishEvent AdminStateAction = "PUBLISH_EVENT"
	RejectEvent  AdminStateAction = "REJECT_EVENT"
)

// EventUpdate carries the optional field edits of an update call; nil fields
// are left untouched.
type EventUpdate struct {
	Title             *string
	Annotation        *string
	CategoryID        *int64
	Description       *string
	EventDate         *time.Time
	Lat               *float64
	Lon               *float64
	Paid              *bool
	ParticipantLimit  *int
	RequestModeration *bool
}

// EventLifecycle validates and applies event state transitions. Events are
// created PENDING; an admin publishes or rejects them; the initiator may edit
// and cancel them any time before publication. Published events are immutable
// to the initiator.
type EventLifecycle struct {
	repo repository.DBRepo
	now  Clock
}

func NewEventLifecycle(repo repository.DBRepo, now Clock) *EventLifecycle {
	return &EventLifecycle{repo: repo, now: now}
}

// CreateEvent persists a new event in PENDING state on behalf of initiatorID.
func (l *EventLifecycle) CreateEvent(ctx context.Context, initiatorID int64, ev models.Event) (models.Event, error) {
	if err := l.checkEventDate(ev.EventDate); err != nil {
		return models.Event{}, err
	}

	if err := l.checkUserExists(initiatorID); err != nil {
		return models.Event{}, err
	}
	if err := l.checkCategoryExists(ev.CategoryID); err != nil {
		return models.Event{}, err
	}

	ev.InitiatorID = initiatorID
	ev.State = models.EventPending
	ev.PublishedOn = sql.NullTime{}
	if err := models.ValidateModel(ev); err != nil {
		return models.Event{}, fmt.Errorf("%v: %w", err, ErrValidation)
	}

	id, err := l.repo.Create(ev)
	if err != nil {
		return models.Event{}, err
	}

	created, err := l.repo.GetEventByID(id)
	if err != nil {
		return models.Event{}, mapRepoErr(err)
	}
	log.Printf("Created event with id = %d", created.ID)
	return created, nil
}

// UpdateEventByUser applies field edits and an optional state action on
// behalf of the initiator. Editing a PUBLISHED event is a conflict; the only
// state moves available to the initiator are back to review and canceling a
// not-yet-published event.
func (l *EventLifecycle) UpdateEventByUser(ctx context.Context, userID, eventID int64, upd EventUpdate, action *UserStateAction) (models.Event, error) {
	// referenced collaborators are validated before the locked transaction
	if upd.CategoryID != nil {
		if err := l.checkCategoryExists(*upd.CategoryID); err != nil {
			return models.Event{}, err
		}
	}

	ev, err := l.repo.UpdateEventState(ctx, eventID, func(ev models.Event) (models.Event, error) {
		if ev.InitiatorID != userID {
			return models.Event{}, fmt.Errorf("event %d does not belong to user %d: %w", eventID, userID, ErrForbidden)
		}
		if ev.State == models.EventPublished {
			return models.Event{}, fmt.Errorf("published event cannot be modified: %w", ErrConflict)
		}

		if err := l.applyUpdate(&ev, upd); err != nil {
			return models.Event{}, err
		}

		if action != nil {
			switch *action {
			case SendToReview:
				ev.State = models.EventPending
			case CancelReview:
				ev.State = models.EventCanceled
			default:
				return models.Event{}, fmt.Errorf("unknown state action %q: %w", *action, ErrValidation)
			}
		}

		if err := models.ValidateModel(ev); err != nil {
			return models.Event{}, fmt.Errorf("%v: %w", err, ErrValidation)
		}
		return ev, nil
	})
	if err != nil {
		return models.Event{}, mapRepoErr(err)
	}
	return ev, nil
}

// UpdateEventByAdmin applies field edits and an optional publish/reject
// transition. Both transitions are valid only from PENDING; publishing
// additionally requires the event start to be at least an hour away and
// stamps PublishedOn exactly once.
func (l *EventLifecycle) UpdateEventByAdmin(ctx context.Context, eventID int64, upd EventUpdate, action *AdminStateAction) (models.Event, error) {
	if upd.CategoryID != nil {
		if err := l.checkCategoryExists(*upd.CategoryID); err != nil {
			return models.Event{}, err
		}
	}

	ev, err := l.repo.UpdateEventState(ctx, eventID, func(ev models.Event) (models.Event, error) {
		if err := l.applyUpdate(&ev, upd); err != nil {
			return models.Event{}, err
		}

		if action != nil {
			if ev.State != models.EventPending {
				return models.Event{}, fmt.Errorf("cannot apply %s to event in state %s: %w", *action, ev.State, ErrConflict)
			}

			switch *action {
			case PublishEvent:
				now := l.now()
				if ev.EventDate.Before(now.Add(minLeadOnPublish)) {
					return models.Event{}, fmt.Errorf("event must be published at least %s before start: %w", minLeadOnPublish, ErrValidation)
				}
				ev.PublishedOn = sql.NullTime{Time: now, Valid: true}
				ev.State = models.EventPublished
			case RejectEvent:
				ev.State = models.EventCanceled
			default:
				return models.Event{}, fmt.Errorf("unknown state action %q: %w", *action, ErrValidation)
			}
		}

		if err := models.ValidateModel(ev); err != nil {
			return models.Event{}, fmt.Errorf("%v: %w", err, ErrValidation)
		}
		return ev, nil
	})
	if err != nil {
		return models.Event{}, mapRepoErr(err)
	}
	return ev, nil
}

// CancelEventByUser cancels a not-yet-published event on behalf of its
// initiator.
func (l *EventLifecycle) CancelEventByUser(ctx context.Context, userID, eventID int64) (models.Event, error) {
	action := CancelReview
	return l.UpdateEventByUser(ctx, userID, eventID, EventUpdate{}, &action)
}

// CancelEventByAdmin rejects a PENDING event.
func (l *EventLifecycle) CancelEventByAdmin(ctx context.Context, eventID int64) (models.Event, error) {
	action := RejectEvent
	return l.UpdateEventByAdmin(ctx, eventID, EventUpdate{}, &action)
}

// PublishEvent publishes a PENDING event.
func (l *EventLifecycle) PublishEvent(ctx context.Context, eventID int64) (models.Event, error) {
	action := PublishEvent
	return l.UpdateEventByAdmin(ctx, eventID, EventUpdate{}, &action)
}

func (l *EventLifecycle) applyUpdate(ev *models.Event, upd EventUpdate) error {
	if upd.Title != nil {
		ev.Title = *upd.Title
	}
	if upd.Annotation != nil {
		ev.Annotation = *upd.Annotation
	}
	if upd.CategoryID != nil {
		ev.CategoryID = *upd.CategoryID
	}
	if upd.Description != nil {
		ev.Description = *upd.Description
	}
	if upd.EventDate != nil {
		if err := l.checkEventDate(*upd.EventDate); err != nil {
			return err
		}
		ev.EventDate = *upd.EventDate
	}
	if upd.Lat != nil {
		ev.Lat = *upd.Lat
	}
	if upd.Lon != nil {
		ev.Lon = *upd.Lon
	}
	if upd.Paid != nil {
		ev.Paid = *upd.Paid
	}
	if upd.ParticipantLimit != nil {
		if *upd.ParticipantLimit < 0 {
			return fmt.Errorf("participant limit cannot be negative: %w", ErrValidation)
		}
		ev.ParticipantLimit = *upd.ParticipantLimit
	}
	if upd.RequestModeration != nil {
		ev.RequestModeration = *upd.RequestModeration
	}
	return nil
}

func (l *EventLifecycle) checkEventDate(date time.Time) error {
	earliest := l.now().Add(minLeadOnCreate)
	if date.Before(earliest) {
		return fmt.Errorf("event date must be at least %s away: %w", minLeadOnCreate, ErrValidation)
	}
	return nil
}

func (l *EventLifecycle) checkUserExists(id int64) error {
	exists, err := l.repo.UserExists(id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return nil
}

func (l *EventLifecycle) checkCategoryExists(id int64) error {
	exists, err := l.repo.CategoryExists(id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("category %d: %w", id, ErrNotFound)
	}
	return nil
}
