package service

import (
	"context"
	"eventhub/data/models"
	"eventhub/data/repository"
	"eventhub/stats"
	"fmt"
	"log"
)

// Coordinator is the entry point the HTTP layer talks to. It sequences the
// lifecycle, the moderator and the capacity guard; no admission rule lives
// here. It also decorates returned events with the informational
// confirmed-count and view-count fields.
type Coordinator struct {
	Lifecycle *EventLifecycle
	Moderator *RequestModerator
	Guard     *CapacityGuard

	repo  repository.DBRepo
	stats *stats.Client
	now   Clock
}

func NewCoordinator(repo repository.DBRepo, statsClient *stats.Client, now Clock) *Coordinator {
	return &Coordinator{
		Lifecycle: NewEventLifecycle(repo, now),
		Moderator: NewRequestModerator(repo, now),
		Guard:     NewCapacityGuard(repo),
		repo:      repo,
		stats:     statsClient,
		now:       now,
	}
}

// EventDetails is an event decorated with its admitted-participant count and,
// for published events, its view count from the stats service.
type EventDetails struct {
	models.Event
	ConfirmedRequests int `json:"confirmedRequests"`
	Views             int `json:"views"`
}

func (c *Coordinator) CreateEvent(ctx context.Context, initiatorID int64, ev models.Event) (EventDetails, error) {
	created, err := c.Lifecycle.CreateEvent(ctx, initiatorID, ev)
	if err != nil {
		return EventDetails{}, err
	}
	return EventDetails{Event: created}, nil
}

func (c *Coordinator) UpdateEventByUser(ctx context.Context, userID, eventID int64, upd EventUpdate, action *UserStateAction) (EventDetails, error) {
	ev, err := c.Lifecycle.UpdateEventByUser(ctx, userID, eventID, upd, action)
	if err != nil {
		return EventDetails{}, err
	}
	return c.describe(ctx, ev)
}

func (c *Coordinator) UpdateEventByAdmin(ctx context.Context, eventID int64, upd EventUpdate, action *AdminStateAction) (EventDetails, error) {
	ev, err := c.Lifecycle.UpdateEventByAdmin(ctx, eventID, upd, action)
	if err != nil {
		return EventDetails{}, err
	}
	return c.describe(ctx, ev)
}

func (c *Coordinator) CancelEventByUser(ctx context.Context, userID, eventID int64) (EventDetails, error) {
	ev, err := c.Lifecycle.CancelEventByUser(ctx, userID, eventID)
	if err != nil {
		return EventDetails{}, err
	}
	return EventDetails{Event: ev}, nil
}

// GetUserEvent returns one of the initiator's own events. Someone else's
// event is reported as absent.
func (c *Coordinator) GetUserEvent(ctx context.Context, userID, eventID int64) (EventDetails, error) {
	ev, err := c.repo.GetEventByID(eventID)
	if err != nil {
		return EventDetails{}, mapRepoErr(err)
	}
	if ev.InitiatorID != userID {
		return EventDetails{}, fmt.Errorf("user %d has no event %d: %w", userID, eventID, ErrNotFound)
	}
	return c.describe(ctx, ev)
}

func (c *Coordinator) ListUserEvents(ctx context.Context, userID int64, limit, offset int) ([]EventDetails, error) {
	events, err := c.repo.EventsByInitiatorID(userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return c.describeAll(ctx, events)
}

// GetPublicEvent returns a published event and records the lookup with the
// stats service.
func (c *Coordinator) GetPublicEvent(ctx context.Context, eventID int64, uri, ip string) (EventDetails, error) {
	c.recordHit(ctx, uri, ip)

	ev, err := c.repo.GetEventByID(eventID)
	if err != nil {
		return EventDetails{}, mapRepoErr(err)
	}
	if ev.State != models.EventPublished {
		return EventDetails{}, fmt.Errorf("event %d: %w", eventID, ErrNotFound)
	}
	return c.describe(ctx, ev)
}

// SearchPublicEvents lists published events matching the query parameters
// and records the lookup. The state filter is pinned to PUBLISHED regardless
// of what the caller passed.
func (c *Coordinator) SearchPublicEvents(ctx context.Context, queryParams map[string]string, uri, ip string) ([]EventDetails, error) {
	c.recordHit(ctx, uri, ip)

	params := make(map[string]string, len(queryParams)+1)
	for k, v := range queryParams {
		params[k] = v
	}
	params["state"] = string(models.EventPublished)

	events, err := c.repo.QueryEvents(params)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrValidation)
	}
	return c.describeAll(ctx, events)
}

// SearchEvents lists events matching the query parameters with no state
// restriction. The admin surface uses it; public reads go through
// SearchPublicEvents.
func (c *Coordinator) SearchEvents(ctx context.Context, queryParams map[string]string) ([]EventDetails, error) {
	events, err := c.repo.QueryEvents(queryParams)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrValidation)
	}
	return c.describeAll(ctx, events)
}

func (c *Coordinator) CreateRequest(ctx context.Context, requesterID, eventID int64) (models.Request, error) {
	return c.Moderator.CreateRequest(ctx, requesterID, eventID)
}

func (c *Coordinator) CancelRequest(ctx context.Context, requesterID, requestID int64) (models.Request, error) {
	return c.Moderator.CancelRequest(ctx, requesterID, requestID)
}

func (c *Coordinator) ModerateRequests(ctx context.Context, initiatorID, eventID int64, requestIDs []int64, target models.RequestStatus) (repository.ModerationResult, error) {
	return c.Moderator.ModerateRequests(ctx, initiatorID, eventID, requestIDs, target)
}

func (c *Coordinator) ListEventRequests(ctx context.Context, initiatorID, eventID int64) ([]models.Request, error) {
	return c.Moderator.ListEventRequests(ctx, initiatorID, eventID)
}

func (c *Coordinator) ListUserRequests(ctx context.Context, requesterID int64) ([]models.Request, error) {
	return c.Moderator.ListUserRequests(ctx, requesterID)
}

func (c *Coordinator) describe(ctx context.Context, ev models.Event) (EventDetails, error) {
	details := EventDetails{Event: ev}

	if ev.State != models.EventPublished {
		return details, nil
	}

	confirmed, err := c.Guard.AdmittedCount(ev.ID)
	if err != nil {
		return EventDetails{}, err
	}
	details.ConfirmedRequests = confirmed
	details.Views = c.views(ctx, ev)
	return details, nil
}

func (c *Coordinator) describeAll(ctx context.Context, events []models.Event) ([]EventDetails, error) {
	details := make([]EventDetails, 0, len(events))
	for _, ev := range events {
		d, err := c.describe(ctx, ev)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, nil
}

// views asks the stats service for the event's unique hit count. Failures
// only cost the informational field, never the operation.
func (c *Coordinator) views(ctx context.Context, ev models.Event) int {
	if c.stats == nil || !ev.PublishedOn.Valid {
		return 0
	}

	uri := eventURI(ev.ID)
	counts, err := c.stats.Stats(ctx, ev.PublishedOn.Time, c.now(), []string{uri}, true)
	if err != nil {
		log.Printf("Could not get views for event %d: %v", ev.ID, err)
		return 0
	}

	for _, s := range counts {
		if s.App == c.stats.App() && s.URI == uri {
			return s.Hits
		}
	}
	return 0
}

func (c *Coordinator) recordHit(ctx context.Context, uri, ip string) {
	if c.stats == nil {
		return
	}
	if err := c.stats.Hit(ctx, uri, ip, c.now()); err != nil {
		log.Printf("Could not record hit for %s: %v", uri, err)
	}
}

func eventURI(eventID int64) string {
	return fmt.Sprintf("/events/%d", eventID)
}
