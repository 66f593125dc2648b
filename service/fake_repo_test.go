package service

import (
	"context"
	"database/sql"
	"eventhub/data/models"
	"eventhub/data/repository"
	"fmt"
	"sort"
	"sync"
	"time"
)

// fakeRepo is an in-memory stand-in for the SQL repository. A single mutex
// plays the role of the event row lock: the decision callbacks run while it
// is held, the same contract the real repository provides with
// SELECT ... FOR UPDATE.
type fakeRepo struct {
	mu         sync.Mutex
	users      map[int64]models.User
	categories map[int64]models.Category
	events     map[int64]models.Event
	requests   map[int64]models.Request
	nextID     int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:      make(map[int64]models.User),
		categories: make(map[int64]models.Category),
		events:     make(map[int64]models.Event),
		requests:   make(map[int64]models.Request),
	}
}

func (f *fakeRepo) Connection() *sql.DB            { return nil }
func (f *fakeRepo) RunMigrations(dbName string) error { return nil }

func (f *fakeRepo) Create(m models.Model) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	id := f.nextID
	switch v := m.(type) {
	case models.User:
		v.ID, v.CreatedAt = id, time.Now()
		f.users[id] = v
	case models.Category:
		v.ID = id
		f.categories[id] = v
	case models.Event:
		v.ID, v.CreatedOn = id, time.Now()
		f.events[id] = v
	case models.Request:
		v.ID, v.CreatedAt = id, time.Now()
		f.requests[id] = v
	default:
		return 0, fmt.Errorf("unexpected model %T", m)
	}
	return id, nil
}

func (f *fakeRepo) Update(m models.Model) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch v := m.(type) {
	case models.Event:
		f.events[v.ID] = v
	case models.Request:
		f.requests[v.ID] = v
	case models.User:
		f.users[v.ID] = v
	case models.Category:
		f.categories[v.ID] = v
	default:
		return fmt.Errorf("unexpected model %T", m)
	}
	return nil
}

func (f *fakeRepo) Delete(m models.Model) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch m.(type) {
	case models.User:
		delete(f.users, m.GetID())
	case models.Category:
		delete(f.categories, m.GetID())
	case models.Event:
		delete(f.events, m.GetID())
	case models.Request:
		delete(f.requests, m.GetID())
	}
	return nil
}

func (f *fakeRepo) GetModelByID(m models.Model, id int64) (models.Model, error) {
	switch m.(type) {
	case *models.Event:
		ev, err := f.GetEventByID(id)
		return &ev, err
	case *models.Request:
		req, err := f.GetRequestByID(id)
		return &req, err
	default:
		return nil, fmt.Errorf("unexpected model %T", m)
	}
}

func (f *fakeRepo) GetUserByID(id int64) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return models.User{}, repository.ErrNoRecord
	}
	return u, nil
}

func (f *fakeRepo) GetCategoryByID(id int64) (models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.categories[id]
	if !ok {
		return models.Category{}, repository.ErrNoRecord
	}
	return c, nil
}

func (f *fakeRepo) GetEventByID(id int64) (models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev, ok := f.events[id]
	if !ok {
		return models.Event{}, repository.ErrNoRecord
	}
	return ev, nil
}

func (f *fakeRepo) GetRequestByID(id int64) (models.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.requests[id]
	if !ok {
		return models.Request{}, repository.ErrNoRecord
	}
	return req, nil
}

func (f *fakeRepo) UserExists(id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.users[id]
	return ok, nil
}

func (f *fakeRepo) CategoryExists(id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.categories[id]
	return ok, nil
}

func (f *fakeRepo) QueryEvents(queryParams map[string]string) ([]models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var events []models.Event
	for _, ev := range f.events {
		if state, ok := queryParams["state"]; ok && string(ev.State) != state {
			continue
		}
		events = append(events, ev)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	return events, nil
}

func (f *fakeRepo) EventsByInitiatorID(initiatorID int64, limit, offset int) ([]models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var events []models.Event
	for _, ev := range f.events {
		if ev.InitiatorID == initiatorID {
			events = append(events, ev)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	if offset > len(events) {
		offset = len(events)
	}
	events = events[offset:]
	if limit < len(events) {
		events = events[:limit]
	}
	return events, nil
}

func (f *fakeRepo) RequestsByEventID(eventID int64) ([]models.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requestsWhere(func(r models.Request) bool { return r.EventID == eventID }), nil
}

func (f *fakeRepo) RequestsByRequesterID(requesterID int64) ([]models.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requestsWhere(func(r models.Request) bool { return r.RequesterID == requesterID }), nil
}

func (f *fakeRepo) CountConfirmedRequests(eventID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.countConfirmed(eventID), nil
}

func (f *fakeRepo) AdmitRequest(ctx context.Context, eventID, requesterID int64, decide repository.AdmitFunc) (models.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ev, ok := f.events[eventID]
	if !ok {
		return models.Request{}, repository.ErrNoRecord
	}

	view := repository.AdmissionView{
		Event:     ev,
		Confirmed: f.countConfirmed(eventID),
		Existing: f.requestsWhere(func(r models.Request) bool {
			return r.EventID == eventID && r.RequesterID == requesterID
		}),
	}

	status, err := decide(view)
	if err != nil {
		return models.Request{}, err
	}

	// the partial unique index's job
	for _, r := range view.Existing {
		if r.Active() {
			return models.Request{}, repository.ErrDuplicateRequest
		}
	}

	f.nextID++
	req := models.Request{
		ID:          f.nextID,
		EventID:     eventID,
		RequesterID: requesterID,
		Status:      status,
		CreatedAt:   time.Now(),
	}
	f.requests[req.ID] = req
	return req, nil
}

func (f *fakeRepo) ModerateRequests(ctx context.Context, eventID int64, requestIDs []int64, decide repository.ModerateFunc) (repository.ModerationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ev, ok := f.events[eventID]
	if !ok {
		return repository.ModerationResult{}, repository.ErrNoRecord
	}

	wanted := make(map[int64]bool, len(requestIDs))
	for _, id := range requestIDs {
		wanted[id] = true
	}

	view := repository.ModerationView{
		Event:     ev,
		Confirmed: f.countConfirmed(eventID),
		Batch: f.requestsWhere(func(r models.Request) bool {
			return r.EventID == eventID && wanted[r.ID]
		}),
	}

	plan, err := decide(view)
	if err != nil {
		return repository.ModerationResult{}, err
	}

	for _, r := range view.Batch {
		r.Status = plan.Status
		f.requests[r.ID] = r
	}
	if plan.RejectRemaining {
		for id, r := range f.requests {
			if r.EventID == eventID && r.Status == models.RequestPending {
				r.Status = models.RequestRejected
				f.requests[id] = r
			}
		}
	}

	result := repository.ModerationResult{
		Confirmed: f.requestsWhere(func(r models.Request) bool {
			return r.EventID == eventID && r.Status == models.RequestConfirmed
		}),
		Rejected: f.requestsWhere(func(r models.Request) bool {
			return r.EventID == eventID && r.Status == models.RequestRejected
		}),
	}
	return result, nil
}

func (f *fakeRepo) UpdateEventState(ctx context.Context, eventID int64, apply repository.EventUpdateFunc) (models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ev, ok := f.events[eventID]
	if !ok {
		return models.Event{}, repository.ErrNoRecord
	}

	updated, err := apply(ev)
	if err != nil {
		return models.Event{}, err
	}
	f.events[eventID] = updated
	return updated, nil
}

func (f *fakeRepo) requestsWhere(keep func(models.Request) bool) []models.Request {
	var out []models.Request
	for _, r := range f.requests {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeRepo) countConfirmed(eventID int64) int {
	count := 0
	for _, r := range f.requests {
		if r.EventID == eventID && r.Status == models.RequestConfirmed {
			count++
		}
	}
	return count
}
