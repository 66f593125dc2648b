package repository

import (
	"context"
	"database/sql"
	"errors"
	"eventhub/data/models"
	"fmt"
	"strings"
)

// The operations in this file all follow the same shape: lock the event row
// with SELECT ... FOR UPDATE, read whatever state the caller's decision needs,
// run the caller-supplied decision function, and write the outcome before
// committing. Keeping the read, the decision and the write inside one
// transaction is what stops two concurrent admissions from both seeing a free
// slot and overshooting the participant limit.

// AdmissionView is the state an admission decision is made against, read
// under the event row lock.
type AdmissionView struct {
	Event     models.Event
	Confirmed int
	// Existing holds the requester's previous requests for this event.
	Existing []models.Request
}

// AdmitFunc decides the initial status of a new participation request, or
// returns an error to abort the transaction.
type AdmitFunc func(view AdmissionView) (models.RequestStatus, error)

// ModerationView is the state a moderation decision is made against, read
// under the event row lock.
type ModerationView struct {
	Event     models.Event
	Confirmed int
	// Batch holds the requests resolved from the ids the caller asked to
	// moderate. Missing ids are simply absent; the decision function is
	// expected to notice.
	Batch []models.Request
}

// ModerationPlan is the outcome of a moderation decision: the status to apply
// to the whole batch, and whether the remaining PENDING requests of the event
// must be swept to REJECTED because the batch fills the event exactly.
type ModerationPlan struct {
	Status          models.RequestStatus
	RejectRemaining bool
}

type ModerateFunc func(view ModerationView) (ModerationPlan, error)

// ModerationResult partitions the event's requests after a moderation pass.
type ModerationResult struct {
	Confirmed []models.Request
	Rejected  []models.Request
}

// EventUpdateFunc maps an event read under lock to its updated form, or
// returns an error to abort the transaction.
type EventUpdateFunc func(ev models.Event) (models.Event, error)

// AdmitRequest creates a participation request for requesterID on eventID.
// The initial status comes from the decide callback, which runs while the
// event row is locked so that the admitted count it sees cannot move under
// it. Returns ErrNoRecord if the event does not exist.
func (sr *SqlRepo) AdmitRequest(ctx context.Context, eventID, requesterID int64, decide AdmitFunc) (models.Request, error) {
	var req models.Request

	err := sr.inTx(ctx, func(tx *sql.Tx) error {
		view := AdmissionView{}

		ev, err := lockEvent(ctx, tx, eventID)
		if err != nil {
			return err
		}
		view.Event = ev

		if view.Confirmed, err = countConfirmedTx(ctx, tx, eventID); err != nil {
			return err
		}

		rows, err := tx.QueryContext(ctx,
			"SELECT * FROM participation_requests WHERE event_id = $1 AND requester_id = $2 ORDER BY id",
			eventID, requesterID)
		if err != nil {
			return fmt.Errorf("error querying existing requests: %v", err)
		}
		view.Existing, err = scanRequests(rows)
		rows.Close()
		if err != nil {
			return err
		}

		status, err := decide(view)
		if err != nil {
			return err
		}

		row := tx.QueryRowContext(ctx,
			`INSERT INTO participation_requests (event_id, requester_id, status)
			 VALUES ($1, $2, $3)
			 RETURNING id, event_id, requester_id, status, created_at`,
			eventID, requesterID, status)
		if err := row.Scan(&req.ID, &req.EventID, &req.RequesterID, &req.Status, &req.CreatedAt); err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateRequest
			}
			return fmt.Errorf("error inserting request: %v", err)
		}
		return nil
	})
	if err != nil {
		return models.Request{}, err
	}
	return req, nil
}

// ModerateRequests applies the status decided by the callback to the batch of
// requests identified by requestIDs, sweeps the event's remaining PENDING
// requests to REJECTED when the plan says so, and returns the event's
// confirmed/rejected partition as of commit. The whole pass is one
// transaction: callers never observe the batch applied without the sweep.
func (sr *SqlRepo) ModerateRequests(ctx context.Context, eventID int64, requestIDs []int64, decide ModerateFunc) (ModerationResult, error) {
	var result ModerationResult

	err := sr.inTx(ctx, func(tx *sql.Tx) error {
		view := ModerationView{}

		ev, err := lockEvent(ctx, tx, eventID)
		if err != nil {
			return err
		}
		view.Event = ev

		if view.Confirmed, err = countConfirmedTx(ctx, tx, eventID); err != nil {
			return err
		}

		if len(requestIDs) > 0 {
			args := make([]interface{}, 0, len(requestIDs)+1)
			args = append(args, eventID)
			for _, id := range requestIDs {
				args = append(args, id)
			}
			query := fmt.Sprintf(
				"SELECT * FROM participation_requests WHERE event_id = $1 AND id IN (%s) ORDER BY id",
				placeholders(2, len(requestIDs)))

			rows, err := tx.QueryContext(ctx, query, args...)
			if err != nil {
				return fmt.Errorf("error querying requests to moderate: %v", err)
			}
			view.Batch, err = scanRequests(rows)
			rows.Close()
			if err != nil {
				return err
			}
		}

		plan, err := decide(view)
		if err != nil {
			return err
		}

		if len(requestIDs) > 0 {
			args := make([]interface{}, 0, len(requestIDs)+1)
			args = append(args, plan.Status)
			for _, id := range requestIDs {
				args = append(args, id)
			}
			query := fmt.Sprintf("UPDATE participation_requests SET status = $1 WHERE id IN (%s)",
				placeholders(2, len(requestIDs)))
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("error updating request batch: %v", err)
			}
		}

		if plan.RejectRemaining {
			_, err := tx.ExecContext(ctx,
				"UPDATE participation_requests SET status = $1 WHERE event_id = $2 AND status = $3",
				models.RequestRejected, eventID, models.RequestPending)
			if err != nil {
				return fmt.Errorf("error rejecting remaining requests: %v", err)
			}
		}

		if result.Confirmed, err = requestsByStatusTx(ctx, tx, eventID, models.RequestConfirmed); err != nil {
			return err
		}
		if result.Rejected, err = requestsByStatusTx(ctx, tx, eventID, models.RequestRejected); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return ModerationResult{}, err
	}
	return result, nil
}

// UpdateEventState rewrites an event under its row lock. Lifecycle rules live
// in the apply callback; this method only guarantees they run against the
// current committed row and that the rewrite lands atomically.
func (sr *SqlRepo) UpdateEventState(ctx context.Context, eventID int64, apply EventUpdateFunc) (models.Event, error) {
	var updated models.Event

	err := sr.inTx(ctx, func(tx *sql.Tx) error {
		ev, err := lockEvent(ctx, tx, eventID)
		if err != nil {
			return err
		}

		updated, err = apply(ev)
		if err != nil {
			return err
		}

		columns := updated.ColumnNames()
		setClause := make([]string, len(columns))
		for i, c := range columns {
			setClause[i] = fmt.Sprintf("%s = $%d", c, i+1)
		}

		query := fmt.Sprintf("UPDATE events SET %s WHERE id = $%d",
			strings.Join(setClause, ", "), len(columns)+1)

		vals := models.GetValsFromModel(updated)
		vals = append(vals, updated.GetID())
		if _, err := tx.ExecContext(ctx, query, vals...); err != nil {
			return fmt.Errorf("error updating event: %v", err)
		}
		return nil
	})
	if err != nil {
		return models.Event{}, err
	}
	return updated, nil
}

func (sr *SqlRepo) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := sr.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %v", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%v (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %v", err)
	}
	return nil
}

func lockEvent(ctx context.Context, tx *sql.Tx, eventID int64) (models.Event, error) {
	var ev models.Event
	row := tx.QueryRowContext(ctx, "SELECT * FROM events WHERE id = $1 FOR UPDATE", eventID)
	if err := models.ScanRowToModel(&ev, row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Event{}, ErrNoRecord
		}
		return models.Event{}, fmt.Errorf("error locking event row: %v", err)
	}
	return ev, nil
}

func countConfirmedTx(ctx context.Context, tx *sql.Tx, eventID int64) (int, error) {
	var count int
	err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM participation_requests WHERE event_id = $1 AND status = $2",
		eventID, models.RequestConfirmed).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting confirmed requests: %v", err)
	}
	return count, nil
}

func requestsByStatusTx(ctx context.Context, tx *sql.Tx, eventID int64, status models.RequestStatus) ([]models.Request, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT * FROM participation_requests WHERE event_id = $1 AND status = $2 ORDER BY id",
		eventID, status)
	if err != nil {
		return nil, fmt.Errorf("error querying requests by status: %v", err)
	}
	defer rows.Close()
	return scanRequests(rows)
}
