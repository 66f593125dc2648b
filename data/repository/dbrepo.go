package repository

import (
	"context"
	"database/sql"
	"errors"
	"eventhub/data/models"
	"fmt"
	"log"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/pgx"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
)

// ErrNoRecord is returned when a requested record does not exist.
var ErrNoRecord = errors.New("record not found")

// ErrDuplicateRequest is returned when an insert trips the partial unique
// index guarding one active request per (event, requester).
var ErrDuplicateRequest = errors.New("duplicate active participation request")

type DBRepo interface {
	Connection() *sql.DB
	RunMigrations(dbName string) error
	Create(m models.Model) (id int64, err error)
	Update(m models.Model) error
	Delete(m models.Model) error
	GetModelByID(m models.Model, id int64) (models.Model, error)
	GetUserByID(id int64) (models.User, error)
	GetCategoryByID(id int64) (models.Category, error)
	GetEventByID(id int64) (models.Event, error)
	GetRequestByID(id int64) (models.Request, error)
	UserExists(id int64) (bool, error)
	CategoryExists(id int64) (bool, error)
	QueryEvents(queryParams map[string]string) ([]models.Event, error)
	EventsByInitiatorID(initiatorID int64, limit, offset int) ([]models.Event, error)
	RequestsByEventID(eventID int64) ([]models.Request, error)
	RequestsByRequesterID(requesterID int64) ([]models.Request, error)
	CountConfirmedRequests(eventID int64) (int, error)
	AdmitRequest(ctx context.Context, eventID, requesterID int64, decide AdmitFunc) (models.Request, error)
	ModerateRequests(ctx context.Context, eventID int64, requestIDs []int64, decide ModerateFunc) (ModerationResult, error)
	UpdateEventState(ctx context.Context, eventID int64, apply EventUpdateFunc) (models.Event, error)
}

type SqlRepo struct {
	DB *sql.DB
}

func (sr *SqlRepo) Connection() *sql.DB {
	return sr.DB
}

func (sr *SqlRepo) RunMigrations(dbName string) error {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return fmt.Errorf("failed to get current file path")
	}

	dir := filepath.Dir(filename)
	migrationsDir := filepath.Join(dir, "../migrations")
	// Convert backslashes to forward slashes for Windows compatibility
	migrationsDir = strings.ReplaceAll(migrationsDir, "\\", "/")

	log.Printf("Resolved migrations directory: %s", migrationsDir)

	driver, err := pgx.WithInstance(sr.DB, &pgx.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %v", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsDir, dbName, driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %v", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %v", err)
	}

	log.Println("Migrations complete")
	return nil
}

// Create inserts a model into the corresponding db table and returns id of the
// newly created record.
func (sr *SqlRepo) Create(m models.Model) (id int64, err error) {
	vals := models.GetValsFromModel(m)

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		m.TableName(),
		strings.Join(m.ColumnNames(), ", "),
		placeholders(1, len(vals)))

	stmt, err := sr.DB.Prepare(query)
	if err != nil {
		return 0, fmt.Errorf("error preparing query: %v", err)
	}
	defer stmt.Close()

	row := stmt.QueryRow(vals...)
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("error executing query: %v", err)
	}

	return id, nil
}

func (sr *SqlRepo) Update(m models.Model) error {
	columns := m.ColumnNames()

	setClause := make([]string, (len(columns)))
	for i, c := range columns {
		setClause[i] = fmt.Sprintf("%s = $%d", c, i+1)
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d",
		m.TableName(),
		strings.Join(setClause, ", "),
		len(columns)+1)

	stmt, err := sr.DB.Prepare(query)
	if err != nil {
		return fmt.Errorf("error preparing query: %v", err)
	}
	defer stmt.Close()

	vals := models.GetValsFromModel(m)
	vals = append(vals, m.GetID())
	if _, err := stmt.Exec(vals...); err != nil {
		return fmt.Errorf("error executing query: %v", err)
	}
	return nil
}

func (sr *SqlRepo) Delete(m models.Model) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", m.TableName())
	stmt, err := sr.DB.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	if _, err = stmt.Exec(m.GetID()); err != nil {
		return fmt.Errorf("error deleting record: %v", err)
	}
	return nil
}

// GetModelByID retrieves a model from the db by its ID and returns it. The
// model must be passed as a pointer to the desired model type.
func (sr *SqlRepo) GetModelByID(m models.Model, id int64) (models.Model, error) {
	query := fmt.Sprintf("SELECT * FROM %s WHERE id = $1", m.TableName())
	r := sr.DB.QueryRow(query, id)

	if err := models.ScanRowToModel(m, r); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoRecord
		}
		return nil, err
	}
	return m, nil
}

func (sr *SqlRepo) GetUserByID(id int64) (models.User, error) {
	model, err := sr.GetModelByID(&models.User{}, id)
	if err != nil {
		return models.User{}, err
	}

	user, ok := model.(*models.User)
	if !ok {
		return models.User{}, fmt.Errorf("type assertion to User failed")
	}

	return *user, nil
}

func (sr *SqlRepo) GetCategoryByID(id int64) (models.Category, error) {
	model, err := sr.GetModelByID(&models.Category{}, id)
	if err != nil {
		return models.Category{}, err
	}

	category, ok := model.(*models.Category)
	if !ok {
		return models.Category{}, fmt.Errorf("type assertion to Category failed")
	}

	return *category, nil
}

func (sr *SqlRepo) GetEventByID(id int64) (models.Event, error) {
	model, err := sr.GetModelByID(&models.Event{}, id)
	if err != nil {
		return models.Event{}, err
	}

	event, ok := model.(*models.Event)
	if !ok {
		return models.Event{}, fmt.Errorf("type assertion to Event failed")
	}

	return *event, nil
}

func (sr *SqlRepo) GetRequestByID(id int64) (models.Request, error) {
	model, err := sr.GetModelByID(&models.Request{}, id)
	if err != nil {
		return models.Request{}, err
	}

	request, ok := model.(*models.Request)
	if !ok {
		return models.Request{}, fmt.Errorf("type assertion to Request failed")
	}

	return *request, nil
}

func (sr *SqlRepo) UserExists(id int64) (bool, error) {
	return sr.rowExists("SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)", id)
}

func (sr *SqlRepo) CategoryExists(id int64) (bool, error) {
	return sr.rowExists("SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)", id)
}

func (sr *SqlRepo) rowExists(query string, id int64) (bool, error) {
	var exists bool
	if err := sr.DB.QueryRow(query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking existence: %v", err)
	}
	return exists, nil
}

// QueryEvents retrieves events filtered, sorted and paginated by the given URL
// query parameters. See buildQueryClauses for the accepted parameter grammar.
func (sr *SqlRepo) QueryEvents(queryParams map[string]string) ([]models.Event, error) {
	clauses, vals, expectedRows, err := buildQueryClauses(queryParams, models.Event{})
	if err != nil {
		return nil, fmt.Errorf("invalid query: %v", err)
	}

	query := fmt.Sprintf("SELECT * FROM events %s", clauses)
	rows, err := sr.DB.Query(query, vals...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %v", err)
	}
	defer rows.Close()

	slice, err := models.ScanRowsToSliceOfModels(models.Event{}, rows, expectedRows)
	if err != nil {
		return nil, err
	}

	events, ok := slice.(*[]models.Event)
	if !ok {
		return nil, fmt.Errorf("type assertion to []Event failed")
	}
	return *events, nil
}

func (sr *SqlRepo) EventsByInitiatorID(initiatorID int64, limit, offset int) ([]models.Event, error) {
	rows, err := sr.DB.Query("SELECT * FROM events WHERE initiator_id = $1 ORDER BY id LIMIT $2 OFFSET $3",
		initiatorID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %v", err)
	}
	defer rows.Close()

	slice, err := models.ScanRowsToSliceOfModels(models.Event{}, rows, limit)
	if err != nil {
		return nil, err
	}

	events, ok := slice.(*[]models.Event)
	if !ok {
		return nil, fmt.Errorf("type assertion to []Event failed")
	}
	return *events, nil
}

func (sr *SqlRepo) RequestsByEventID(eventID int64) ([]models.Request, error) {
	rows, err := sr.DB.Query("SELECT * FROM participation_requests WHERE event_id = $1 ORDER BY id", eventID)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %v", err)
	}
	defer rows.Close()
	return scanRequests(rows)
}

func (sr *SqlRepo) RequestsByRequesterID(requesterID int64) ([]models.Request, error) {
	rows, err := sr.DB.Query("SELECT * FROM participation_requests WHERE requester_id = $1 ORDER BY id", requesterID)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %v", err)
	}
	defer rows.Close()
	return scanRequests(rows)
}

// CountConfirmedRequests returns the number of admitted participants for an
// event as of the query. Callers gating a write on this number must use the
// transactional variants below instead.
func (sr *SqlRepo) CountConfirmedRequests(eventID int64) (int, error) {
	var count int
	err := sr.DB.QueryRow(
		"SELECT COUNT(*) FROM participation_requests WHERE event_id = $1 AND status = $2",
		eventID, models.RequestConfirmed).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting confirmed requests: %v", err)
	}
	return count, nil
}

func scanRequests(rows *sql.Rows) ([]models.Request, error) {
	slice, err := models.ScanRowsToSliceOfModels(models.Request{}, rows, 50)
	if err != nil {
		return nil, err
	}

	requests, ok := slice.(*[]models.Request)
	if !ok {
		return nil, fmt.Errorf("type assertion to []Request failed")
	}
	return *requests, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// placeholders renders n comma-separated positional placeholders starting at
// index start, e.g. placeholders(2, 3) -> "$2, $3, $4".
func placeholders(start, n int) string {
	ph := make([]string, n)
	for i := 0; i < n; i++ {
		ph[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(ph, ", ")
}
