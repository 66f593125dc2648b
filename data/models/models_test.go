package models

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

type MockModel struct {
	ID        int64  `db:"id" readOnly:"true"`
	Name      string `db:"name"`
	Email     string `db:"email"`
	CreatedAt string `db:"created_at" readOnly:"true"`
}

func (m MockModel) TableName() string {
	return "mock_models"
}

func (m MockModel) ColumnNames() []string {
	return GetColumnNames(m, true)
}

func (m MockModel) GetID() int64 {
	return m.ID
}

func (m MockModel) EmptySlice() interface{} {
	return &[]MockModel{}
}

func TestGetValsFromModel(t *testing.T) {
	model := MockModel{
		ID:        1,
		Name:      "Test",
		Email:     "example@email.com",
		CreatedAt: "2023-10-01",
	}

	vals := GetValsFromModel(model)
	expectedVals := []interface{}{"Test", "example@email.com"}

	assert.Equal(t, expectedVals, vals)
}

func TestScanRowToModel(t *testing.T) {
	model := &MockModel{}

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "name", "email", "created_at"}).
		AddRow(1, "Test", "example@email.com", "2023-10-01")

	mock.ExpectQuery("SELECT \\* FROM mock_models WHERE id = \\?").WillReturnRows(rows)
	row := db.QueryRow("SELECT * FROM mock_models WHERE id = ?", 1)

	err = ScanRowToModel(model, row)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), model.ID)
	assert.Equal(t, "Test", model.Name)
	assert.Equal(t, "example@email.com", model.Email)
	assert.Equal(t, "2023-10-01", model.CreatedAt)
}

func TestValidateModel(t *testing.T) {
	validEvent := Event{
		InitiatorID:      1,
		CategoryID:       1,
		Title:            "An evening of chamber music",
		Annotation:       "Three string quartets in one sitting, doors at seven.",
		Description:      "A full description of the program, long enough to pass validation.",
		EventDate:        time.Now().Add(72 * time.Hour),
		ParticipantLimit: 40,
		State:            EventPending,
	}

	t.Run("valid event", func(t *testing.T) {
		assert.NoError(t, ValidateModel(validEvent))
	})

	t.Run("title too short", func(t *testing.T) {
		e := validEvent
		e.Title = "no"
		assert.Error(t, ValidateModel(e))
	})

	t.Run("negative participant limit", func(t *testing.T) {
		e := validEvent
		e.ParticipantLimit = -1
		assert.Error(t, ValidateModel(e))
	})

	t.Run("request missing status", func(t *testing.T) {
		r := Request{EventID: 1, RequesterID: 2}
		assert.Error(t, ValidateModel(r))
	})

	t.Run("user with bad email", func(t *testing.T) {
		u := User{Name: "Someone", Email: "not-an-email"}
		assert.Error(t, ValidateModel(u))
	})
}
