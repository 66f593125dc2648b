package service

import (
	"eventhub/data/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasRoom(t *testing.T) {
	cases := []struct {
		name     string
		limit    int
		admitted int
		want     bool
	}{
		{"zero limit means unlimited", 0, 1000, true},
		{"below the limit", 5, 4, true},
		{"at the limit", 5, 5, false},
		{"past the limit", 5, 6, false},
		{"empty event", 5, 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, hasRoom(tc.limit, tc.admitted))
		})
	}
}

func TestWouldExceed(t *testing.T) {
	cases := []struct {
		name       string
		limit      int
		admitted   int
		additional int
		want       bool
	}{
		{"zero limit never exceeds", 0, 1000, 1000, false},
		{"exact fill fits", 5, 3, 2, false},
		{"one too many", 5, 3, 3, true},
		{"already full", 5, 5, 1, true},
		{"empty batch", 5, 5, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, wouldExceed(tc.limit, tc.admitted, tc.additional))
		})
	}
}

func TestCapacityGuardReads(t *testing.T) {
	fx := newFixture()
	initiator := fx.addUser("initiator")
	first := fx.addUser("first")
	second := fx.addUser("second")
	third := fx.addUser("third")
	ev := fx.addEvent(initiator, eventOpts{state: models.EventPublished, limit: 3, moderation: true})
	fx.addRequest(ev.ID, first, models.RequestConfirmed)
	fx.addRequest(ev.ID, second, models.RequestConfirmed)
	fx.addRequest(ev.ID, third, models.RequestPending)

	admitted, err := fx.co.Guard.AdmittedCount(ev.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, admitted)

	hasRoom, err := fx.co.Guard.HasRoom(ev.ID, ev.ParticipantLimit)
	require.NoError(t, err)
	assert.True(t, hasRoom)

	wouldExceed, err := fx.co.Guard.WouldExceed(ev.ID, ev.ParticipantLimit, 2)
	require.NoError(t, err)
	assert.True(t, wouldExceed)
}
