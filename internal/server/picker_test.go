package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPickerCoordinator_ActivateMintsDistinctSessionIDs(t *testing.T) {
	p := NewPickerCoordinator()

	first := p.Activate("", "diagnosis")
	second := p.Activate("", "notes")

	require.NotEmpty(t, first.SessionID)
	require.NotEmpty(t, second.SessionID)
	assert.NotEqual(t, first.SessionID, second.SessionID)
	assert.Equal(t, PickerPending, first.Status)
}

func TestPickerCoordinator_ReportCoordinatesTargetsCurrentSession(t *testing.T) {
	p := NewPickerCoordinator()

	assert.False(t, p.ReportCoordinates(10, 20))

	session := p.Activate("", "diagnosis")
	require.True(t, p.ReportCoordinates(100, 200))

	got, ok := p.Status(session.SessionID)
	require.True(t, ok)
	assert.Equal(t, PickerCompleted, got.Status)
	require.NotNil(t, got.Coordinates)
	assert.Equal(t, 100, got.Coordinates.X)
	assert.Equal(t, 200, got.Coordinates.Y)
}

func TestPickerCoordinator_ActivateHonorsCallerSuppliedSessionID(t *testing.T) {
	p := NewPickerCoordinator()

	session := p.Activate("s1", "patient_coords")
	assert.Equal(t, "s1", session.SessionID)

	got, ok := p.Status("s1")
	require.True(t, ok)
	assert.Equal(t, "s1", got.SessionID)
}

func TestPickerCoordinator_SecondActivationMovesCurrentPointer(t *testing.T) {
	p := NewPickerCoordinator()

	first := p.Activate("", "diagnosis")
	second := p.Activate("", "notes")
	require.True(t, p.ReportCoordinates(5, 5))

	firstStatus, _ := p.Status(first.SessionID)
	secondStatus, _ := p.Status(second.SessionID)
	assert.Equal(t, PickerPending, firstStatus.Status)
	assert.Equal(t, PickerCompleted, secondStatus.Status)
}
