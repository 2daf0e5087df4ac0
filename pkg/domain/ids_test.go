package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUserID(t *testing.T) {
	t.Run("accepts a valid UUID", func(t *testing.T) {
		raw := uuid.NewString()

		id, err := ParseUserID(raw)

		require.NoError(t, err)
		assert.Equal(t, raw, id.String())
		assert.False(t, id.IsNil())
	})

	t.Run("rejects empty input", func(t *testing.T) {
		_, err := ParseUserID("")
		assert.Error(t, err)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := ParseUserID("report-42")
		assert.Error(t, err)
	})

	t.Run("rejects the nil UUID", func(t *testing.T) {
		_, err := ParseUserID(uuid.Nil.String())
		assert.Error(t, err)
	})
}

func TestTypedIDsRoundTripAsText(t *testing.T) {
	id := NewReportID()

	text, err := id.MarshalText()
	require.NoError(t, err)

	var decoded ReportID
	require.NoError(t, decoded.UnmarshalText(text))
	assert.Equal(t, id, decoded)
}

func TestNewIDsAreDistinct(t *testing.T) {
	assert.NotEqual(t, NewVoteID(), NewVoteID())
	assert.False(t, NewUserID().IsNil())
}
