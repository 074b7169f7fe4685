package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d1childress/neoTUI/scanner"
)

func TestEntrySerializationRoundTrip(t *testing.T) {
	entry := &Entry{
		ID:        "a3f5c62e-1234-4f72-a84a-1c2d3e4f5678",
		Host:      "scanme.example.com",
		PortSpec:  "20-25",
		CreatedAt: time.Date(2026, 5, 1, 12, 0, 0, 123456789, time.UTC),
		Duration:  "640ms",
		Report: scanner.Aggregate([]scanner.Outcome{
			{Port: 22, State: scanner.StateOpen, Service: "SSH"},
			{Port: 21, State: scanner.StateClosed},
		}, 6),
	}

	fields, err := serializeEntry(entry)
	require.NoError(t, err)

	asStrings := make(map[string]string, len(fields))
	for k, v := range fields {
		asStrings[k] = v.(string)
	}

	got, err := deserializeEntry(asStrings)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, got.ID)
	assert.Equal(t, entry.Host, got.Host)
	assert.True(t, entry.CreatedAt.Equal(got.CreatedAt))
	require.NotNil(t, got.Report)
	assert.Equal(t, 6, got.Report.TotalRequested)
	require.Len(t, got.Report.Open, 1)
	assert.Equal(t, "SSH", got.Report.Open[0].Service)
}

func TestDeserializeEntry_BadTimestamp(t *testing.T) {
	_, err := deserializeEntry(map[string]string{"id": "x", "created_at": "yesterday"})
	assert.Error(t, err)
}

func TestDeserializeEntry_EmptyReport(t *testing.T) {
	got, err := deserializeEntry(map[string]string{"id": "x"})
	require.NoError(t, err)
	assert.Nil(t, got.Report)
}
