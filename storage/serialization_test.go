package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/placefinder/core"
)

func TestIndexEntrySerialization(t *testing.T) {
	t.Run("round trips a full entry", func(t *testing.T) {
		entry := &core.IndexEntry{
			Id:       "42",
			Document: "Title: Night Safari\nArea: Mandai",
			Vector:   []float32{0.1, -0.5, 0.85},
			Metadata: map[string]string{
				"index": "42",
				"title": "Night Safari",
			},
			Hash:       core.HashContent("Title: Night Safari\nArea: Mandai"),
			InsertedAt: time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC),
		}

		data := MarshalIndexEntry(entry)
		assert.Len(t, data, IndexEntryMUS.Size(*entry))

		got, err := UnmarshalIndexEntry(data)
		require.NoError(t, err)
		assert.Equal(t, entry, got)
	})

	t.Run("round trips empty vector and metadata", func(t *testing.T) {
		entry := &core.IndexEntry{
			Id:         "1",
			Document:   "doc",
			InsertedAt: time.UnixMicro(0).UTC(),
		}

		got, err := UnmarshalIndexEntry(MarshalIndexEntry(entry))
		require.NoError(t, err)
		assert.Equal(t, "1", got.Id)
		assert.Empty(t, got.Vector)
		assert.Empty(t, got.Metadata)
	})

	t.Run("timestamps keep microsecond precision in UTC", func(t *testing.T) {
		inserted := time.Date(2025, 6, 1, 12, 30, 0, 123456000, time.FixedZone("SGT", 8*3600))
		entry := &core.IndexEntry{Id: "1", Document: "doc", InsertedAt: inserted}

		got, err := UnmarshalIndexEntry(MarshalIndexEntry(entry))
		require.NoError(t, err)
		assert.Equal(t, time.UTC, got.InsertedAt.Location())
		assert.True(t, got.InsertedAt.Equal(inserted))
	})

	t.Run("truncated data fails to unmarshal", func(t *testing.T) {
		entry := &core.IndexEntry{Id: "1", Document: "doc", Vector: []float32{1, 2, 3}}
		data := MarshalIndexEntry(entry)

		_, err := UnmarshalIndexEntry(data[:len(data)/2])
		assert.ErrorIs(t, err, ErrSerializationFailed)
	})
}
