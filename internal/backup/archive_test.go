package backup_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"livestock-farm-api-server/internal/backup"
)

func TestBuildAndParse(t *testing.T) {
	createdAt := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	data := map[string][]bson.M{
		"animals": {
			{"identificationNumber": "A-001", "status": "alive"},
			{"identificationNumber": "A-002", "status": "sold"},
		},
		"inventory_items": {
			{"name": "starter feed", "availableQuantity": 40.0},
		},
		"notifications": {},
	}

	archive, err := backup.Build(data, createdAt)
	require.NoError(t, err)
	require.NotEmpty(t, archive)

	parsed, meta, err := backup.Parse(archive)
	require.NoError(t, err)

	assert.Equal(t, backup.FormatVersion, meta.Version)
	assert.True(t, meta.CreatedAt.Equal(createdAt))
	assert.Equal(t, 2, meta.Collections["animals"])
	assert.Equal(t, 1, meta.Collections["inventory_items"])
	assert.Equal(t, 0, meta.Collections["notifications"])

	require.Len(t, parsed["animals"], 2)
	assert.Equal(t, "A-001", parsed["animals"][0]["identificationNumber"])
	assert.Equal(t, "starter feed", parsed["inventory_items"][0]["name"])
}

func TestParseRejectsGarbage(t *testing.T) {
	_, _, err := backup.Parse([]byte("definitely not a zip"))
	assert.Error(t, err)
}

func TestBuildEmptyData(t *testing.T) {
	archive, err := backup.Build(map[string][]bson.M{}, time.Now())
	require.NoError(t, err)

	parsed, meta, err := backup.Parse(archive)
	require.NoError(t, err)
	assert.Empty(t, parsed)
	assert.Empty(t, meta.Collections)
}
