package repository

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDenormalizeAuthor(t *testing.T) {
	t.Run("resolved author", func(t *testing.T) {
		row := postRow{
			id:          "post-1",
			title:       "Hello",
			body:        "World",
			createdAt:   sql.NullString{String: "2024-01-15T10:00:00Z", Valid: true},
			authorName:  sql.NullString{String: "Alice", Valid: true},
			authorEmail: sql.NullString{String: "alice@example.com", Valid: true},
		}

		p := denormalizeAuthor(row)

		assert.Equal(t, "post-1", p.ID)
		assert.Equal(t, "Alice", p.User)
		assert.Equal(t, "alice@example.com", p.Email)
		assert.Equal(t, "2024-01-15T10:00:00Z", p.CreatedAt)
	})

	t.Run("dangling author gets placeholders", func(t *testing.T) {
		row := postRow{
			id:        "post-2",
			title:     "Orphan",
			body:      "No owner",
			createdAt: sql.NullString{String: "2024-01-15T10:00:00Z", Valid: true},
		}

		p := denormalizeAuthor(row)

		assert.Equal(t, "Unknown User", p.User)
		assert.Equal(t, "unknown@example.com", p.Email)
	})

	t.Run("missing timestamp defaults to now", func(t *testing.T) {
		p := denormalizeAuthor(postRow{id: "post-3", title: "t", body: "b"})

		require.NotEmpty(t, p.CreatedAt)
		parsed, err := time.Parse(time.RFC3339, p.CreatedAt)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().UTC(), parsed, 5*time.Second)
	})
}
