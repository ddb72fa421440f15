package repository

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNestAddress(t *testing.T) {
	t.Run("full address", func(t *testing.T) {
		row := userAddressRow{
			id:       "user-1",
			name:     "Alice",
			username: "alice",
			email:    "alice@example.com",
			phone:    sql.NullString{String: "555-1234", Valid: true},
			street:   sql.NullString{String: "123 Main St", Valid: true},
			state:    sql.NullString{String: "CA", Valid: true},
			city:     sql.NullString{String: "Springfield", Valid: true},
			zipcode:  sql.NullString{String: "90210", Valid: true},
		}

		u := nestAddress(row)

		assert.Equal(t, "user-1", u.ID)
		assert.Equal(t, "Alice", u.Name)
		require.NotNil(t, u.Phone)
		assert.Equal(t, "555-1234", *u.Phone)
		require.NotNil(t, u.Addresses)
		assert.Equal(t, "123 Main St", u.Addresses.Street)
		assert.Equal(t, "CA", u.Addresses.State)
		assert.Equal(t, "Springfield", u.Addresses.City)
		assert.Equal(t, "90210", u.Addresses.Zipcode)
	})

	t.Run("no address row", func(t *testing.T) {
		row := userAddressRow{
			id:       "user-2",
			name:     "Bob",
			username: "bob",
			email:    "bob@example.com",
		}

		u := nestAddress(row)

		assert.Nil(t, u.Addresses)
		assert.Nil(t, u.Phone)
	})

	t.Run("partial address is kept", func(t *testing.T) {
		row := userAddressRow{
			id:   "user-3",
			city: sql.NullString{String: "Springfield", Valid: true},
		}

		u := nestAddress(row)

		require.NotNil(t, u.Addresses)
		assert.Equal(t, "Springfield", u.Addresses.City)
		assert.Empty(t, u.Addresses.Street)
	})
}
