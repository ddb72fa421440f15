package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapError(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "unique violation maps to duplicate",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"},
			want: ErrDuplicate,
		},
		{
			name: "foreign key violation maps to foreign key",
			err:  &pgconn.PgError{Code: "23503", ConstraintName: "posts_user_id_fkey"},
			want: ErrForeignKey,
		},
		{
			name: "wrapped pg error still maps",
			err:  fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23505"}),
			want: ErrDuplicate,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := mapError("failed to create user", tc.err)
			assert.ErrorIs(t, got, tc.want)
			assert.Contains(t, got.Error(), "failed to create user")
		})
	}
}

func TestMapError_Passthrough(t *testing.T) {
	cause := errors.New("connection refused")
	got := mapError("failed to create user", cause)

	assert.ErrorIs(t, got, cause)
	assert.NotErrorIs(t, got, ErrDuplicate)
	assert.NotErrorIs(t, got, ErrForeignKey)
}

func TestNullable(t *testing.T) {
	assert.Nil(t, nullable(""))
	assert.Equal(t, any("555-1234"), nullable("555-1234"))
}

func TestOptional(t *testing.T) {
	assert.Nil(t, optional(""))
	require.NotNil(t, optional("555-1234"))
	assert.Equal(t, "555-1234", *optional("555-1234"))
}

func TestUserJSON_AbsentFieldsSerializeAsNull(t *testing.T) {
	// phone and addresses must appear as explicit null keys, never be dropped.
	data, err := json.Marshal(User{ID: "user-1", Name: "Alice", Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	phone, ok := decoded["phone"]
	assert.True(t, ok)
	assert.Nil(t, phone)

	addresses, ok := decoded["addresses"]
	assert.True(t, ok)
	assert.Nil(t, addresses)
}
