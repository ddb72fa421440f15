// Package repository implements data access for users, addresses, and posts.
// Repositories build parameterized SQL, delegate paging to the pagination
// engine, and shape joined rows into response entities. Identifiers are
// opaque strings assigned at create time; timestamps are RFC3339 UTC strings.
package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// Address is the one-to-one relation nested onto a user in read responses.
type Address struct {
	Street  string `json:"street"`
	State   string `json:"state"`
	City    string `json:"city"`
	Zipcode string `json:"zipcode"`
}

// User is the response shape for user reads. Phone and Addresses serialize
// as explicit nulls when absent; the keys are part of the wire contract.
// Addresses is nil when the call site does not join the address relation or
// the join finds no row.
type User struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	Phone     *string  `json:"phone"`
	Addresses *Address `json:"addresses"`
}

// Post is the denormalized read shape: the author's display name and email
// replace the stored foreign key. The stored row keeps only user_id.
type Post struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
	User      string `json:"user"`
	Email     string `json:"email"`
}

// CreatedPost echoes the stored row back to the creator, foreign key intact.
type CreatedPost struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
}

// UserFeed is the asymmetric envelope body for a single user's posts.
type UserFeed struct {
	User  string `json:"user"`
	Email string `json:"email"`
	Posts []Post `json:"posts"`
}

type CreateUserParams struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// UpdateUserParams uses pointer fields so only supplied fields are written.
type UpdateUserParams struct {
	Name     *string `json:"name"`
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
}

type CreatePostParams struct {
	UserID string `json:"user_id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

type UpdatePostParams struct {
	Title *string `json:"title"`
	Body  *string `json:"body"`
}

// Sentinel errors surfaced by repositories. Controllers translate these with
// errors.Is; anything else is a generic store error.
var (
	ErrNotFound   = errors.New("record not found")
	ErrDuplicate  = errors.New("unique constraint violation")
	ErrForeignKey = errors.New("foreign key constraint violation")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// mapError folds Postgres constraint failures into the sentinel taxonomy.
func mapError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w", op, ErrDuplicate)
		case pgForeignKeyViolation:
			return fmt.Errorf("%s: %w", op, ErrForeignKey)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// nullable maps the empty string to SQL NULL for optional text columns.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// optional maps the empty string to a nil pointer for null-serialized
// response fields.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
