package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/userboard/userboard-backend/internal/pagination"
	"github.com/userboard/userboard-backend/internal/store"
	"go.uber.org/zap"
)

type Users struct {
	db     *store.Store
	logger *zap.SugaredLogger
}

func NewUsers(db *store.Store, logger *zap.SugaredLogger) *Users {
	return &Users{
		db:     db,
		logger: logger,
	}
}

// List returns users ordered by name, without the address relation.
func (r *Users) List(ctx context.Context, page, limit int) (*pagination.Result[User], error) {
	q := pagination.Query{
		CountSQL: `SELECT COUNT(*) FROM users`,
		DataSQL: `
			SELECT id, name, username, email, phone
			FROM users
			ORDER BY name
			LIMIT $1 OFFSET $2
		`,
	}

	result, err := pagination.Paginate(ctx, r.db, q, page, limit, scanUser, pagination.Identity[User])
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return result, nil
}

// ListWithAddresses returns users ordered by name with their address, if any,
// nested onto each entry.
func (r *Users) ListWithAddresses(ctx context.Context, page, limit int) (*pagination.Result[User], error) {
	q := pagination.Query{
		CountSQL: `SELECT COUNT(*) FROM users`,
		DataSQL: `
			SELECT
				u.id, u.name, u.username, u.email, u.phone,
				a.street, a.state, a.city, a.zipcode
			FROM users u
			LEFT JOIN addresses a ON u.id = a.user_id
			ORDER BY u.name
			LIMIT $1 OFFSET $2
		`,
	}

	scan := func(rows *sql.Rows) (userAddressRow, error) {
		return scanUserAddress(rows)
	}

	result, err := pagination.Paginate(ctx, r.db, q, page, limit, scan, nestAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to list users with addresses: %w", err)
	}
	return result, nil
}

// GetByID returns the nested-address shape, or ErrNotFound when no row matches.
func (r *Users) GetByID(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT
			u.id, u.name, u.username, u.email, u.phone,
			a.street, a.state, a.city, a.zipcode
		FROM users u
		LEFT JOIN addresses a ON u.id = a.user_id
		WHERE u.id = $1
	`

	row, err := scanUserAddress(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user := nestAddress(row)
	return &user, nil
}

// Create inserts a new user with a generated id. Duplicate username or email
// surfaces ErrDuplicate.
func (r *Users) Create(ctx context.Context, params CreateUserParams) (*User, error) {
	id := uuid.NewString()
	now := nowRFC3339()

	query := `
		INSERT INTO users (id, name, username, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		id,
		params.Name,
		params.Username,
		params.Email,
		nullable(params.Phone),
		now,
		now,
	)
	if err != nil {
		return nil, mapError("failed to create user", err)
	}

	r.logger.Debugw("Created user", "id", id, "username", params.Username)

	return &User{
		ID:       id,
		Name:     params.Name,
		Username: params.Username,
		Email:    params.Email,
		Phone:    optional(params.Phone),
	}, nil
}

// Update writes only the fields present in params and returns the changed-row
// count. Zero changes means no row matched the id.
func (r *Users) Update(ctx context.Context, id string, params UpdateUserParams) (int64, error) {
	var fields []setField
	if params.Name != nil {
		fields = append(fields, setField{"name", *params.Name})
	}
	if params.Username != nil {
		fields = append(fields, setField{"username", *params.Username})
	}
	if params.Email != nil {
		fields = append(fields, setField{"email", *params.Email})
	}
	if params.Phone != nil {
		fields = append(fields, setField{"phone", nullable(*params.Phone)})
	}

	query, args := buildUpdate("users", fields, id, nowRFC3339())

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapError("failed to update user", err)
	}

	changes, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return changes, nil
}

// Delete removes a user by id and returns the deleted-row count. The store
// cascades the user's address and posts. An empty id is rejected; the id
// column is a NOT NULL primary key, so there is no null-id row to fall back to.
func (r *Users) Delete(ctx context.Context, id string) (int64, error) {
	if id == "" {
		return 0, fmt.Errorf("user id is required")
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete user: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return deleted, nil
}

func scanUser(rows *sql.Rows) (User, error) {
	var u User
	var phone sql.NullString

	if err := rows.Scan(&u.ID, &u.Name, &u.Username, &u.Email, &phone); err != nil {
		return User{}, err
	}
	u.Phone = optional(phone.String)
	return u, nil
}

// userAddressRow is the raw shape of the users-addresses left join.
type userAddressRow struct {
	id       string
	name     string
	username string
	email    string
	phone    sql.NullString
	street   sql.NullString
	state    sql.NullString
	city     sql.NullString
	zipcode  sql.NullString
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUserAddress(s rowScanner) (userAddressRow, error) {
	var row userAddressRow
	err := s.Scan(
		&row.id, &row.name, &row.username, &row.email, &row.phone,
		&row.street, &row.state, &row.city, &row.zipcode,
	)
	return row, err
}

// nestAddress flattens the join row into a user with a nested address.
// A fully-null address side means the join found no match, so Addresses
// stays nil.
func nestAddress(row userAddressRow) User {
	u := User{
		ID:       row.id,
		Name:     row.name,
		Username: row.username,
		Email:    row.email,
		Phone:    optional(row.phone.String),
	}

	if row.street.Valid || row.state.Valid || row.city.Valid || row.zipcode.Valid {
		u.Addresses = &Address{
			Street:  row.street.String,
			State:   row.state.String,
			City:    row.city.String,
			Zipcode: row.zipcode.String,
		}
	}
	return u
}
