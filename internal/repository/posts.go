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

// Placeholder author fields for posts whose owning user no longer resolves.
const (
	unknownAuthorName  = "Unknown User"
	unknownAuthorEmail = "unknown@example.com"
)

type Posts struct {
	db     *store.Store
	logger *zap.SugaredLogger
}

func NewPosts(db *store.Store, logger *zap.SugaredLogger) *Posts {
	return &Posts{
		db:     db,
		logger: logger,
	}
}

// FeedResult is the envelope for a single user's posts. It deliberately
// differs from the flat list envelope: the data member is an object carrying
// the owner's name and email alongside the page of posts.
type FeedResult struct {
	Data       UserFeed            `json:"data"`
	Pagination pagination.Metadata `json:"pagination"`
}

// List returns all posts ordered by id, each denormalized with its author's
// name and email.
func (r *Posts) List(ctx context.Context, page, limit int) (*pagination.Result[Post], error) {
	q := pagination.Query{
		CountSQL: `SELECT COUNT(*) FROM posts`,
		DataSQL: `
			SELECT p.id, p.title, p.body, p.created_at, u.name, u.email
			FROM posts p
			LEFT JOIN users u ON p.user_id = u.id
			ORDER BY p.id
			LIMIT $1 OFFSET $2
		`,
	}

	scan := func(rows *sql.Rows) (postRow, error) {
		return scanPost(rows)
	}

	result, err := pagination.Paginate(ctx, r.db, q, page, limit, scan, denormalizeAuthor)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return result, nil
}

// ListByUser pages through one user's posts. The owner is fetched first and
// ErrNotFound propagates when the user does not exist; the two steps are not
// transactional, so a concurrent delete between them is tolerated.
func (r *Posts) ListByUser(ctx context.Context, userID string, page, limit int) (*FeedResult, error) {
	var name, email string
	err := r.db.QueryRowContext(ctx, `SELECT name, email FROM users WHERE id = $1`, userID).
		Scan(&name, &email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get post owner: %w", err)
	}

	q := pagination.Query{
		CountSQL:  `SELECT COUNT(*) FROM posts WHERE user_id = $1`,
		CountArgs: []any{userID},
		DataSQL: `
			SELECT p.id, p.title, p.body, p.created_at, u.name, u.email
			FROM posts p
			LEFT JOIN users u ON p.user_id = u.id
			WHERE p.user_id = $1
			ORDER BY p.id
			LIMIT $2 OFFSET $3
		`,
		DataArgs: []any{userID},
	}

	scan := func(rows *sql.Rows) (postRow, error) {
		return scanPost(rows)
	}

	result, err := pagination.Paginate(ctx, r.db, q, page, limit, scan, denormalizeAuthor)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts for user %s: %w", userID, err)
	}

	return &FeedResult{
		Data: UserFeed{
			User:  name,
			Email: email,
			Posts: result.Data,
		},
		Pagination: result.Pagination,
	}, nil
}

// GetByID returns the denormalized post, or ErrNotFound when no row matches.
func (r *Posts) GetByID(ctx context.Context, id string) (*Post, error) {
	query := `
		SELECT p.id, p.title, p.body, p.created_at, u.name, u.email
		FROM posts p
		LEFT JOIN users u ON p.user_id = u.id
		WHERE p.id = $1
	`

	row, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("post %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	post := denormalizeAuthor(row)
	return &post, nil
}

// Create inserts a new post with a generated id and a server-assigned
// creation timestamp. A user_id referencing no existing user surfaces
// ErrForeignKey.
func (r *Posts) Create(ctx context.Context, params CreatePostParams) (*CreatedPost, error) {
	id := uuid.NewString()
	now := nowRFC3339()

	query := `
		INSERT INTO posts (id, user_id, title, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query, id, params.UserID, params.Title, params.Body, now, now)
	if err != nil {
		return nil, mapError("failed to create post", err)
	}

	r.logger.Debugw("Created post", "id", id, "user_id", params.UserID)

	return &CreatedPost{
		ID:        id,
		UserID:    params.UserID,
		Title:     params.Title,
		Body:      params.Body,
		CreatedAt: now,
	}, nil
}

// Update writes only the supplied title/body fields and returns the
// changed-row count.
func (r *Posts) Update(ctx context.Context, id string, params UpdatePostParams) (int64, error) {
	var fields []setField
	if params.Title != nil {
		fields = append(fields, setField{"title", *params.Title})
	}
	if params.Body != nil {
		fields = append(fields, setField{"body", *params.Body})
	}

	query, args := buildUpdate("posts", fields, id, nowRFC3339())

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapError("failed to update post", err)
	}

	changes, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return changes, nil
}

// Delete removes a post by id and returns the deleted-row count.
func (r *Posts) Delete(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete post: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return deleted, nil
}

// postRow is the raw shape of the posts-users left join.
type postRow struct {
	id          string
	title       string
	body        string
	createdAt   sql.NullString
	authorName  sql.NullString
	authorEmail sql.NullString
}

func scanPost(s rowScanner) (postRow, error) {
	var row postRow
	err := s.Scan(&row.id, &row.title, &row.body, &row.createdAt, &row.authorName, &row.authorEmail)
	return row, err
}

// denormalizeAuthor projects the author's name and email onto the post,
// substituting placeholders when the join found no user and defaulting the
// creation timestamp to now when the row carries none.
func denormalizeAuthor(row postRow) Post {
	p := Post{
		ID:        row.id,
		Title:     row.title,
		Body:      row.body,
		CreatedAt: row.createdAt.String,
		User:      unknownAuthorName,
		Email:     unknownAuthorEmail,
	}

	if row.authorName.Valid {
		p.User = row.authorName.String
	}
	if row.authorEmail.Valid {
		p.Email = row.authorEmail.String
	}
	if p.CreatedAt == "" {
		p.CreatedAt = nowRFC3339()
	}
	return p
}
