package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/userpanel/adminserver/types"
)

// UserRepository handles persistence for users and their group
// memberships.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, COALESCE(email, ''), COALESCE(full_name, ''), password_hash, active, created_at`

func scanUser(row *sql.Row) (types.User, error) {
	var user types.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FullName,
		&user.PasswordHash,
		&user.Active,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

// GetByUsername returns the user with its group memberships eager-loaded.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE username = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, username))
	if err != nil {
		return types.User{}, err
	}
	if user.Groups, err = r.groupsOf(ctx, user.ID); err != nil {
		return types.User{}, err
	}
	return user, nil
}

// GetByEmail returns the user with its group memberships eager-loaded.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		return types.User{}, err
	}
	if user.Groups, err = r.groupsOf(ctx, user.ID); err != nil {
		return types.User{}, err
	}
	return user, nil
}

// List returns all users ordered by username, groups eager-loaded.
func (r *UserRepository) List(ctx context.Context) ([]types.User, error) {
	return r.list(ctx, -1, 0)
}

// ListPage returns one page of users ordered by username, groups
// eager-loaded.
func (r *UserRepository) ListPage(ctx context.Context, offset, limit int) ([]types.User, error) {
	return r.list(ctx, limit, offset)
}

func (r *UserRepository) list(ctx context.Context, limit, offset int) ([]types.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY username`
	args := []any{}
	if limit >= 0 {
		query += ` LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []types.User
	var ids []int64
	for rows.Next() {
		var user types.User
		if err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.FullName,
			&user.PasswordHash,
			&user.Active,
			&user.CreatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, user)
		ids = append(ids, int64(user.ID))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return users, nil
	}

	memberships, err := r.groupsOfMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Groups = memberships[users[i].ID]
	}
	return users, nil
}

// Count returns the total number of users.
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total)
	return total, err
}

// Create inserts a new user. Returns ErrDuplicate on a username or
// email collision.
func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	user.CreatedAt = time.Now()
	user.Active = true

	const query = `
		INSERT INTO users (username, email, full_name, password_hash, active, created_at)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		user.Username,
		user.Email,
		user.FullName,
		user.PasswordHash,
		user.Active,
		user.CreatedAt,
	).Scan(&user.ID); err != nil {
		return types.User{}, mapPQError(err)
	}
	return user, nil
}

// UpdateFullName sets the display name of the named user.
func (r *UserRepository) UpdateFullName(ctx context.Context, username, fullName string) error {
	const query = `
		UPDATE users
		SET full_name = NULLIF($1, '')
		WHERE username = $2`
	result, err := r.db.ExecContext(ctx, query, fullName, username)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the named user. Membership rows are removed by the
// ON DELETE CASCADE constraint.
func (r *UserRepository) Delete(ctx context.Context, username string) error {
	const query = `DELETE FROM users WHERE username = $1`
	result, err := r.db.ExecContext(ctx, query, username)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) groupsOf(ctx context.Context, userID int) ([]types.Group, error) {
	const query = `
		SELECT g.id, g.name
		FROM groups g
		JOIN user_groups ug ON ug.group_id = g.id
		WHERE ug.user_id = $1
		ORDER BY g.name`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []types.Group
	for rows.Next() {
		var group types.Group
		if err := rows.Scan(&group.ID, &group.Name); err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, rows.Err()
}

func (r *UserRepository) groupsOfMany(ctx context.Context, userIDs []int64) (map[int][]types.Group, error) {
	const query = `
		SELECT ug.user_id, g.id, g.name
		FROM groups g
		JOIN user_groups ug ON ug.group_id = g.id
		WHERE ug.user_id = ANY($1)
		ORDER BY g.name`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(userIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	memberships := make(map[int][]types.Group)
	for rows.Next() {
		var userID int
		var group types.Group
		if err := rows.Scan(&userID, &group.ID, &group.Name); err != nil {
			return nil, err
		}
		memberships[userID] = append(memberships[userID], group)
	}
	return memberships, rows.Err()
}
