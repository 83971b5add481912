package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/userpanel/adminserver/types"
)

// GroupRepository handles persistence for groups and their membership
// rows.
type GroupRepository struct {
	db *sql.DB
}

func NewGroupRepository(db *sql.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) GetByID(ctx context.Context, id int) (types.Group, error) {
	const query = `SELECT id, name FROM groups WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *GroupRepository) GetByName(ctx context.Context, name string) (types.Group, error) {
	const query = `SELECT id, name FROM groups WHERE name = $1`
	return r.getOne(ctx, query, name)
}

func (r *GroupRepository) getOne(ctx context.Context, query string, arg any) (types.Group, error) {
	var group types.Group
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&group.ID, &group.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Group{}, ErrNotFound
		}
		return types.Group{}, err
	}
	return group, nil
}

// List returns all groups ordered by name with member usernames
// eager-loaded.
func (r *GroupRepository) List(ctx context.Context) ([]types.Group, error) {
	const query = `
		SELECT g.id, g.name, COALESCE(u.username, '')
		FROM groups g
		LEFT JOIN user_groups ug ON ug.group_id = g.id
		LEFT JOIN users u ON u.id = ug.user_id
		ORDER BY g.name, u.username`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []types.Group
	for rows.Next() {
		var id int
		var name, member string
		if err := rows.Scan(&id, &name, &member); err != nil {
			return nil, err
		}
		if len(groups) == 0 || groups[len(groups)-1].ID != id {
			groups = append(groups, types.Group{ID: id, Name: name})
		}
		if member != "" {
			last := &groups[len(groups)-1]
			last.Members = append(last.Members, member)
		}
	}
	return groups, rows.Err()
}

// MemberCounts returns the number of members per group name.
func (r *GroupRepository) MemberCounts(ctx context.Context) (map[string]int, error) {
	const query = `
		SELECT g.name, COUNT(ug.user_id)
		FROM groups g
		LEFT JOIN user_groups ug ON ug.group_id = g.id
		GROUP BY g.name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return nil, err
		}
		counts[name] = count
	}
	return counts, rows.Err()
}

// Create inserts a new group. Returns ErrDuplicate if the name is
// taken.
func (r *GroupRepository) Create(ctx context.Context, name string) (types.Group, error) {
	const query = `INSERT INTO groups (name) VALUES ($1) RETURNING id`
	group := types.Group{Name: name}
	if err := r.db.QueryRowContext(ctx, query, name).Scan(&group.ID); err != nil {
		return types.Group{}, mapPQError(err)
	}
	return group, nil
}

// Rename changes the group's name.
func (r *GroupRepository) Rename(ctx context.Context, id int, newName string) error {
	const query = `UPDATE groups SET name = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, newName, id)
	if err != nil {
		return mapPQError(err)
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

// Delete removes the group and, via cascade, its membership rows.
func (r *GroupRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM groups WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
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

// AddMember makes the user a member of the group. Adding an existing
// member is a no-op.
func (r *GroupRepository) AddMember(ctx context.Context, userID, groupID int) error {
	const query = `
		INSERT INTO user_groups (user_id, group_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, userID, groupID)
	return err
}

// RemoveMember removes the user from the group. Removing a non-member
// is a no-op.
func (r *GroupRepository) RemoveMember(ctx context.Context, userID, groupID int) error {
	const query = `DELETE FROM user_groups WHERE user_id = $1 AND group_id = $2`
	_, err := r.db.ExecContext(ctx, query, userID, groupID)
	return err
}
