package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mentalist/counseling_backend/internal/model"
	"github.com/mentalist/counseling_backend/internal/repository/base"
)

// UserRepository is the read side of accounts plus the admin toggles.
// Registration and login live outside this service.
type UserRepository struct {
	*base.Repository
}

func NewUserRepository(b *base.Repository) *UserRepository {
	return &UserRepository{Repository: b}
}

// Lookup returns the identity of a user, or nil if unknown.
func (r *UserRepository) Lookup(ctx context.Context, userID uuid.UUID) (*model.Identity, error) {
	query := `
		SELECT u.id, u.name, u.email, ro.name, u.is_active, u.telegram_chat_id,
		       cp.user_id IS NOT NULL,
		       COALESCE(cp.is_accepting_patients AND cp.is_active, FALSE)
		FROM users u
		JOIN roles ro ON ro.id = u.role_id
		LEFT JOIN counselor_profiles cp ON cp.user_id = u.id
		WHERE u.id = $1
	`

	var id model.Identity
	err := r.QueryRow(ctx, query, userID).Scan(
		&id.UserID,
		&id.Name,
		&id.Email,
		&id.Role,
		&id.IsActive,
		&id.TelegramChatID,
		&id.HasProfile,
		&id.AcceptingClients,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return &id, nil
}

// ListAdmins returns ids of active admins.
func (r *UserRepository) ListAdmins(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.Query(ctx, `
		SELECT u.id
		FROM users u
		JOIN roles ro ON ro.id = u.role_id
		WHERE ro.name = 'admin' AND u.is_active
	`)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan admin id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const counselorProfileQuery = `
	SELECT u.id, u.name, u.email, u.picture, cp.specialization, cp.bio,
	       cp.is_active, cp.is_accepting_patients, u.created_at
	FROM users u
	JOIN roles ro ON ro.id = u.role_id
	JOIN counselor_profiles cp ON cp.user_id = u.id
	WHERE ro.name = 'konselor'
`

func (r *UserRepository) queryCounselors(ctx context.Context, query string, args ...any) ([]*model.CounselorProfile, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*model.CounselorProfile
	for rows.Next() {
		var p model.CounselorProfile
		err := rows.Scan(&p.UserID, &p.Name, &p.Email, &p.Picture, &p.Specialization, &p.Bio,
			&p.IsActive, &p.AcceptingClients, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan counselor: %w", err)
		}
		profiles = append(profiles, &p)
	}
	return profiles, rows.Err()
}

// ListCounselors returns every counselor with a profile.
func (r *UserRepository) ListCounselors(ctx context.Context) ([]*model.CounselorProfile, error) {
	profiles, err := r.queryCounselors(ctx, counselorProfileQuery+` ORDER BY u.name`)
	if err != nil {
		return nil, fmt.Errorf("list counselors: %w", err)
	}
	return profiles, nil
}

// ListCounselorsByIDs returns profiles for the given counselor ids.
func (r *UserRepository) ListCounselorsByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.CounselorProfile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	profiles, err := r.queryCounselors(ctx, counselorProfileQuery+` AND u.id = ANY($1) ORDER BY u.name`, ids)
	if err != nil {
		return nil, fmt.Errorf("list counselors by ids: %w", err)
	}
	return profiles, nil
}

// ListUsers returns accounts with the given role.
func (r *UserRepository) ListUsers(ctx context.Context, role model.Role) ([]*model.User, error) {
	rows, err := r.Query(ctx, `
		SELECT u.id, u.name, u.email, u.picture, ro.name, u.is_active, u.created_at
		FROM users u
		JOIN roles ro ON ro.id = u.role_id
		WHERE ro.name = $1
		ORDER BY u.created_at DESC
	`, role)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Picture, &u.Role, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

// ToggleUserActive flips users.is_active and returns the new value.
// found is false when no such user exists.
func (r *UserRepository) ToggleUserActive(ctx context.Context, userID uuid.UUID) (active, found bool, err error) {
	err = r.QueryRow(ctx, `
		UPDATE users SET is_active = NOT is_active, updated_at = now()
		WHERE id = $1
		RETURNING is_active
	`, userID).Scan(&active)
	if err != nil {
		if base.IsNotFound(err) {
			return false, false, nil
		}
		return false, false, fmt.Errorf("toggle user active: %w", err)
	}
	return active, true, nil
}

// ToggleCounselorActive flips counselor_profiles.is_active and returns the new value.
func (r *UserRepository) ToggleCounselorActive(ctx context.Context, userID uuid.UUID) (active, found bool, err error) {
	err = r.QueryRow(ctx, `
		UPDATE counselor_profiles SET is_active = NOT is_active, updated_at = now()
		WHERE user_id = $1
		RETURNING is_active
	`, userID).Scan(&active)
	if err != nil {
		if base.IsNotFound(err) {
			return false, false, nil
		}
		return false, false, fmt.Errorf("toggle counselor active: %w", err)
	}
	return active, true, nil
}

// CountByRole returns the number of accounts per role.
func (r *UserRepository) CountByRole(ctx context.Context) (map[model.Role]int, error) {
	rows, err := r.Query(ctx, `
		SELECT ro.name, count(u.id)
		FROM roles ro
		LEFT JOIN users u ON u.role_id = ro.id
		GROUP BY ro.name
	`)
	if err != nil {
		return nil, fmt.Errorf("count users by role: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.Role]int)
	for rows.Next() {
		var (
			role model.Role
			n    int
		)
		if err := rows.Scan(&role, &n); err != nil {
			return nil, fmt.Errorf("scan role count: %w", err)
		}
		counts[role] = n
	}
	return counts, rows.Err()
}
