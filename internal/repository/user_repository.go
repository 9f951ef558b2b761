package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-admin-api/internal/models"
	"github.com/noah-isme/school-admin-api/pkg/database"
)

const userColumns = "id, id_number, password_hash, role, first_name, last_name, email, profile_photo, active, last_login, created_at, updated_at"

// UserRepository provides database access for accounts.
type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByIDNumber returns a user by school id number.
func (r *UserRepository) FindByIDNumber(ctx context.Context, idNumber string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id_number = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, idNumber); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id number: %w", err)
	}
	return &user, nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// UpdateLastLogin stamps the last successful login.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE users SET last_login = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, ts, ts); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	const query = `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, passwordHash, updatedAt)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return expectAffected(res)
}

// UpdateProfilePhoto sets or clears the profile photo path.
func (r *UserRepository) UpdateProfilePhoto(ctx context.Context, id string, photo *string) error {
	const query = `UPDATE users SET profile_photo = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, photo, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update profile photo: %w", err)
	}
	return expectAffected(res)
}

// List returns users matching the filter with the total count.
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	where := squirrel.And{}
	if filter.Role != nil {
		where = append(where, squirrel.Eq{"role": *filter.Role})
	}
	if filter.Active != nil {
		where = append(where, squirrel.Eq{"active": *filter.Active})
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		where = append(where, squirrel.Or{
			squirrel.Like{"LOWER(id_number)": pattern},
			squirrel.Like{"LOWER(first_name || ' ' || last_name)": pattern},
			squirrel.Like{"LOWER(email)": pattern},
		})
	}

	limit, offset := pageBounds(filter.Page, filter.PageSize)
	order := sortClause(filter.SortBy, filter.SortOrder, "created_at", map[string]string{
		"created_at": "created_at",
		"id_number":  "id_number",
		"last_name":  "last_name",
		"role":       "role",
	})

	list := psql.Select(userColumns).From("users").Where(where).OrderBy(order).Limit(limit).Offset(offset)
	count := psql.Select("COUNT(*)").From("users").Where(where)

	users := []models.User{}
	total, err := selectPage(ctx, r.db, &users, list, count, "users")
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	prepareUser(user)
	if _, err := r.db.NamedExecContext(ctx, insertUserQuery, user); err != nil {
		return fmt.Errorf("create user: %w", database.Classify(err))
	}
	return nil
}

// Update writes the mutable profile fields.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	const query = `UPDATE users SET first_name = :first_name, last_name = :last_name, email = :email, role = :role, active = :active, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return expectAffected(res)
}

// Deactivate marks the account inactive and drops its sessions.
func (r *UserRepository) Deactivate(ctx context.Context, id string) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE users SET active = FALSE, updated_at = $2 WHERE id = $1`, id, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("deactivate user: %w", err)
		}
		if err := expectAffected(res); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM user_sessions WHERE user_id = $1`, id); err != nil {
			return fmt.Errorf("drop user sessions: %w", err)
		}
		return nil
	})
}

// MaxStudentSequence returns the highest numeric suffix among id numbers
// shaped like "<year>-NNNNN".
func (r *UserRepository) MaxStudentSequence(ctx context.Context, year int) (int, error) {
	const query = `SELECT COALESCE(MAX(CAST(SUBSTRING(id_number FROM 6) AS INTEGER)), 0) FROM users WHERE id_number ~ $1`
	var seq int
	if err := r.db.GetContext(ctx, &seq, query, fmt.Sprintf("^%04d-[0-9]{5}$", year)); err != nil {
		return 0, fmt.Errorf("max student sequence: %w", err)
	}
	return seq, nil
}

const insertUserQuery = `INSERT INTO users (id, id_number, password_hash, role, first_name, last_name, email, profile_photo, active, created_at, updated_at) VALUES (:id, :id_number, :password_hash, :role, :first_name, :last_name, :email, :profile_photo, :active, :created_at, :updated_at)`

func prepareUser(user *models.User) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
