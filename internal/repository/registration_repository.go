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

const registrationColumns = "id, user_id, first_name, middle_name, last_name, suffix, birth_date, birth_place, gender, civil_status, nationality, religion, email, contact_number, address, guardian_name, guardian_contact, guardian_relationship, last_school_attended, program, year_level, student_type, semester_id, registration_status, remarks, created_at, updated_at"

// RegistrationRepository stores admission forms.
type RegistrationRepository struct {
	db *sqlx.DB
}

func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// Create inserts a registration with every submitted field.
func (r *RegistrationRepository) Create(ctx context.Context, reg *models.StudentRegistration) error {
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	reg.CreatedAt = now
	reg.UpdatedAt = now
	if reg.Status == "" {
		reg.Status = models.RegistrationPending
	}
	const query = `INSERT INTO student_registrations (` + registrationColumns + `) VALUES (:id, :user_id, :first_name, :middle_name, :last_name, :suffix, :birth_date, :birth_place, :gender, :civil_status, :nationality, :religion, :email, :contact_number, :address, :guardian_name, :guardian_contact, :guardian_relationship, :last_school_attended, :program, :year_level, :student_type, :semester_id, :registration_status, :remarks, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, reg); err != nil {
		return fmt.Errorf("create registration: %w", database.Classify(err))
	}
	return nil
}

// FindByID returns a registration.
func (r *RegistrationRepository) FindByID(ctx context.Context, id string) (*models.StudentRegistration, error) {
	query := `SELECT ` + registrationColumns + ` FROM student_registrations WHERE id = $1`
	var reg models.StudentRegistration
	if err := r.db.GetContext(ctx, &reg, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find registration: %w", err)
	}
	return &reg, nil
}

// FindByUserID returns the registration linked to an approved student.
func (r *RegistrationRepository) FindByUserID(ctx context.Context, userID string) (*models.StudentRegistration, error) {
	query := `SELECT ` + registrationColumns + ` FROM student_registrations WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`
	var reg models.StudentRegistration
	if err := r.db.GetContext(ctx, &reg, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find registration by user: %w", err)
	}
	return &reg, nil
}

// List returns registrations matching the filter.
func (r *RegistrationRepository) List(ctx context.Context, filter models.RegistrationFilter) ([]models.StudentRegistration, int, error) {
	where := squirrel.And{}
	if filter.Status != nil {
		where = append(where, squirrel.Eq{"registration_status": *filter.Status})
	}
	if filter.Program != "" {
		where = append(where, squirrel.Eq{"program": filter.Program})
	}
	if filter.YearLevel != nil {
		where = append(where, squirrel.Eq{"year_level": *filter.YearLevel})
	}
	if filter.SemesterID != "" {
		where = append(where, squirrel.Eq{"semester_id": filter.SemesterID})
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		where = append(where, squirrel.Or{
			squirrel.Like{"LOWER(first_name || ' ' || last_name)": pattern},
			squirrel.Like{"LOWER(email)": pattern},
		})
	}

	limit, offset := pageBounds(filter.Page, filter.PageSize)
	order := sortClause(filter.SortBy, filter.SortOrder, "created_at", map[string]string{
		"created_at": "created_at",
		"last_name":  "last_name",
		"program":    "program",
		"status":     "registration_status",
	})
	list := psql.Select(registrationColumns).From("student_registrations").Where(where).OrderBy(order).Limit(limit).Offset(offset)
	count := psql.Select("COUNT(*)").From("student_registrations").Where(where)

	regs := []models.StudentRegistration{}
	total, err := selectPage(ctx, r.db, &regs, list, count, "registrations")
	if err != nil {
		return nil, 0, err
	}
	return regs, total, nil
}

// Update rewrites the editable form fields.
func (r *RegistrationRepository) Update(ctx context.Context, reg *models.StudentRegistration) error {
	reg.UpdatedAt = time.Now().UTC()
	const query = `UPDATE student_registrations SET first_name = :first_name, middle_name = :middle_name, last_name = :last_name, suffix = :suffix, birth_date = :birth_date, birth_place = :birth_place, gender = :gender, civil_status = :civil_status, nationality = :nationality, religion = :religion, email = :email, contact_number = :contact_number, address = :address, guardian_name = :guardian_name, guardian_contact = :guardian_contact, guardian_relationship = :guardian_relationship, last_school_attended = :last_school_attended, program = :program, year_level = :year_level, student_type = :student_type, semester_id = :semester_id, remarks = :remarks, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, reg)
	if err != nil {
		return fmt.Errorf("update registration: %w", database.Classify(err))
	}
	return expectAffected(res)
}

// Delete removes a registration.
func (r *RegistrationRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM student_registrations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	return expectAffected(res)
}

// Reject marks a pending registration rejected.
func (r *RegistrationRepository) Reject(ctx context.Context, id string, remarks *string) error {
	const query = `UPDATE student_registrations SET registration_status = $2, remarks = $3, updated_at = $4 WHERE id = $1 AND registration_status = $5`
	res, err := r.db.ExecContext(ctx, query, id, models.RegistrationRejected, remarks, time.Now().UTC(), models.RegistrationPending)
	if err != nil {
		return fmt.Errorf("reject registration: %w", err)
	}
	return expectAffected(res)
}

// Approve creates the student account, links it to the pending registration,
// seeds the requirement checklist and writes a welcome notification in one
// transaction. sql.ErrNoRows means the registration was no longer pending.
func (r *RegistrationRepository) Approve(ctx context.Context, regID string, student *models.User, requirements []string, notification *models.Notification) error {
	prepareUser(student)
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := sqlx.NamedExecContext(ctx, tx, insertUserQuery, student); err != nil {
			return fmt.Errorf("create student user: %w", database.Classify(err))
		}

		const link = `UPDATE student_registrations SET user_id = $2, registration_status = $3, updated_at = $4 WHERE id = $1 AND registration_status = $5`
		res, err := tx.ExecContext(ctx, link, regID, student.ID, models.RegistrationApproved, time.Now().UTC(), models.RegistrationPending)
		if err != nil {
			return fmt.Errorf("link registration: %w", err)
		}
		if err := expectAffected(res); err != nil {
			return err
		}

		for _, name := range requirements {
			req := &models.Requirement{StudentID: student.ID, Name: name, Status: models.RequirementPending}
			if err := insertRequirement(ctx, tx, req); err != nil {
				return err
			}
		}

		if notification != nil {
			notification.UserID = student.ID
			if err := insertNotification(ctx, tx, notification); err != nil {
				return err
			}
		}
		return nil
	})
}
