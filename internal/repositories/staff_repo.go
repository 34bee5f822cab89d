package repositories

import (
	"context"

	"github.com/civic-reports/backend/internal/models"
)

type StaffRepo struct {
	db DBTX
}

func NewStaffRepo(db DBTX) *StaffRepo {
	return &StaffRepo{db: db}
}

const staffColumns = `id, name, email, role, department, active, created_at`

func (r *StaffRepo) GetByID(ctx context.Context, id int64) (*models.StaffUser, error) {
	var u models.StaffUser
	err := r.db.QueryRow(ctx, `
		SELECT `+staffColumns+`
		FROM staff_users WHERE id = $1
	`, id).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Department, &u.Active, &u.CreatedAt)
	if err != nil {
		return nil, notFound(err, "staff user not found")
	}
	return &u, nil
}

func (r *StaffRepo) GetActiveStaff(ctx context.Context, id int64) (*models.StaffUser, error) {
	var u models.StaffUser
	err := r.db.QueryRow(ctx, `
		SELECT `+staffColumns+`
		FROM staff_users WHERE id = $1 AND role = 'staff' AND active
	`, id).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Department, &u.Active, &u.CreatedAt)
	if err != nil {
		return nil, notFound(err, "staff member not found or inactive")
	}
	return &u, nil
}

func (r *StaffRepo) GetSupervisorByDepartment(ctx context.Context, department string) (*models.StaffUser, error) {
	var u models.StaffUser
	err := r.db.QueryRow(ctx, `
		SELECT `+staffColumns+`
		FROM staff_users
		WHERE department = $1 AND role = 'supervisor' AND active
		ORDER BY id ASC LIMIT 1
	`, department).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Department, &u.Active, &u.CreatedAt)
	if err != nil {
		return nil, notFound(err, "no supervisor for department %s", department)
	}
	return &u, nil
}

// GetCredentials looks a user up by email for login, returning the stored
// bcrypt hash alongside the user.
func (r *StaffRepo) GetCredentials(ctx context.Context, email string) (*models.StaffUser, string, error) {
	var u models.StaffUser
	var hash string
	err := r.db.QueryRow(ctx, `
		SELECT id, name, email, role, department, active, created_at, password_hash
		FROM staff_users WHERE email = $1 AND active
	`, email).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Department, &u.Active, &u.CreatedAt, &hash)
	if err != nil {
		return nil, "", notFound(err, "staff user not found")
	}
	return &u, hash, nil
}
