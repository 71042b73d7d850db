package repository

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/emlakcrm/go-audit-api/internal/apperrors"
	"github.com/emlakcrm/go-audit-api/internal/interfaces"
	"github.com/emlakcrm/go-audit-api/internal/models"
)

// UserRepository kullanıcı database işlemleri
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository yeni repository oluşturur ve arayüz olarak döndürür.
func NewUserRepository(db *sql.DB) interfaces.UserRepositoryInterface {
	return &UserRepository{db: db}
}

// Create yeni kullanıcı oluşturur
func (r *UserRepository) Create(user *models.CreateUserRequest) (*models.User, error) {
	query := `
		INSERT INTO users (id, company_id, name, email, password, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, company_id, name, email, role, created_at
	`

	var result models.User
	err := r.db.QueryRow(query, uuid.New().String(), user.CompanyID, user.Name, user.Email, user.Password, user.Role).Scan(
		&result.ID,
		&result.CompanyID,
		&result.Name,
		&result.Email,
		&result.Role,
		&result.CreatedAt,
	)

	if err != nil {
		return nil, apperrors.NewPersistence("kullanıcı oluşturulamadı", err)
	}

	return &result, nil
}

// GetByEmail email ile kullanıcı bulur
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	query := `
		SELECT id, company_id, name, email, password, role, created_at
		FROM users
		WHERE email = $1
	`

	var user models.User
	err := r.db.QueryRow(query, email).Scan(
		&user.ID,
		&user.CompanyID,
		&user.Name,
		&user.Email,
		&user.Password,
		&user.Role,
		&user.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFound("kullanıcı bulunamadı")
		}
		return nil, apperrors.NewPersistence("kullanıcı arama hatası", err)
	}

	return &user, nil
}

// GetByID ID ile kullanıcı bulur
func (r *UserRepository) GetByID(id string) (*models.User, error) {
	query := `
		SELECT id, company_id, name, email, role, created_at
		FROM users
		WHERE id = $1
	`

	var user models.User
	err := r.db.QueryRow(query, id).Scan(
		&user.ID,
		&user.CompanyID,
		&user.Name,
		&user.Email,
		&user.Role,
		&user.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFound("kullanıcı bulunamadı")
		}
		return nil, apperrors.NewPersistence("kullanıcı arama hatası", err)
	}

	return &user, nil
}
