package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tripveda/booking-backend/internal/models"
)

// PassengerTemplateRepository stores reusable passenger records so repeat
// travellers don't retype the passenger form
type PassengerTemplateRepository struct {
	db *sqlx.DB
}

// NewPassengerTemplateRepository creates a new PassengerTemplateRepository
func NewPassengerTemplateRepository(db *sqlx.DB) *PassengerTemplateRepository {
	return &PassengerTemplateRepository{db: db}
}

// Create inserts a template and assigns its id
func (r *PassengerTemplateRepository) Create(tpl *models.PassengerTemplate) error {
	tpl.ID = uuid.New()
	tpl.CreatedAt = time.Now()

	collegeJSON, err := json.Marshal(tpl.College)
	if err != nil {
		return fmt.Errorf("failed to marshal college: %w", err)
	}

	query := `
		INSERT INTO passenger_templates (id, user_id, name, phone, age, college, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = r.db.Exec(query, tpl.ID, tpl.UserID, tpl.Name, tpl.Phone, tpl.Age, collegeJSON, tpl.CreatedAt)
	return err
}

// ListByUser returns the user's templates, newest first
func (r *PassengerTemplateRepository) ListByUser(userID uuid.UUID) ([]models.PassengerTemplate, error) {
	query := `
		SELECT id, user_id, name, phone, age, college, created_at
		FROM passenger_templates
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := make([]models.PassengerTemplate, 0)
	for rows.Next() {
		var tpl models.PassengerTemplate
		var collegeJSON []byte
		if err := rows.Scan(&tpl.ID, &tpl.UserID, &tpl.Name, &tpl.Phone, &tpl.Age, &collegeJSON, &tpl.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(collegeJSON, &tpl.College); err != nil {
			return nil, fmt.Errorf("failed to unmarshal college: %w", err)
		}
		templates = append(templates, tpl)
	}
	return templates, rows.Err()
}

// Delete removes one of the user's templates
func (r *PassengerTemplateRepository) Delete(userID, templateID uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM passenger_templates WHERE id = $1 AND user_id = $2`, templateID, userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteOlderThan removes templates created before the cutoff and returns
// the number removed
func (r *PassengerTemplateRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM passenger_templates WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
