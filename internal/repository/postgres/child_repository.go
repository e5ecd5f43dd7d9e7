package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/kidsactivitytracker/backend/internal/domain"
	"github.com/kidsactivitytracker/backend/internal/repository"
)

type childRepository struct {
	db *sqlx.DB
}

func NewChildRepository(db *sqlx.DB) repository.ChildRepository {
	return &childRepository{db: db}
}

func (r *childRepository) Create(ctx context.Context, child *domain.ChildProfile) error {
	query := `
		INSERT INTO children (
			id, guardian_id, name, age, gender,
			activity_types_allowed, activity_types_excluded, days_available,
			slot_morning, slot_afternoon, slot_evening,
			price_min, price_max, distance_radius_km,
			home_address, environment_preference
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING created_at, updated_at
	`
	return r.db.QueryRowContext(
		ctx, query,
		child.ID, child.GuardianID, child.Name, child.Age, string(child.Gender),
		pq.Array(child.ActivityTypesAllowed), pq.Array(child.ActivityTypesExcluded),
		pq.Array(weekdayStrings(child.DaysAvailable)),
		child.TimeSlots.Morning, child.TimeSlots.Afternoon, child.TimeSlots.Evening,
		child.PriceRange.Min, child.PriceRange.Max, child.DistanceRadiusKm,
		rawAddressParam(child.HomeAddress), string(child.EnvironmentPreference),
	).Scan(&child.CreatedAt, &child.UpdatedAt)
}

const childColumns = `
	id, guardian_id, name, age, gender,
	activity_types_allowed, activity_types_excluded, days_available,
	slot_morning, slot_afternoon, slot_evening,
	price_min, price_max, distance_radius_km,
	home_address, environment_preference,
	created_at, updated_at
`

func (r *childRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ChildProfile, error) {
	query := `SELECT ` + childColumns + ` FROM children WHERE id = $1`
	child, err := scanChild(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrChildNotFound
		}
		return nil, err
	}
	return child, nil
}

func (r *childRepository) ListByGuardian(ctx context.Context, guardianID uuid.UUID) ([]*domain.ChildProfile, error) {
	query := `SELECT ` + childColumns + ` FROM children WHERE guardian_id = $1 ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, guardianID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var children []*domain.ChildProfile
	for rows.Next() {
		child, err := scanChild(rows)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, rows.Err()
}

func (r *childRepository) Update(ctx context.Context, child *domain.ChildProfile) error {
	query := `
		UPDATE children
		SET name = $1, age = $2, gender = $3,
		    activity_types_allowed = $4, activity_types_excluded = $5, days_available = $6,
		    slot_morning = $7, slot_afternoon = $8, slot_evening = $9,
		    price_min = $10, price_max = $11, distance_radius_km = $12,
		    home_address = $13, environment_preference = $14,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $15
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(
		ctx, query,
		child.Name, child.Age, string(child.Gender),
		pq.Array(child.ActivityTypesAllowed), pq.Array(child.ActivityTypesExcluded),
		pq.Array(weekdayStrings(child.DaysAvailable)),
		child.TimeSlots.Morning, child.TimeSlots.Afternoon, child.TimeSlots.Evening,
		child.PriceRange.Min, child.PriceRange.Max, child.DistanceRadiusKm,
		rawAddressParam(child.HomeAddress), string(child.EnvironmentPreference),
		child.ID,
	).Scan(&child.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrChildNotFound
	}
	return err
}

func (r *childRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM children WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrChildNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanChild(row rowScanner) (*domain.ChildProfile, error) {
	var (
		child    domain.ChildProfile
		gender   string
		env      string
		days     []string
		priceMax sql.NullFloat64
		address  sql.NullString
	)
	err := row.Scan(
		&child.ID, &child.GuardianID, &child.Name, &child.Age, &gender,
		pq.Array(&child.ActivityTypesAllowed), pq.Array(&child.ActivityTypesExcluded),
		pq.Array(&days),
		&child.TimeSlots.Morning, &child.TimeSlots.Afternoon, &child.TimeSlots.Evening,
		&child.PriceRange.Min, &priceMax, &child.DistanceRadiusKm,
		&address, &env,
		&child.CreatedAt, &child.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	child.Gender = domain.Gender(gender)
	child.EnvironmentPreference = domain.Environment(env)
	child.DaysAvailable = weekdaysFromStrings(days)
	if priceMax.Valid {
		child.PriceRange.Max = &priceMax.Float64
	}
	if address.Valid && address.String != "" {
		child.HomeAddress = json.RawMessage(address.String)
	}
	return &child, nil
}

// rawAddressParam sends the stored address as text so an absent address
// lands as NULL instead of an empty jsonb document.
func rawAddressParam(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func weekdayStrings(days []domain.Weekday) []string {
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = string(d)
	}
	return out
}

func weekdaysFromStrings(days []string) []domain.Weekday {
	if days == nil {
		return nil
	}
	out := make([]domain.Weekday, len(days))
	for i, d := range days {
		out[i] = domain.Weekday(d)
	}
	return out
}
