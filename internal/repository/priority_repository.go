package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Fluffaro/desk-cartel/internal/domain"
)

// PriorityRepository encapsulates priority configuration persistence.
type PriorityRepository interface {
	Create(ctx context.Context, priority *domain.Priority) error
	Update(ctx context.Context, priority *domain.Priority) error
	GetByID(ctx context.Context, id string) (*domain.Priority, error)
	GetByName(ctx context.Context, name string) (*domain.Priority, error)
	List(ctx context.Context) ([]domain.Priority, error)
}

type priorityRepository struct {
	pool *pgxpool.Pool
}

// NewPriorityRepository instantiates repository.
func NewPriorityRepository(pool *pgxpool.Pool) PriorityRepository {
	return &priorityRepository{pool: pool}
}

func (r *priorityRepository) Create(ctx context.Context, priority *domain.Priority) error {
	const query = `
        INSERT INTO priorities (name, weight, time_limit_hours)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return db(ctx, r.pool).QueryRow(ctx, query,
		priority.Name,
		priority.Weight,
		priority.TimeLimitHours,
	).Scan(&priority.ID, &priority.CreatedAt, &priority.UpdatedAt)
}

func (r *priorityRepository) Update(ctx context.Context, priority *domain.Priority) error {
	const query = `
        UPDATE priorities SET name=$1, weight=$2, time_limit_hours=$3, updated_at=NOW()
        WHERE id=$4`
	cmd, err := db(ctx, r.pool).Exec(ctx, query,
		priority.Name,
		priority.Weight,
		priority.TimeLimitHours,
		priority.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *priorityRepository) GetByID(ctx context.Context, id string) (*domain.Priority, error) {
	const query = `SELECT id, name, weight, time_limit_hours, created_at, updated_at FROM priorities WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *priorityRepository) GetByName(ctx context.Context, name string) (*domain.Priority, error) {
	const query = `SELECT id, name, weight, time_limit_hours, created_at, updated_at FROM priorities WHERE name=$1`
	return r.fetchSingle(ctx, query, name)
}

func (r *priorityRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Priority, error) {
	var priority domain.Priority
	if err := db(ctx, r.pool).QueryRow(ctx, query, arg).Scan(
		&priority.ID,
		&priority.Name,
		&priority.Weight,
		&priority.TimeLimitHours,
		&priority.CreatedAt,
		&priority.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &priority, nil
}

func (r *priorityRepository) List(ctx context.Context) ([]domain.Priority, error) {
	const query = `SELECT id, name, weight, time_limit_hours, created_at, updated_at FROM priorities ORDER BY weight ASC`
	rows, err := db(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Priority
	for rows.Next() {
		var priority domain.Priority
		if err := rows.Scan(
			&priority.ID,
			&priority.Name,
			&priority.Weight,
			&priority.TimeLimitHours,
			&priority.CreatedAt,
			&priority.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, priority)
	}
	return result, rows.Err()
}
