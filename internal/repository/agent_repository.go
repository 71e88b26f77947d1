package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Fluffaro/desk-cartel/internal/domain"
)

// AgentFilter captures agent listing parameters.
type AgentFilter struct {
	Active *bool
	Limit  int
	Offset int
}

// AgentRepository encapsulates agent persistence. GetByIDForUpdate must lock
// the agent row for the duration of the enclosing transaction; every workload
// mutation goes through it.
type AgentRepository interface {
	Create(ctx context.Context, agent *domain.Agent) error
	Update(ctx context.Context, agent *domain.Agent) error
	GetByID(ctx context.Context, id string) (*domain.Agent, error)
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Agent, error)
	GetByUserID(ctx context.Context, userID string) (*domain.Agent, error)
	List(ctx context.Context, filter AgentFilter) ([]domain.Agent, error)
}

type agentRepository struct {
	pool *pgxpool.Pool
}

// NewAgentRepository instantiates repository.
func NewAgentRepository(pool *pgxpool.Pool) AgentRepository {
	return &agentRepository{pool: pool}
}

const agentColumns = `id, user_id, level, base_capacity, total_capacity, current_workload,
       is_active, completed_tickets, total_performance_points, created_at, updated_at`

func (r *agentRepository) Create(ctx context.Context, agent *domain.Agent) error {
	const query = `
        INSERT INTO agents (user_id, level, base_capacity, total_capacity, current_workload, is_active, completed_tickets, total_performance_points)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return db(ctx, r.pool).QueryRow(ctx, query,
		agent.UserID,
		agent.Level,
		agent.BaseCapacity,
		agent.TotalCapacity,
		agent.CurrentWorkload,
		agent.IsActive,
		agent.CompletedTickets,
		agent.TotalPerformancePoints,
	).Scan(&agent.ID, &agent.CreatedAt, &agent.UpdatedAt)
}

func (r *agentRepository) Update(ctx context.Context, agent *domain.Agent) error {
	const query = `
        UPDATE agents SET level=$1, base_capacity=$2, total_capacity=$3, current_workload=$4,
            is_active=$5, completed_tickets=$6, total_performance_points=$7, updated_at=NOW()
        WHERE id=$8`
	cmd, err := db(ctx, r.pool).Exec(ctx, query,
		agent.Level,
		agent.BaseCapacity,
		agent.TotalCapacity,
		agent.CurrentWorkload,
		agent.IsActive,
		agent.CompletedTickets,
		agent.TotalPerformancePoints,
		agent.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *agentRepository) GetByID(ctx context.Context, id string) (*domain.Agent, error) {
	query := fmt.Sprintf(`SELECT %s FROM agents WHERE id=$1`, agentColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *agentRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Agent, error) {
	query := fmt.Sprintf(`SELECT %s FROM agents WHERE id=$1 FOR UPDATE`, agentColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *agentRepository) GetByUserID(ctx context.Context, userID string) (*domain.Agent, error) {
	query := fmt.Sprintf(`SELECT %s FROM agents WHERE user_id=$1`, agentColumns)
	return r.fetchSingle(ctx, query, userID)
}

func (r *agentRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Agent, error) {
	var agent domain.Agent
	if err := db(ctx, r.pool).QueryRow(ctx, query, arg).Scan(
		&agent.ID,
		&agent.UserID,
		&agent.Level,
		&agent.BaseCapacity,
		&agent.TotalCapacity,
		&agent.CurrentWorkload,
		&agent.IsActive,
		&agent.CompletedTickets,
		&agent.TotalPerformancePoints,
		&agent.CreatedAt,
		&agent.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &agent, nil
}

func (r *agentRepository) List(ctx context.Context, filter AgentFilter) ([]domain.Agent, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Active != nil {
		args = append(args, *filter.Active)
		clauses = append(clauses, fmt.Sprintf("is_active=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM agents WHERE %s ORDER BY created_at ASC LIMIT %d OFFSET %d`,
		agentColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := db(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Agent
	for rows.Next() {
		var agent domain.Agent
		if err := rows.Scan(
			&agent.ID,
			&agent.UserID,
			&agent.Level,
			&agent.BaseCapacity,
			&agent.TotalCapacity,
			&agent.CurrentWorkload,
			&agent.IsActive,
			&agent.CompletedTickets,
			&agent.TotalPerformancePoints,
			&agent.CreatedAt,
			&agent.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, agent)
	}
	return result, rows.Err()
}
