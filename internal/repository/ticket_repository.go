package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Fluffaro/desk-cartel/internal/domain"
)

// TicketFilter captures ticket query parameters.
type TicketFilter struct {
	OwnerID         *string
	AssignedAgentID *string
	Statuses        []domain.TicketStatus
	HasAgent        *bool
	Limit           int
	Offset          int
}

// TicketRepository encapsulates ticket persistence. Reads hydrate the
// referenced priority and category so callers can do capacity and scoring
// arithmetic without extra lookups.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketSelect = `
        SELECT t.id, t.owner_id, t.assigned_agent_id, t.priority_id, t.category_id,
               t.title, t.description, t.status, t.points,
               t.date_started, t.expected_completion_at, t.completion_date,
               t.created_at, t.updated_at,
               p.id, p.name, p.weight, p.time_limit_hours, p.created_at, p.updated_at,
               c.id, c.name, c.description, c.points, c.is_active, c.created_at, c.updated_at
        FROM tickets t
        JOIN priorities p ON p.id = t.priority_id
        JOIN categories c ON c.id = t.category_id`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (owner_id, assigned_agent_id, priority_id, category_id, title, description, status, points)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return db(ctx, r.pool).QueryRow(ctx, query,
		ticket.OwnerID,
		ticket.AssignedAgentID,
		ticket.PriorityID,
		ticket.CategoryID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Points,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET assigned_agent_id=$1, title=$2, description=$3, status=$4, points=$5,
            date_started=$6, expected_completion_at=$7, completion_date=$8, updated_at=NOW()
        WHERE id=$9`
	cmd, err := db(ctx, r.pool).Exec(ctx, query,
		ticket.AssignedAgentID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Points,
		ticket.DateStarted,
		ticket.ExpectedCompletionAt,
		ticket.CompletionDate,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	return r.fetchSingle(ctx, ticketSelect+` WHERE t.id=$1`, id)
}

// GetByIDForUpdate locks the ticket row inside the enclosing transaction.
// The joined priority/category rows are configuration and are not locked.
func (r *ticketRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Ticket, error) {
	return r.fetchSingle(ctx, ticketSelect+` WHERE t.id=$1 FOR UPDATE OF t`, id)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	row := db(ctx, r.pool).QueryRow(ctx, query, arg)
	ticket, err := scanTicket(row)
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		clauses = append(clauses, fmt.Sprintf("t.owner_id=$%d", len(args)))
	}
	if filter.AssignedAgentID != nil {
		args = append(args, *filter.AssignedAgentID)
		clauses = append(clauses, fmt.Sprintf("t.assigned_agent_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("t.status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.HasAgent != nil {
		if *filter.HasAgent {
			clauses = append(clauses, "t.assigned_agent_id IS NOT NULL")
		} else {
			clauses = append(clauses, "t.assigned_agent_id IS NULL")
		}
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY t.created_at ASC LIMIT %d OFFSET %d`,
		ticketSelect, strings.Join(clauses, " AND "), limit, offset)

	rows, err := db(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		ticket   domain.Ticket
		priority domain.Priority
		category domain.Category
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.OwnerID,
		&ticket.AssignedAgentID,
		&ticket.PriorityID,
		&ticket.CategoryID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Points,
		&ticket.DateStarted,
		&ticket.ExpectedCompletionAt,
		&ticket.CompletionDate,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&priority.ID,
		&priority.Name,
		&priority.Weight,
		&priority.TimeLimitHours,
		&priority.CreatedAt,
		&priority.UpdatedAt,
		&category.ID,
		&category.Name,
		&category.Description,
		&category.Points,
		&category.IsActive,
		&category.CreatedAt,
		&category.UpdatedAt,
	); err != nil {
		return nil, err
	}
	ticket.Priority = &priority
	ticket.Category = &category
	return &ticket, nil
}
