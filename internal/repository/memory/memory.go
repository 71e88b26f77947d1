// Package memory provides in-process implementations of the repository
// interfaces. They back the degraded no-database mode and the service-level
// tests. Transactions are serialized through a single mutex rather than
// rolled back; with one mutator at a time the capacity re-check inside InTx
// gives the same guarantee the row locks give in Postgres.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Fluffaro/desk-cartel/internal/domain"
	"github.com/Fluffaro/desk-cartel/internal/repository"
)

// Store holds all entity maps behind one lock.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	users      map[string]domain.User
	agents     map[string]domain.Agent
	priorities map[string]domain.Priority
	categories map[string]domain.Category
	tickets    map[string]domain.Ticket
}

// NewStore builds an empty store.
func NewStore() *Store {
	return &Store{
		users:      make(map[string]domain.User),
		agents:     make(map[string]domain.Agent),
		priorities: make(map[string]domain.Priority),
		categories: make(map[string]domain.Category),
		tickets:    make(map[string]domain.Ticket),
	}
}

// InTx serializes mutating sections. Nested calls would deadlock, so the
// runner records tx ownership in the context the same way the pgx runner does.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, true))
}

type txKey struct{}

func inTx(ctx context.Context) bool {
	held, _ := ctx.Value(txKey{}).(bool)
	return held
}

// Users returns the user repository view.
func (s *Store) Users() repository.UserRepository { return &userRepo{s} }

// Agents returns the agent repository view.
func (s *Store) Agents() repository.AgentRepository { return &agentRepo{s} }

// Priorities returns the priority repository view.
func (s *Store) Priorities() repository.PriorityRepository { return &priorityRepo{s} }

// Categories returns the category repository view.
func (s *Store) Categories() repository.CategoryRepository { return &categoryRepo{s} }

// Tickets returns the ticket repository view.
func (s *Store) Tickets() repository.TicketRepository { return &ticketRepo{s} }

var _ repository.TxRunner = (*Store)(nil)

// --- users ---

type userRepo struct{ s *Store }

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = *user
	return nil
}

func (r *userRepo) Update(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.UpdatedAt = time.Now()
	r.s.users[user.ID] = *user
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, user := range r.s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

// --- agents ---

type agentRepo struct{ s *Store }

func (r *agentRepo) Create(ctx context.Context, agent *domain.Agent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	agent.ID = uuid.NewString()
	agent.CreatedAt = time.Now()
	agent.UpdatedAt = agent.CreatedAt
	r.s.agents[agent.ID] = *agent
	return nil
}

func (r *agentRepo) Update(ctx context.Context, agent *domain.Agent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.agents[agent.ID]; !ok {
		return pgx.ErrNoRows
	}
	agent.UpdatedAt = time.Now()
	r.s.agents[agent.ID] = *agent
	return nil
}

func (r *agentRepo) GetByID(ctx context.Context, id string) (*domain.Agent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	agent, ok := r.s.agents[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &agent, nil
}

func (r *agentRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Agent, error) {
	return r.GetByID(ctx, id)
}

func (r *agentRepo) GetByUserID(ctx context.Context, userID string) (*domain.Agent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, agent := range r.s.agents {
		if agent.UserID == userID {
			a := agent
			return &a, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *agentRepo) List(ctx context.Context, filter repository.AgentFilter) ([]domain.Agent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var result []domain.Agent
	for _, agent := range r.s.agents {
		if filter.Active != nil && agent.IsActive != *filter.Active {
			continue
		}
		result = append(result, agent)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return paginate(result, filter.Limit, filter.Offset), nil
}

// --- priorities ---

type priorityRepo struct{ s *Store }

func (r *priorityRepo) Create(ctx context.Context, priority *domain.Priority) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	priority.ID = uuid.NewString()
	priority.CreatedAt = time.Now()
	priority.UpdatedAt = priority.CreatedAt
	r.s.priorities[priority.ID] = *priority
	return nil
}

func (r *priorityRepo) Update(ctx context.Context, priority *domain.Priority) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.priorities[priority.ID]; !ok {
		return pgx.ErrNoRows
	}
	priority.UpdatedAt = time.Now()
	r.s.priorities[priority.ID] = *priority
	return nil
}

func (r *priorityRepo) GetByID(ctx context.Context, id string) (*domain.Priority, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	priority, ok := r.s.priorities[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &priority, nil
}

func (r *priorityRepo) GetByName(ctx context.Context, name string) (*domain.Priority, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, priority := range r.s.priorities {
		if priority.Name == name {
			p := priority
			return &p, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *priorityRepo) List(ctx context.Context) ([]domain.Priority, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var result []domain.Priority
	for _, priority := range r.s.priorities {
		result = append(result, priority)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Weight < result[j].Weight })
	return result, nil
}

// --- categories ---

type categoryRepo struct{ s *Store }

func (r *categoryRepo) Create(ctx context.Context, category *domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	category.ID = uuid.NewString()
	category.CreatedAt = time.Now()
	category.UpdatedAt = category.CreatedAt
	r.s.categories[category.ID] = *category
	return nil
}

func (r *categoryRepo) Update(ctx context.Context, category *domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[category.ID]; !ok {
		return pgx.ErrNoRows
	}
	category.UpdatedAt = time.Now()
	r.s.categories[category.ID] = *category
	return nil
}

func (r *categoryRepo) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	category, ok := r.s.categories[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &category, nil
}

func (r *categoryRepo) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, category := range r.s.categories {
		if category.Name == name {
			c := category
			return &c, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *categoryRepo) List(ctx context.Context, filter repository.CategoryFilter) ([]domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var result []domain.Category
	for _, category := range r.s.categories {
		if filter.Active != nil && category.IsActive != *filter.Active {
			continue
		}
		result = append(result, category)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// --- tickets ---

type ticketRepo struct{ s *Store }

func (r *ticketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ticket.ID = uuid.NewString()
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	r.s.tickets[ticket.ID] = flatten(ticket)
	r.hydrate(ticket)
	return nil
}

func (r *ticketRepo) Update(ctx context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	r.s.tickets[ticket.ID] = flatten(ticket)
	return nil
}

func (r *ticketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ticket, ok := r.s.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	t := ticket
	r.hydrate(&t)
	return &t, nil
}

func (r *ticketRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Ticket, error) {
	return r.GetByID(ctx, id)
}

func (r *ticketRepo) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var result []domain.Ticket
	for _, ticket := range r.s.tickets {
		if filter.OwnerID != nil && ticket.OwnerID != *filter.OwnerID {
			continue
		}
		if filter.AssignedAgentID != nil && (ticket.AssignedAgentID == nil || *ticket.AssignedAgentID != *filter.AssignedAgentID) {
			continue
		}
		if len(filter.Statuses) > 0 && !statusIn(ticket.Status, filter.Statuses) {
			continue
		}
		if filter.HasAgent != nil && (ticket.AssignedAgentID != nil) != *filter.HasAgent {
			continue
		}
		t := ticket
		r.hydrate(&t)
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return paginate(result, filter.Limit, filter.Offset), nil
}

// hydrate fills the referenced priority/category the way the SQL joins do.
// Callers must hold s.mu.
func (r *ticketRepo) hydrate(ticket *domain.Ticket) {
	if priority, ok := r.s.priorities[ticket.PriorityID]; ok {
		p := priority
		ticket.Priority = &p
	}
	if category, ok := r.s.categories[ticket.CategoryID]; ok {
		c := category
		ticket.Category = &c
	}
}

// flatten drops the hydrated references before storing, mirroring the
// normalized table layout.
func flatten(ticket *domain.Ticket) domain.Ticket {
	stored := *ticket
	stored.Priority = nil
	stored.Category = nil
	return stored
}

func statusIn(status domain.TicketStatus, statuses []domain.TicketStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
