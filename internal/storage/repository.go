package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/smarttel/smarttel-ivr-go/internal/errors"
	"github.com/smarttel/smarttel-ivr-go/internal/logger"
)

// slowQueryThreshold is the duration above which queries are logged as slow
const slowQueryThreshold = 100 * time.Millisecond

// Repository provides customer data access operations
type Repository struct {
	db     *DB
	logger *logger.Logger
}

// NewRepository creates a new repository instance
func NewRepository(db *DB, log *logger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: log.WithModule("storage"),
	}
}

// logSlowQuery logs queries that exceed the threshold
func (r *Repository) logSlowQuery(ctx context.Context, query string, start time.Time) {
	elapsed := time.Since(start)
	if elapsed > slowQueryThreshold {
		r.logger.WithFields(map[string]any{
			"query":       query,
			"duration_ms": elapsed.Milliseconds(),
		}).WarnContext(ctx, "slow query detected")
	}
}

// GetCustomerByID retrieves a customer by ID.
// Returns (nil, nil) when no customer with that ID exists.
func (r *Repository) GetCustomerByID(ctx context.Context, id string) (*Customer, error) {
	start := time.Now()
	defer r.logSlowQuery(ctx, "get_customer_by_id", start)

	query := `SELECT id, name, plan, balance, phone, data_left, created_at
		FROM customers WHERE id = ?`

	var c Customer
	err := r.db.conn.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Plan, &c.Balance, &c.Phone, &c.DataLeft, &c.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer %s: %w", id, err)
	}

	return &c, nil
}

// CreateCustomer inserts a new customer with default plan values.
// Returns ErrAlreadyExists when the ID is already taken; the existing
// record is left untouched.
func (r *Repository) CreateCustomer(ctx context.Context, id, name string) (*Customer, error) {
	start := time.Now()
	defer r.logSlowQuery(ctx, "create_customer", start)

	query := `INSERT INTO customers (id, name, plan, balance, phone, data_left, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`

	result, err := r.db.conn.ExecContext(ctx, query,
		id, name, DefaultPlan, DefaultBalance, DefaultPhone, DefaultDataLeft,
		time.Now().Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create customer %s: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check insert result: %w", err)
	}
	if rows == 0 {
		return nil, apperrors.ErrAlreadyExists
	}

	customer, err := r.GetCustomerByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, fmt.Errorf("customer %s missing after insert", id)
	}

	r.logger.WithField("customer_id", id).InfoContext(ctx, "customer registered")

	return customer, nil
}

// AddBalance atomically adds amount to a customer's balance and returns
// the updated record. Returns ErrNotFound when the customer does not exist.
func (r *Repository) AddBalance(ctx context.Context, id string, amount float64) (*Customer, error) {
	start := time.Now()
	defer r.logSlowQuery(ctx, "add_balance", start)

	query := `UPDATE customers SET balance = balance + ? WHERE id = ?`

	result, err := r.db.conn.ExecContext(ctx, query, amount, id)
	if err != nil {
		return nil, fmt.Errorf("failed to add balance for customer %s: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return nil, apperrors.ErrNotFound
	}

	customer, err := r.GetCustomerByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperrors.ErrNotFound
	}

	return customer, nil
}

// UpdatePlan changes a customer's plan and data allowance.
// Returns ErrNotFound when the customer does not exist.
func (r *Repository) UpdatePlan(ctx context.Context, id, plan, dataLeft string) (*Customer, error) {
	start := time.Now()
	defer r.logSlowQuery(ctx, "update_plan", start)

	query := `UPDATE customers SET plan = ?, data_left = ? WHERE id = ?`

	result, err := r.db.conn.ExecContext(ctx, query, plan, dataLeft, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update plan for customer %s: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return nil, apperrors.ErrNotFound
	}

	customer, err := r.GetCustomerByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperrors.ErrNotFound
	}

	return customer, nil
}

// CountCustomers returns the total number of registered customers
func (r *Repository) CountCustomers(ctx context.Context) (int64, error) {
	start := time.Now()
	defer r.logSlowQuery(ctx, "count_customers", start)

	var count int64
	err := r.db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count customers: %w", err)
	}

	return count, nil
}

// DeleteCustomer removes a customer record.
// Returns ErrNotFound when the customer does not exist.
func (r *Repository) DeleteCustomer(ctx context.Context, id string) error {
	start := time.Now()
	defer r.logSlowQuery(ctx, "delete_customer", start)

	result, err := r.db.conn.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete customer %s: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}
