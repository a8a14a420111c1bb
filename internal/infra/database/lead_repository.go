package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

const (
	pgCheckViolation   = "23514"
	pgNotNullViolation = "23502"
	pgNumericOverflow  = "22003"
	pgStringTooLong    = "22001"
)

const leadColumns = `id, name, email, status, estimated_sale_amount, estimated_commission, created_at, updated_at`

// querier is the part of *sql.DB and *sql.Conn the repository needs.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

type LeadRepository struct {
	db querier
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// PostgresLeadStore hands out one pooled connection per session.
type PostgresLeadStore struct {
	DB *sql.DB
}

func NewPostgresLeadStore(db *sql.DB) *PostgresLeadStore {
	return &PostgresLeadStore{DB: db}
}

func (s *PostgresLeadStore) Open(ctx context.Context) (entity.LeadSession, error) {
	conn, err := s.DB.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &leadSession{LeadRepository: &LeadRepository{db: conn}, conn: conn}, nil
}

type leadSession struct {
	*LeadRepository
	conn *sql.Conn
}

func (s *leadSession) Close() error {
	return s.conn.Close()
}

func (r *LeadRepository) FindByID(ctx context.Context, id int64) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`

	lead, err := scanLead(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find lead %d: %w", id, err)
	}
	return lead, nil
}

func (r *LeadRepository) FindAll(ctx context.Context) ([]entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads ORDER BY id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	leads := []entity.Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, *lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	return leads, nil
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	lead.Recalculate()

	query := `
		INSERT INTO leads (name, email, status, estimated_sale_amount, estimated_commission)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		lead.Name,
		lead.Email,
		string(lead.Status),
		lead.EstimatedSaleAmount,
		lead.EstimatedCommission,
	).Scan(&lead.ID, &lead.CreatedAt, &lead.UpdatedAt)

	if err != nil {
		return mapWriteError("create lead", err)
	}
	return nil
}

func (r *LeadRepository) Update(ctx context.Context, lead *entity.Lead) error {
	lead.Recalculate()

	query := `
		UPDATE leads
		SET name = $1, email = $2, status = $3,
		    estimated_sale_amount = $4, estimated_commission = $5,
		    updated_at = NOW()
		WHERE id = $6
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		lead.Name,
		lead.Email,
		string(lead.Status),
		lead.EstimatedSaleAmount,
		lead.EstimatedCommission,
		lead.ID,
	).Scan(&lead.CreatedAt, &lead.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return entity.ErrLeadNotFound
	}
	if err != nil {
		return mapWriteError("update lead", err)
	}
	return nil
}

func (r *LeadRepository) Delete(ctx context.Context, id int64) (*entity.Lead, error) {
	query := `DELETE FROM leads WHERE id = $1 RETURNING ` + leadColumns

	lead, err := scanLead(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete lead %d: %w", id, err)
	}
	return lead, nil
}

// DeleteAll empties the table and restarts the id sequence.
func (r *LeadRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `TRUNCATE TABLE leads RESTART IDENTITY`); err != nil {
		return fmt.Errorf("clear leads: %w", err)
	}
	return nil
}

func scanLead(row scanner) (*entity.Lead, error) {
	var lead entity.Lead
	var status string

	err := row.Scan(
		&lead.ID,
		&lead.Name,
		&lead.Email,
		&status,
		&lead.EstimatedSaleAmount,
		&lead.EstimatedCommission,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	lead.Status = entity.LeadStatus(status)
	return &lead, nil
}

// mapWriteError turns constraint violations from either driver into
// entity.ErrLeadConstraintFail.
func mapWriteError(op string, err error) error {
	code := ""

	var pgErr *pgconn.PgError
	var pqErr *pq.Error
	switch {
	case errors.As(err, &pgErr):
		code = pgErr.Code
	case errors.As(err, &pqErr):
		code = string(pqErr.Code)
	}

	switch code {
	case pgCheckViolation, pgNotNullViolation, pgNumericOverflow, pgStringTooLong:
		return fmt.Errorf("%s: %w: %v", op, entity.ErrLeadConstraintFail, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
