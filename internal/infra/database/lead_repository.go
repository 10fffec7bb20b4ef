package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/xavierca1/artisan-crm/internal/entity"
)

const leadColumns = "id, name, email, company, phone, stage, engaged, last_contacted, created_at, updated_at"

const pgUniqueViolation = "23505"

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (id, name, email, company, phone, stage, engaged, last_contacted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := r.DB.QueryRowContext(ctx, query,
		lead.ID,
		lead.Name,
		lead.Email,
		nullString(lead.Company),
		nullString(lead.Phone),
		lead.Stage,
		lead.Engaged,
		lead.LastContacted,
	).Scan(&lead.CreatedAt, &lead.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return entity.ErrEmailAlreadyExists
		}
		log.Printf("lead repository: commit failed in Create: %v", err)
		return fmt.Errorf("%w: %v", entity.ErrStorage, err)
	}

	return nil
}

func (r *LeadRepository) List(ctx context.Context, params entity.ListParams) (*entity.LeadPage, error) {
	q, err := composeLeadQuery(params)
	if err != nil {
		return nil, err
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, q.countSQL(), q.args...).Scan(&total); err != nil {
		log.Printf("lead repository: count failed in List: %v", err)
		return nil, fmt.Errorf("%w: %v", entity.ErrStorage, err)
	}

	stmt, args := q.pageSQL(params.Skip, params.Limit)
	rows, err := r.DB.QueryContext(ctx, stmt, args...)
	if err != nil {
		log.Printf("lead repository: page query failed in List: %v", err)
		return nil, fmt.Errorf("%w: %v", entity.ErrStorage, err)
	}
	defer rows.Close()

	items := make([]*entity.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", entity.ErrStorage, err)
		}
		items = append(items, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrStorage, err)
	}

	return &entity.LeadPage{Items: items, Total: total}, nil
}

func (r *LeadRepository) GetByID(ctx context.Context, id string) (*entity.Lead, error) {
	query := "SELECT " + leadColumns + " FROM leads WHERE id = $1"

	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		log.Printf("lead repository: query failed in GetByID: %v", err)
		return nil, fmt.Errorf("%w: %v", entity.ErrStorage, err)
	}

	return lead, nil
}

// Update applies only the fields present in update. updated_at is refreshed
// on every call, even when the payload carried nothing.
func (r *LeadRepository) Update(ctx context.Context, id string, update entity.LeadUpdate) (*entity.Lead, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Printf("lead repository: begin failed in Update: %v", err)
		return nil, fmt.Errorf("%w: %v", entity.ErrStorage, err)
	}
	defer tx.Rollback()

	var set []string
	var args []any
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if update.Name != nil {
		add("name", *update.Name)
	}
	if update.Email != nil {
		add("email", *update.Email)
	}
	if update.Company != nil {
		add("company", nullString(*update.Company))
	}
	if update.Phone != nil {
		add("phone", nullString(*update.Phone))
	}
	if update.Stage != nil {
		add("stage", *update.Stage)
	}
	if update.Engaged != nil {
		add("engaged", *update.Engaged)
	}
	if update.LastContacted != nil {
		add("last_contacted", *update.LastContacted)
	}
	set = append(set, "updated_at = NOW()")

	args = append(args, id)
	query := fmt.Sprintf(
		"UPDATE leads SET %s WHERE id = $%d RETURNING %s",
		strings.Join(set, ", "), len(args), leadColumns,
	)

	lead, err := scanLead(tx.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, entity.ErrEmailAlreadyExists
		}
		log.Printf("lead repository: commit failed in Update: %v", err)
		return nil, fmt.Errorf("%w: %v", entity.ErrStorage, err)
	}

	if err := tx.Commit(); err != nil {
		log.Printf("lead repository: commit failed in Update: %v", err)
		return nil, fmt.Errorf("%w: %v", entity.ErrStorage, err)
	}

	return lead, nil
}

// Delete removes the lead and returns its prior state for confirmation.
func (r *LeadRepository) Delete(ctx context.Context, id string) (*entity.Lead, error) {
	query := "DELETE FROM leads WHERE id = $1 RETURNING " + leadColumns

	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		log.Printf("lead repository: commit failed in Delete: %v", err)
		return nil, fmt.Errorf("%w: %v", entity.ErrStorage, err)
	}

	return lead, nil
}

// ListAll returns the unfiltered dump used by the CSV export.
func (r *LeadRepository) ListAll(ctx context.Context) ([]*entity.Lead, error) {
	query := "SELECT " + leadColumns + " FROM leads ORDER BY created_at DESC"

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		log.Printf("lead repository: query failed in ListAll: %v", err)
		return nil, fmt.Errorf("%w: %v", entity.ErrStorage, err)
	}
	defer rows.Close()

	var leads []*entity.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", entity.ErrStorage, err)
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrStorage, err)
	}

	return leads, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var lead entity.Lead
	var company, phone sql.NullString
	var lastContacted sql.NullTime

	err := row.Scan(
		&lead.ID,
		&lead.Name,
		&lead.Email,
		&company,
		&phone,
		&lead.Stage,
		&lead.Engaged,
		&lastContacted,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	lead.Company = company.String
	lead.Phone = phone.String
	if lastContacted.Valid {
		t := lastContacted.Time
		lead.LastContacted = &t
	}

	return &lead, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
