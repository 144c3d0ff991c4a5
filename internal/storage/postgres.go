package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"provider-matching-workers/internal/common/logger"
	"provider-matching-workers/internal/models"
)

const (
	queryListProviders = `SELECT data FROM providers ORDER BY created_at, id`

	queryListProvidersByCountry = `SELECT data FROM providers WHERE lower(country) = lower($1) ORDER BY created_at, id`

	queryGetProvider = `SELECT data FROM providers WHERE id = $1`

	queryUpdateProvider = `UPDATE providers SET data = $2, country = $3, updated_at = $4 WHERE id = $1`

	queryUpsertProvider = `
		INSERT INTO providers (id, country, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, country = EXCLUDED.country, updated_at = EXCLUDED.updated_at`

	queryDeleteProvider = `DELETE FROM providers WHERE id = $1`

	queryListLeads = `SELECT id, assigned_providers, updated_at FROM leads ORDER BY created_at, id`

	queryUpdateLead = `UPDATE leads SET assigned_providers = $2, updated_at = $3 WHERE id = $1`
)

// PostgresStore keeps each provider as a JSONB document keyed by id.
type PostgresStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresStore(db *sql.DB, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "postgres-store"}),
	}
}

func (s *PostgresStore) ListProviders(ctx context.Context) ([]models.ProviderProfile, error) {
	rows, err := s.db.QueryContext(ctx, queryListProviders)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	return s.scanProviders(rows)
}

func (s *PostgresStore) ListProvidersByCountry(ctx context.Context, country string) ([]models.ProviderProfile, error) {
	if country == "" {
		return s.ListProviders(ctx)
	}
	rows, err := s.db.QueryContext(ctx, queryListProvidersByCountry, country)
	if err != nil {
		return nil, fmt.Errorf("list providers for %s: %w", country, err)
	}
	return s.scanProviders(rows)
}

func (s *PostgresStore) scanProviders(rows *sql.Rows) ([]models.ProviderProfile, error) {
	defer rows.Close()

	providers := []models.ProviderProfile{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan provider: %w", err)
		}
		var p models.ProviderProfile
		if err := json.Unmarshal(data, &p); err != nil {
			// one corrupt document must not hide the rest of the table
			s.logger.Warn("skipping undecodable provider", map[string]interface{}{
				"error": err,
			})
			continue
		}
		providers = append(providers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate providers: %w", err)
	}
	return providers, nil
}

func (s *PostgresStore) GetProvider(ctx context.Context, id string) (*models.ProviderProfile, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, queryGetProvider, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("provider %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get provider %s: %w", id, err)
	}

	var p models.ProviderProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode provider %s: %w", id, err)
	}
	return &p, nil
}

func (s *PostgresStore) UpdateProvider(ctx context.Context, p *models.ProviderProfile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode provider %s: %w", p.ID, err)
	}

	res, err := s.db.ExecContext(ctx, queryUpdateProvider, p.ID, data, p.Location.Country, updatedAt(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("update provider %s: %w", p.ID, err)
	}
	return expectOneRow(res, "provider", p.ID)
}

// UpsertProvider inserts a provider or replaces an existing one.
func (s *PostgresStore) UpsertProvider(ctx context.Context, p *models.ProviderProfile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode provider %s: %w", p.ID, err)
	}

	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	if _, err := s.db.ExecContext(ctx, queryUpsertProvider, p.ID, p.Location.Country, data, createdAt, updatedAt(p.UpdatedAt)); err != nil {
		return fmt.Errorf("upsert provider %s: %w", p.ID, err)
	}
	return nil
}

func (s *PostgresStore) DeleteProvider(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, queryDeleteProvider, id)
	if err != nil {
		return fmt.Errorf("delete provider %s: %w", id, err)
	}
	return expectOneRow(res, "provider", id)
}

func (s *PostgresStore) ListLeads(ctx context.Context) ([]models.Lead, error) {
	rows, err := s.db.QueryContext(ctx, queryListLeads)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	leads := []models.Lead{}
	for rows.Next() {
		var (
			lead     models.Lead
			assigned []byte
		)
		if err := rows.Scan(&lead.ID, &assigned, &lead.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		if err := json.Unmarshal(assigned, &lead.AssignedProviders); err != nil {
			lead.AssignedProviders = []string{}
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leads: %w", err)
	}
	return leads, nil
}

func (s *PostgresStore) UpdateLead(ctx context.Context, lead *models.Lead) error {
	assigned := lead.AssignedProviders
	if assigned == nil {
		assigned = []string{}
	}
	data, err := json.Marshal(assigned)
	if err != nil {
		return fmt.Errorf("encode lead %s: %w", lead.ID, err)
	}

	res, err := s.db.ExecContext(ctx, queryUpdateLead, lead.ID, data, updatedAt(lead.UpdatedAt))
	if err != nil {
		return fmt.Errorf("update lead %s: %w", lead.ID, err)
	}
	return expectOneRow(res, "lead", lead.ID)
}

func expectOneRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s: rows affected: %w", kind, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}

func updatedAt(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}
