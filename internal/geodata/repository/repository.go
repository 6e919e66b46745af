// Package repository persists aggregated property records in PostgreSQL.
// Records are stored as JSONB per dossier; the address columns exist for
// the duplicate check.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pandoorac_backend/internal/geodata/ports"
	"pandoorac_backend/internal/geodata/transport"
	"pandoorac_backend/platform/apperr"
)

// Repository implements ports.RecordRepository on a pgx pool.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new geodata record repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Save upserts the record for its dossier.
func (r *Repository) Save(ctx context.Context, record *transport.AggregatedPropertyRecord) error {
	if record.DossierID == "" {
		return apperr.Validation("record has no dossier id").WithOp("geodata.repository.Save")
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	addressText := strings.TrimSpace(record.DisplayName)
	if addressText == "" {
		addressText = strings.TrimSpace(record.Postcode + " " + record.HouseNumber + record.HouseLetter)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO geodata_records (dossier_id, postcode, house_number, address_text, record, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (dossier_id) DO UPDATE SET
			postcode = EXCLUDED.postcode,
			house_number = EXCLUDED.house_number,
			address_text = EXCLUDED.address_text,
			record = EXCLUDED.record,
			updated_at = now()`,
		record.DossierID, record.Postcode, record.HouseNumber, addressText, raw)
	if err != nil {
		return fmt.Errorf("upsert geodata record: %w", err)
	}
	return nil
}

// FindByDossier returns the stored record for a dossier.
func (r *Repository) FindByDossier(ctx context.Context, dossierID string) (*transport.AggregatedPropertyRecord, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx,
		`SELECT record FROM geodata_records WHERE dossier_id = $1`, dossierID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("no geodata record for dossier").WithOp("geodata.repository.FindByDossier")
	}
	if err != nil {
		return nil, fmt.Errorf("query geodata record: %w", err)
	}

	var record transport.AggregatedPropertyRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("unmarshal geodata record: %w", err)
	}
	return &record, nil
}

// ListDossierAddresses returns the address line of every stored dossier.
func (r *Repository) ListDossierAddresses(ctx context.Context) ([]ports.DossierAddress, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT dossier_id, postcode, address_text FROM geodata_records ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query dossier addresses: %w", err)
	}
	defer rows.Close()

	var out []ports.DossierAddress
	for rows.Next() {
		var d ports.DossierAddress
		if err := rows.Scan(&d.DossierID, &d.Postcode, &d.AddressText); err != nil {
			return nil, fmt.Errorf("scan dossier address: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
