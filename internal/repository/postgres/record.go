package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/passvault/passvault-server/internal/model"
)

var _ model.RecordStore = (*RecordRepository)(nil)

type RecordRepository struct {
	db *Connection
}

func NewRecordRepository(db *Connection) *RecordRepository {
	return &RecordRepository{
		db: db,
	}
}

const recordColumns = `id, owner_id, title, encrypted_payload, blob_key, category, created_at, updated_at`

func (r *RecordRepository) Create(ctx context.Context, record model.Record) (model.Record, error) {
	query := `INSERT INTO records (id, owner_id, title, encrypted_payload, blob_key, category)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING ` + recordColumns

	saved, err := r.scanRecord(r.db.QueryRow(ctx, query,
		record.ID, record.OwnerID, record.Title, record.EncryptedPayload, record.BlobKey, record.Category,
	))
	if err != nil {
		return model.Record{}, fmt.Errorf("failed to create record: %w", err)
	}

	return saved, nil
}

func (r *RecordRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE id = $1`

	record, err := r.scanRecord(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Record{}, model.ErrNotFound
		}
		return model.Record{}, fmt.Errorf("failed to get record by id: %w", err)
	}

	return record, nil
}

func (r *RecordRepository) GetByOwnerID(ctx context.Context, ownerID uuid.UUID, filter model.RecordFilter) ([]model.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records
			  WHERE owner_id = $1
			    AND ($2 = '' OR category = $2)
			    AND ($3 = '' OR title ILIKE '%' || $3 || '%' ESCAPE '\')
			  ORDER BY updated_at DESC`

	rows, err := r.db.Query(ctx, query, ownerID, filter.Category, escapeLike(filter.TitleContains))
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		record, err := r.scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// Update replaces title, payload and category atomically in one statement.
func (r *RecordRepository) Update(ctx context.Context, record model.Record) (model.Record, error) {
	query := `UPDATE records
			  SET title = $2, encrypted_payload = $3, blob_key = $4, category = $5, updated_at = NOW()
			  WHERE id = $1
			  RETURNING ` + recordColumns

	saved, err := r.scanRecord(r.db.QueryRow(ctx, query,
		record.ID, record.Title, record.EncryptedPayload, record.BlobKey, record.Category,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Record{}, model.ErrNotFound
		}
		return model.Record{}, fmt.Errorf("failed to update record: %w", err)
	}

	return saved, nil
}

func (r *RecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM records WHERE id = $1`

	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}

// CountByOwnerID counts the actual owned records; the reconciliation path
// uses this as the source of truth for the cached counter.
func (r *RecordRepository) CountByOwnerID(ctx context.Context, ownerID uuid.UUID) (int, error) {
	const query = `SELECT COUNT(*) FROM records WHERE owner_id = $1`

	var count int
	if err := r.db.QueryRow(ctx, query, ownerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}

	return count, nil
}

// escapeLike neutralizes LIKE metacharacters so a title search for "%" or "_"
// matches those literal characters instead of everything.
func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}

func (r *RecordRepository) scanRecord(row pgx.Row) (model.Record, error) {
	var record model.Record
	err := row.Scan(
		&record.ID, &record.OwnerID, &record.Title, &record.EncryptedPayload,
		&record.BlobKey, &record.Category, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return model.Record{}, err
	}
	return record, nil
}
