package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/passvault/passvault-server/internal/model"
)

// uniqueViolation is the Postgres error code for unique constraint breaches.
const uniqueViolation = "23505"

var _ model.AccountStore = (*AccountRepository)(nil)

type AccountRepository struct {
	db *Connection
}

func NewAccountRepository(db *Connection) *AccountRepository {
	return &AccountRepository{
		db: db,
	}
}

const accountColumns = `id, email, master_password_hash, master_password_salt,
	subscription_status, subscription_id, subscription_start_date, record_count,
	created_at, updated_at`

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`

	account, err := r.scanAccount(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Account{}, model.ErrNotFound
		}
		return model.Account{}, fmt.Errorf("failed to get account by email: %w", err)
	}

	return account, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	account, err := r.scanAccount(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Account{}, model.ErrNotFound
		}
		return model.Account{}, fmt.Errorf("failed to get account by id: %w", err)
	}

	return account, nil
}

func (r *AccountRepository) Create(ctx context.Context, account model.Account) (model.Account, error) {
	query := `INSERT INTO accounts (id, email, master_password_hash, master_password_salt,
				subscription_status, subscription_id, record_count)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING ` + accountColumns

	saved, err := r.scanAccount(r.db.QueryRow(ctx, query,
		account.ID, account.Email, account.MasterPasswordHash, account.MasterPasswordSalt,
		string(account.SubscriptionStatus), account.SubscriptionID, account.RecordCount,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.Account{}, model.ErrDuplicateAccount
		}
		return model.Account{}, fmt.Errorf("failed to create account: %w", err)
	}

	return saved, nil
}

// AddRecordCount applies the delta with a floor of zero in a single statement
// so concurrent creates and deletes never lose updates.
func (r *AccountRepository) AddRecordCount(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	query := `UPDATE accounts
			  SET record_count = GREATEST(record_count + $2, 0), updated_at = NOW()
			  WHERE id = $1
			  RETURNING record_count`

	var count int
	err := r.db.QueryRow(ctx, query, id, delta).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, model.ErrNotFound
		}
		return 0, fmt.Errorf("failed to adjust record count: %w", err)
	}

	return count, nil
}

func (r *AccountRepository) SetRecordCount(ctx context.Context, id uuid.UUID, count int) error {
	query := `UPDATE accounts SET record_count = GREATEST($2, 0), updated_at = NOW() WHERE id = $1`

	cmd, err := r.db.Exec(ctx, query, id, count)
	if err != nil {
		return fmt.Errorf("failed to set record count: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}

func (r *AccountRepository) UpdateSubscription(ctx context.Context, id uuid.UUID, update model.SubscriptionUpdate) (model.Account, error) {
	query := `UPDATE accounts
			  SET subscription_status = $2,
			      subscription_id = COALESCE(NULLIF($3, ''), subscription_id),
			      subscription_start_date = COALESCE($4, subscription_start_date),
			      updated_at = NOW()
			  WHERE id = $1
			  RETURNING ` + accountColumns

	account, err := r.scanAccount(r.db.QueryRow(ctx, query,
		id, string(update.Status), update.SubscriptionID, update.StartDate,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Account{}, model.ErrNotFound
		}
		return model.Account{}, fmt.Errorf("failed to update subscription: %w", err)
	}

	return account, nil
}

func (r *AccountRepository) scanAccount(row pgx.Row) (model.Account, error) {
	var account model.Account
	var status string
	err := row.Scan(
		&account.ID, &account.Email, &account.MasterPasswordHash, &account.MasterPasswordSalt,
		&status, &account.SubscriptionID, &account.SubscriptionStartDate, &account.RecordCount,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		return model.Account{}, err
	}
	account.SubscriptionStatus = model.SubscriptionStatus(status)
	return account, nil
}
