package users

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tasklist/internal/common"
	"github.com/dmitrijs2005/tasklist/internal/dbx"
	"github.com/dmitrijs2005/tasklist/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const identityColumns = `id, email, display_name, password_hash, salt, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanIdentity(row scanner) (*models.Identity, error) {
	i := &models.Identity{}
	err := row.Scan(&i.ID, &i.Email, &i.DisplayName, &i.PasswordHash, &i.Salt, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return i, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, identity *models.Identity) (*models.Identity, error) {
	query :=
		`INSERT INTO users (id, email, display_name, password_hash, salt, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING ` + identityColumns

	row := r.db.QueryRowContext(ctx, query,
		identity.ID, identity.Email, identity.DisplayName, identity.PasswordHash,
		identity.Salt, identity.CreatedAt, identity.UpdatedAt)

	saved, err := scanIdentity(row)
	if err != nil {
		return nil, classify(err)
	}
	return saved, nil
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM users WHERE email = $1`

	i, err := scanIdentity(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, classify(err)
	}
	return i, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM users WHERE id = $1`

	i, err := scanIdentity(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, classify(err)
	}
	return i, nil
}

// Update applies the non-nil fields of upd in one statement and always
// refreshes updated_at.
func (r *PostgresRepository) Update(ctx context.Context, id string, upd models.IdentityUpdate) (*models.Identity, error) {
	query :=
		`UPDATE users SET
		   display_name = COALESCE($2, display_name),
		   password_hash = COALESCE($3, password_hash),
		   salt = COALESCE($4, salt),
		   updated_at = $5
		 WHERE id = $1
		 RETURNING ` + identityColumns

	var displayName, hash, salt any
	if upd.DisplayName != nil {
		displayName = *upd.DisplayName
	}
	if upd.PasswordHash != nil {
		hash = upd.PasswordHash
	}
	if upd.Salt != nil {
		salt = upd.Salt
	}

	i, err := scanIdentity(r.db.QueryRowContext(ctx, query, id, displayName, hash, salt, upd.UpdatedAt))
	if err != nil {
		return nil, classify(err)
	}
	return i, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return classify(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return classify(err)
	}
	if n == 0 {
		return common.ErrIdentityNotFound
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM users ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var out []*models.Identity
	for rows.Next() {
		i, err := scanIdentity(rows)
		if err != nil {
			return nil, classify(err)
		}
		out = append(out, i)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// classify maps driver errors onto the store's sentinel errors.
func classify(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrIdentityNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", common.ErrDuplicateIdentity, pgErr.ConstraintName)
	}

	if isTransient(err) {
		return fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}

	return fmt.Errorf("db error: %w", err)
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	return pgconn.Timeout(err)
}
