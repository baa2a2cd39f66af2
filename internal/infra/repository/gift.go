package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bahooo22/HannaWhishlist/internal/domain/gift"
	"github.com/bahooo22/HannaWhishlist/internal/infra"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type GiftRepository struct {
	pool *pgxpool.Pool
}

func NewGiftRepository(pool *pgxpool.Pool) *GiftRepository {
	return &GiftRepository{pool: pool}
}

type txKey struct{}

// WithTx runs fn inside a transaction carried on the context. Nested
// calls join the outer transaction.
func (r *GiftRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return infra.WrapRepoErr("failed to begin transaction", err)
	}

	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return infra.WrapRepoErr("failed to commit transaction", err)
	}
	return nil
}

func txFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey{}).(pgx.Tx)
	return tx
}

func (r *GiftRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *GiftRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

const giftColumns = `id, title, link, status, reserved_by_id, reserved_by_nickname,
	reserved_by_first_name, reserved_by_last_name, reserved_at, created_at, updated_at`

// FindByIDForUpdate locks the gift row for the duration of the enclosing
// transaction. Callers must be inside WithTx; concurrent reserve and
// unreserve on the same gift serialize on this lock.
func (r *GiftRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*gift.Gift, error) {
	const query = `SELECT ` + giftColumns + ` FROM gifts WHERE id = $1 FOR UPDATE`
	return r.scanGift(r.queryRow(ctx, query, id))
}

func (r *GiftRepository) FindByID(ctx context.Context, id uuid.UUID) (*gift.Gift, error) {
	const query = `SELECT ` + giftColumns + ` FROM gifts WHERE id = $1`
	return r.scanGift(r.queryRow(ctx, query, id))
}

func (r *GiftRepository) Create(ctx context.Context, g *gift.Gift) error {
	const stmt = `
INSERT INTO gifts (id, title, link, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, NOW(), NOW())`

	_, err := r.exec(ctx, stmt, g.ID(), g.Title(), g.Link(), g.Status())
	if err != nil {
		if isUniqueViolation(err) {
			return infra.WrapRepoErr("gift already exists", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to create gift", err)
	}
	return nil
}

// Save persists the gift's current state, writing status and every
// reservation field as one atomic unit.
func (r *GiftRepository) Save(ctx context.Context, g *gift.Gift) error {
	const stmt = `
UPDATE gifts
SET title = $2,
    link = $3,
    status = $4,
    reserved_by_id = $5,
    reserved_by_nickname = $6,
    reserved_by_first_name = $7,
    reserved_by_last_name = $8,
    reserved_at = $9,
    updated_at = NOW()
WHERE id = $1`

	var (
		reservedByID        *string
		reservedByNickname  *string
		reservedByFirstName *string
		reservedByLastName  *string
	)
	if holder := g.ReservedBy(); holder != nil {
		reservedByID = &holder.ID
		reservedByNickname = &holder.Nickname
		reservedByFirstName = &holder.FirstName
		reservedByLastName = &holder.LastName
	}

	tag, err := r.exec(ctx, stmt,
		g.ID(), g.Title(), g.Link(), g.Status(),
		reservedByID, reservedByNickname, reservedByFirstName, reservedByLastName,
		g.ReservedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to save gift", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("gift not found", pgx.ErrNoRows, infra.KindNotFound)
	}
	return nil
}

func (r *GiftRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.exec(ctx, `DELETE FROM gifts WHERE id = $1`, id)
	if err != nil {
		return infra.WrapRepoErr("failed to delete gift", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("gift not found", pgx.ErrNoRows, infra.KindNotFound)
	}
	return nil
}

func (r *GiftRepository) scanGift(row pgx.Row) (*gift.Gift, error) {
	var (
		id                  uuid.UUID
		title, link, status string
		reservedByID        *string
		reservedByNickname  *string
		reservedByFirstName *string
		reservedByLastName  *string
		reservedAt          *time.Time
		createdAt           time.Time
		updatedAt           time.Time
	)

	err := row.Scan(&id, &title, &link, &status,
		&reservedByID, &reservedByNickname, &reservedByFirstName, &reservedByLastName,
		&reservedAt, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("gift not found", err, infra.KindNotFound)
		}
		if isInvalidUUID(err) {
			return nil, infra.WrapRepoErr("invalid gift id", err, infra.KindInvalidID)
		}
		return nil, infra.WrapRepoErr("failed to scan gift", err)
	}

	parsedStatus, ok := gift.ParseStatus(status)
	if !ok {
		return nil, infra.WrapRepoErr("unknown gift status "+status, nil)
	}

	var holder *gift.Claimant
	if reservedByID != nil {
		holder = &gift.Claimant{
			ID:        *reservedByID,
			Nickname:  deref(reservedByNickname),
			FirstName: deref(reservedByFirstName),
			LastName:  deref(reservedByLastName),
		}
	}

	return gift.Reconstruct(id, title, link, parsedStatus, holder, reservedAt, createdAt, updatedAt), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isInvalidUUID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}
