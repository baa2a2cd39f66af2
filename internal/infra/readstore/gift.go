package readstore

import (
	"context"
	"errors"
	"time"

	"github.com/bahooo22/HannaWhishlist/internal/infra"
	"github.com/bahooo22/HannaWhishlist/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type GiftReadStore struct {
	pool *pgxpool.Pool
}

func NewGiftReadStore(pool *pgxpool.Pool) *GiftReadStore {
	return &GiftReadStore{pool: pool}
}

const giftViewColumns = `id, title, link, status, reserved_by_id, reserved_by_nickname,
	reserved_by_first_name, reserved_by_last_name, reserved_at, created_at, updated_at`

// Search ORs case-insensitively across title, link, status name and all
// reservation-metadata fields. Ordering is title ascending
// (case-insensitive), id as the tiebreak for identical titles.
const giftSearchFilter = `
	($1 = '' OR
	 title ILIKE '%' || $1 || '%' OR
	 link ILIKE '%' || $1 || '%' OR
	 status ILIKE '%' || $1 || '%' OR
	 COALESCE(reserved_by_id, '') ILIKE '%' || $1 || '%' OR
	 COALESCE(reserved_by_nickname, '') ILIKE '%' || $1 || '%' OR
	 COALESCE(reserved_by_first_name, '') ILIKE '%' || $1 || '%' OR
	 COALESCE(reserved_by_last_name, '') ILIKE '%' || $1 || '%')`

const giftOrder = ` ORDER BY lower(title) ASC, id ASC`

func (r *GiftReadStore) List(ctx context.Context, search string) ([]*queries.GiftView, error) {
	query := `SELECT ` + giftViewColumns + ` FROM gifts WHERE` + giftSearchFilter + giftOrder

	rows, err := r.pool.Query(ctx, query, search)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list gifts", err)
	}
	defer rows.Close()

	return scanGiftViews(rows)
}

func (r *GiftReadStore) Page(ctx context.Context, offset, limit int, search string) ([]*queries.GiftView, int, error) {
	countQuery := `SELECT COUNT(*) FROM gifts WHERE` + giftSearchFilter

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, search).Scan(&total); err != nil {
		return nil, 0, infra.WrapRepoErr("failed to count gifts", err)
	}

	query := `SELECT ` + giftViewColumns + ` FROM gifts WHERE` + giftSearchFilter +
		giftOrder + ` LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, search, limit, offset)
	if err != nil {
		return nil, 0, infra.WrapRepoErr("failed to page gifts", err)
	}
	defer rows.Close()

	views, err := scanGiftViews(rows)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

func (r *GiftReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.GiftView, error) {
	query := `SELECT ` + giftViewColumns + ` FROM gifts WHERE id = $1`

	view, err := scanGiftView(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("gift not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find gift by ID", err)
	}
	return view, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGiftView(row rowScanner) (*queries.GiftView, error) {
	var (
		v          queries.GiftView
		reservedAt *time.Time
	)
	err := row.Scan(&v.ID, &v.Title, &v.Link, &v.Status,
		&v.ReservedByID, &v.ReservedByNickname, &v.ReservedByFirstName, &v.ReservedByLastName,
		&reservedAt, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	v.ReservedAt = reservedAt
	return &v, nil
}

func scanGiftViews(rows pgx.Rows) ([]*queries.GiftView, error) {
	var result []*queries.GiftView
	for rows.Next() {
		view, err := scanGiftView(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan gift row", err)
		}
		result = append(result, view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read gift rows", err)
	}
	return result, nil
}
