package queries

import (
	"context"
	"time"

	"github.com/bahooo22/HannaWhishlist/internal/infra"
	"github.com/bahooo22/HannaWhishlist/internal/pkg/errs"

	"github.com/google/uuid"
)

// Read model (DTO for read side)
type GiftView struct {
	ID                  uuid.UUID  `json:"id"`
	Title               string     `json:"title"`
	Link                string     `json:"link,omitempty"`
	Status              string     `json:"status"`
	ReservedByID        *string    `json:"reservedById,omitempty"`
	ReservedByNickname  *string    `json:"reservedByNickname,omitempty"`
	ReservedByFirstName *string    `json:"reservedByFirstName,omitempty"`
	ReservedByLastName  *string    `json:"reservedByLastName,omitempty"`
	ReservedAt          *time.Time `json:"reservedAt,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

type GiftPage struct {
	Items      []*GiftView `json:"items"`
	PageIndex  int         `json:"pageIndex"`
	PageSize   int         `json:"pageSize"`
	TotalCount int         `json:"totalCount"`
	TotalPages int         `json:"totalPages"`
}

type GiftReadStore interface {
	List(ctx context.Context, search string) ([]*GiftView, error)
	Page(ctx context.Context, offset, limit int, search string) ([]*GiftView, int, error)
	FindByID(ctx context.Context, id uuid.UUID) (*GiftView, error)
}

type GiftQueries interface {
	List(ctx context.Context, search string) ([]*GiftView, error)
	Page(ctx context.Context, pageIndex, pageSize int, search string) (*GiftPage, error)
	GetByID(ctx context.Context, id uuid.UUID) (*GiftView, error)
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type giftQueriesImpl struct {
	store GiftReadStore
}

func NewGiftQueries(store GiftReadStore) GiftQueries {
	return &giftQueriesImpl{store: store}
}

func (q *giftQueriesImpl) List(ctx context.Context, search string) ([]*GiftView, error) {
	views, err := q.store.List(ctx, search)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return views, nil
}

// Page is 1-based. An index past the last page (or below 1) falls back to
// the first page with the same size; callers never see an empty
// out-of-range page as an error.
func (q *giftQueriesImpl) Page(ctx context.Context, pageIndex, pageSize int, search string) (*GiftPage, error) {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if pageIndex < 1 {
		pageIndex = 1
	}

	items, total, err := q.store.Page(ctx, (pageIndex-1)*pageSize, pageSize, search)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	totalPages := (total + pageSize - 1) / pageSize

	if pageIndex > totalPages && totalPages > 0 {
		pageIndex = 1
		items, total, err = q.store.Page(ctx, 0, pageSize, search)
		if err != nil {
			return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		totalPages = (total + pageSize - 1) / pageSize
	}

	return &GiftPage{
		Items:      items,
		PageIndex:  pageIndex,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: totalPages,
	}, nil
}

func (q *giftQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*GiftView, error) {
	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrGiftNotFound)
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return view, nil
}
