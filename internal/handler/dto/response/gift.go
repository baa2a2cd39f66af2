package response

import (
	"time"

	"github.com/bahooo22/HannaWhishlist/internal/usecase/queries"

	"github.com/google/uuid"
)

type GiftResponse struct {
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

type GiftPageResponse struct {
	Items      []*GiftResponse `json:"items"`
	PageIndex  int             `json:"pageIndex"`
	PageSize   int             `json:"pageSize"`
	TotalCount int             `json:"totalCount"`
	TotalPages int             `json:"totalPages"`
}

func FromGiftView(view *queries.GiftView) *GiftResponse {
	return &GiftResponse{
		ID:                  view.ID,
		Title:               view.Title,
		Link:                view.Link,
		Status:              view.Status,
		ReservedByID:        view.ReservedByID,
		ReservedByNickname:  view.ReservedByNickname,
		ReservedByFirstName: view.ReservedByFirstName,
		ReservedByLastName:  view.ReservedByLastName,
		ReservedAt:          view.ReservedAt,
		CreatedAt:           view.CreatedAt,
		UpdatedAt:           view.UpdatedAt,
	}
}

func FromGiftViews(views []*queries.GiftView) []*GiftResponse {
	out := make([]*GiftResponse, len(views))
	for i, v := range views {
		out[i] = FromGiftView(v)
	}
	return out
}

func FromGiftPage(page *queries.GiftPage) *GiftPageResponse {
	return &GiftPageResponse{
		Items:      FromGiftViews(page.Items),
		PageIndex:  page.PageIndex,
		PageSize:   page.PageSize,
		TotalCount: page.TotalCount,
		TotalPages: page.TotalPages,
	}
}
