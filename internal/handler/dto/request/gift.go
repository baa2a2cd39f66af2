package request

import "strings"

type CreateGiftRequest struct {
	Title string  `json:"title" binding:"required,max=255"`
	Link  *string `json:"link,omitempty"`
}

func (r CreateGiftRequest) GetLink() string {
	if r.Link == nil {
		return ""
	}
	return strings.TrimSpace(*r.Link)
}

type UpdateGiftRequest struct {
	Title *string `json:"title,omitempty" binding:"omitempty,max=255"`
	Link  *string `json:"link,omitempty"`
}

type ReserveGiftRequest struct {
	ReservedByID        string  `json:"reservedById" binding:"required"`
	ReservedByNickname  string  `json:"reservedByNickname" binding:"required"`
	ReservedByFirstName string  `json:"reservedByFirstName" binding:"required"`
	ReservedByLastName  *string `json:"reservedByLastName,omitempty"`
}

func (r ReserveGiftRequest) GetLastName() string {
	if r.ReservedByLastName == nil {
		return ""
	}
	return strings.TrimSpace(*r.ReservedByLastName)
}

type UnreserveGiftRequest struct {
	ReservedByNickname string `json:"reservedByNickname" binding:"required"`
}
