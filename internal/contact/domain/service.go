package domain

import (
	"context"

	"github.com/smallbiznis/rentaldesk/pkg/db/pagination"
)

type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (Message, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	Get(ctx context.Context, id string) (Message, error)
	UpdateStatus(ctx context.Context, id string, status string) (Message, error)
	Delete(ctx context.Context, id string) error
}

type SubmitRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
	Source  string `json:"source"`

	// Filled from the request, never from the body.
	IP        string `json:"-"`
	UserAgent string `json:"-"`
	Referer   string `json:"-"`
}

type ListRequest struct {
	pagination.Pagination
	Status string
	Search string
}

type ListResponse struct {
	pagination.PageInfo
	Messages []Message `json:"messages"`
}
