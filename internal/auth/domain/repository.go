package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, user *AdminUser) error
	FindByEmail(ctx context.Context, email string) (*AdminUser, error)
	FindByID(ctx context.Context, id snowflake.ID) (*AdminUser, error)
	UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error
}
