package option

import (
	"fmt"
	"strings"

	"github.com/smallbiznis/rentaldesk/pkg/db/pagination"
	"gorm.io/gorm"
)

type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type QueryOptionFunc func(db *gorm.DB) *gorm.DB

func (f QueryOptionFunc) Apply(db *gorm.DB) *gorm.DB {
	return f(db)
}

type Operator string

const (
	EQ   Operator = "="
	GTE  Operator = ">="
	LTE  Operator = "<="
	LIKE Operator = "LIKE"
)

type Condition struct {
	Field    string
	Operator Operator
	Value    any
}

func ApplyOperator(cond Condition) QueryOption {
	return QueryOptionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Where(fmt.Sprintf("%s %s ?", cond.Field, cond.Operator), cond.Value)
	})
}

// WithSearch matches term as a case-insensitive substring of any field.
func WithSearch(term string, fields ...string) QueryOption {
	return QueryOptionFunc(func(db *gorm.DB) *gorm.DB {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" || len(fields) == 0 {
			return db
		}
		clauses := make([]string, 0, len(fields))
		args := make([]any, 0, len(fields))
		for _, field := range fields {
			clauses = append(clauses, fmt.Sprintf("LOWER(%s) LIKE ?", field))
			args = append(args, "%"+term+"%")
		}
		return db.Where(strings.Join(clauses, " OR "), args...)
	})
}

type QuerySortBy struct {
	Field   string
	Desc    bool
	Allow   map[string]bool
	Default string
}

// WithSortBy orders by an allow-listed column, falling back to Default.
func WithSortBy(sort QuerySortBy) QueryOption {
	return QueryOptionFunc(func(db *gorm.DB) *gorm.DB {
		field := strings.ToLower(strings.TrimSpace(sort.Field))
		if !sort.Allow[field] {
			field = sort.Default
		}
		if field == "" {
			return db
		}
		dir := "asc"
		if sort.Desc {
			dir = "desc"
		}
		return db.Order(fmt.Sprintf("%s %s, id %s", field, dir, dir))
	})
}

func ApplyPagination(page pagination.Pagination) QueryOption {
	return QueryOptionFunc(func(db *gorm.DB) *gorm.DB {
		page = page.Normalize()
		return db.Offset(page.Offset()).Limit(page.PageSize)
	})
}
