// Package repository is the data access layer: a generic single-table
// Repository plus table-specific queries for each model.
package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotFound is returned when no row matches an id or filter set.
	ErrNotFound = errors.New("record not found")
	// ErrStorage wraps every other database failure.
	ErrStorage = errors.New("storage error")
)

// Filters are exact-match column conditions, ANDed together.
type Filters map[string]any

// Page is one page of a paginated query.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalPages int   `json:"total_pages"`
}

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Repository provides CRUD over the table backing T.
type Repository[T any] struct {
	db       *gorm.DB
	fillable []string
	allowed  map[string]bool
}

// New builds a repository whose Create and Update only touch the fillable columns.
func New[T any](db *gorm.DB, fillable ...string) *Repository[T] {
	allowed := make(map[string]bool, len(fillable))
	for _, f := range fillable {
		allowed[f] = true
	}
	return &Repository[T]{db: db, fillable: fillable, allowed: allowed}
}

// WithTx returns a copy of the repository bound to tx.
func (r *Repository[T]) WithTx(tx *gorm.DB) *Repository[T] {
	cp := *r
	cp.db = tx
	return &cp
}

// DB exposes the underlying handle for table-specific queries.
func (r *Repository[T]) DB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// Fillable reports the column allow-list.
func (r *Repository[T]) Fillable() []string {
	return append([]string(nil), r.fillable...)
}

func (r *Repository[T]) Find(ctx context.Context, id uint) (*T, error) {
	var out T
	if err := r.DB(ctx).First(&out, id).Error; err != nil {
		return nil, wrap(err)
	}
	return &out, nil
}

func (r *Repository[T]) FindAll(ctx context.Context, filters Filters, order string, limit int) ([]T, error) {
	q := applyFilters(r.DB(ctx), filters)
	if order != "" {
		q = q.Order(order)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []T
	if err := q.Find(&out).Error; err != nil {
		return nil, wrap(err)
	}
	return out, nil
}

// FindBy returns the first row matching filters.
func (r *Repository[T]) FindBy(ctx context.Context, filters Filters) (*T, error) {
	var out T
	if err := applyFilters(r.DB(ctx), filters).First(&out).Error; err != nil {
		return nil, wrap(err)
	}
	return &out, nil
}

// Create inserts entity writing only fillable columns plus timestamps.
// Columns left out fall back to their database defaults.
func (r *Repository[T]) Create(ctx context.Context, entity *T) error {
	cols := append(r.Fillable(), "created_at", "updated_at")
	if err := r.DB(ctx).Select(cols).Create(entity).Error; err != nil {
		return wrap(err)
	}
	return nil
}

// Update sets fields on the row with id. Keys outside the fillable list are
// dropped silently. An empty update after filtering is a no-op.
func (r *Repository[T]) Update(ctx context.Context, id uint, fields map[string]any) error {
	clean := r.filterFillable(fields)
	if len(clean) == 0 {
		return nil
	}
	res := r.DB(ctx).Model(new(T)).Where("id = ?", id).Updates(clean)
	if res.Error != nil {
		return wrap(res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.Find(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository[T]) Delete(ctx context.Context, id uint) error {
	res := r.DB(ctx).Delete(new(T), id)
	if res.Error != nil {
		return wrap(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository[T]) Count(ctx context.Context, filters Filters) (int64, error) {
	var n int64
	if err := applyFilters(r.DB(ctx).Model(new(T)), filters).Count(&n).Error; err != nil {
		return 0, wrap(err)
	}
	return n, nil
}

func (r *Repository[T]) Paginate(ctx context.Context, page, perPage int, filters Filters, order string) (*Page[T], error) {
	return r.PaginateQuery(ctx, applyFilters(r.DB(ctx), filters), page, perPage, order)
}

// PaginateQuery pages over an already-scoped query. Associations named in
// preloads are loaded for the returned items only.
func (r *Repository[T]) PaginateQuery(ctx context.Context, q *gorm.DB, page, perPage int, order string, preloads ...string) (*Page[T], error) {
	page, perPage = normalizePage(page, perPage)

	var total int64
	if err := q.Session(&gorm.Session{}).Model(new(T)).Count(&total).Error; err != nil {
		return nil, wrap(err)
	}

	items := make([]T, 0, perPage)
	q = q.Session(&gorm.Session{})
	for _, p := range preloads {
		q = q.Preload(p)
	}
	if order != "" {
		q = q.Order(order)
	}
	if err := q.Offset((page - 1) * perPage).Limit(perPage).Find(&items).Error; err != nil {
		return nil, wrap(err)
	}

	return &Page[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: int(math.Ceil(float64(total) / float64(perPage))),
	}, nil
}

// Search matches term as a substring of any of fields, ANDed with filters.
func (r *Repository[T]) Search(ctx context.Context, term string, fields []string, filters Filters) ([]T, error) {
	var out []T
	if err := r.SearchScope(applyFilters(r.DB(ctx), filters), term, fields).Find(&out).Error; err != nil {
		return nil, wrap(err)
	}
	return out, nil
}

// SearchScope adds the OR'ed LIKE condition of Search to q.
func (r *Repository[T]) SearchScope(q *gorm.DB, term string, fields []string) *gorm.DB {
	term = strings.TrimSpace(term)
	if term == "" || len(fields) == 0 {
		return q
	}
	pattern := "%" + term + "%"
	likes := make([]clause.Expression, 0, len(fields))
	for _, f := range fields {
		likes = append(likes, clause.Like{Column: clause.Column{Name: f}, Value: pattern})
	}
	return q.Clauses(clause.Where{Exprs: []clause.Expression{clause.Or(likes...)}})
}

func (r *Repository[T]) filterFillable(fields map[string]any) map[string]any {
	clean := make(map[string]any, len(fields))
	for k, v := range fields {
		if r.allowed[k] {
			clean[k] = v
		}
	}
	return clean
}

func applyFilters(q *gorm.DB, filters Filters) *gorm.DB {
	if len(filters) == 0 {
		return q
	}
	return q.Where(map[string]any(filters))
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

func wrap(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %v", ErrStorage, err)
}

// set updates columns on id without the fillable filter. It is for
// table-specific operations that own columns callers must not write.
func (r *Repository[T]) set(ctx context.Context, id uint, fields map[string]any) error {
	res := r.DB(ctx).Model(new(T)).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return wrap(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
