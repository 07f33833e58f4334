package postgres

import (
	"errors"

	"gorm.io/gorm"

	"user-pref-service/internal/domain/user"
	apperrors "user-pref-service/pkg/errors"
	"user-pref-service/pkg/security"
)

// sortColumns whitelists the columns a list may be ordered by.
var sortColumns = map[user.SortField]string{
	user.SortCreatedAt: "created_at",
	user.SortUpdatedAt: "updated_at",
	user.SortDeletedAt: "deleted_at",
}

// paginate applies soft-delete visibility, search, ordering and paging to tx.
// It returns the scoped query for counting and the paged query for fetching.
func paginate(tx *gorm.DB, q user.ListQuery, searchColumns ...string) (*gorm.DB, *gorm.DB, error) {
	if q.SelectSoftDeleted {
		tx = tx.Unscoped()
	}

	term, err := security.CleanSearchTerm(q.SearchTerm)
	if err != nil {
		return nil, nil, err
	}
	if term != "" && len(searchColumns) > 0 {
		pattern := "%" + security.EscapeLike(term) + "%"
		cond := tx.Session(&gorm.Session{NewDB: true})
		for i, col := range searchColumns {
			expr := "LOWER(" + col + ") LIKE LOWER(?) ESCAPE '\\'"
			if i == 0 {
				cond = cond.Where(expr, pattern)
			} else {
				cond = cond.Or(expr, pattern)
			}
		}
		tx = tx.Where(cond)
	}

	column, ok := sortColumns[q.SortBy]
	if !ok {
		column = sortColumns[user.SortCreatedAt]
	}
	direction := "DESC"
	if q.Order == user.OrderAsc {
		direction = "ASC"
	}

	limit := q.Limit
	if limit <= 0 {
		limit = user.DefaultLimit
	}

	paged := tx.Session(&gorm.Session{}).
		Order(column + " " + direction).
		Offset(int(user.ListQuery{Page: q.Page, Limit: limit}.Offset())).
		Limit(int(limit))

	return tx, paged, nil
}

// integrationError wraps a database failure unless it is already typed.
func integrationError(msg string, err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.Conflict("resource already exists", apperrors.WithCause(err))
	}
	return apperrors.Integration(msg, apperrors.WithCause(err))
}
