package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-admin-api/internal/models"
)

// psql renders squirrel builders with PostgreSQL placeholders.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func pageBounds(page, pageSize int) (uint64, uint64) {
	page, pageSize = models.NormalizePage(page, pageSize)
	return uint64(pageSize), uint64((page - 1) * pageSize)
}

func sortClause(sortBy, sortOrder, fallback string, allowed map[string]string) string {
	column, ok := allowed[sortBy]
	if !ok {
		column = allowed[fallback]
	}
	order := strings.ToUpper(sortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	return column + " " + order
}

func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}

// selectPage runs the list and count queries for a filtered builder.
func selectPage(ctx context.Context, db sqlx.QueryerContext, dest interface{}, list, count squirrel.SelectBuilder, label string) (int, error) {
	query, args, err := list.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build %s query: %w", label, err)
	}
	if err := sqlx.SelectContext(ctx, db, dest, query, args...); err != nil {
		return 0, fmt.Errorf("list %s: %w", label, err)
	}

	countQuery, countArgs, err := count.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build %s count: %w", label, err)
	}
	var total int
	if err := sqlx.GetContext(ctx, db, &total, countQuery, countArgs...); err != nil {
		return 0, fmt.Errorf("count %s: %w", label, err)
	}
	return total, nil
}

// withTx runs fn inside a transaction, rolling back on error.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
