package postgres

import (
	"errors"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the repositories translate into application errors.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeInvalidTextRepr     = "22P02"
)

// psql builds the dynamic list queries. Prepared mode keeps every value out of
// the SQL text and in the $n argument list.
var psql = goqu.Dialect("postgres")

func from(table any) *goqu.SelectDataset {
	return psql.From(table).Prepared(true)
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgErrorCode(err) == codeUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pgErrorCode(err) == codeForeignKeyViolation
}

// isMissing reports whether err means the requested row cannot exist: either
// no row came back or the id was not a valid UUID.
func isMissing(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || pgErrorCode(err) == codeInvalidTextRepr
}
