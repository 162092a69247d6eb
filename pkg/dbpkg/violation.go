package dbpkg

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// ViolationKind classifies integrity constraint violations across drivers.
type ViolationKind int

// Violation kinds.
const (
	UniqueViolation ViolationKind = iota + 1
	CheckViolation
	ForeignKeyViolation
	NotNullViolation
)

// Postgres SQLSTATE codes of integrity constraint violations.
const (
	pqUniqueViolation     = "23505"
	pqCheckViolation      = "23514"
	pqForeignKeyViolation = "23503"
	pqNotNullViolation    = "23502"
)

// Violation describes a constraint violation reported by the driver.
//
// Constraint holds the postgres constraint name or, for sqlite, the text after
// "constraint failed:" which names the constraint or its columns.
type Violation struct {
	Kind       ViolationKind
	Constraint string
}

// Mentions reports whether the violated constraint refers to the given name.
func (v Violation) Mentions(name string) bool {
	return strings.Contains(v.Constraint, name)
}

// ViolationOf extracts a constraint violation from a lib/pq or go-sqlite3 error.
func ViolationOf(err error) (Violation, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		var kind ViolationKind

		switch pqErr.Code {
		case pqUniqueViolation:
			kind = UniqueViolation
		case pqCheckViolation:
			kind = CheckViolation
		case pqForeignKeyViolation:
			kind = ForeignKeyViolation
		case pqNotNullViolation:
			kind = NotNullViolation
		default:
			return Violation{}, false
		}

		return Violation{Kind: kind, Constraint: pqErr.Constraint}, true
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) && liteErr.Code == sqlite3.ErrConstraint {
		var kind ViolationKind

		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			kind = UniqueViolation
		case sqlite3.ErrConstraintCheck:
			kind = CheckViolation
		case sqlite3.ErrConstraintForeignKey:
			kind = ForeignKeyViolation
		case sqlite3.ErrConstraintNotNull:
			kind = NotNullViolation
		default:
			return Violation{}, false
		}

		msg := liteErr.Error()
		if i := strings.Index(msg, "constraint failed:"); i >= 0 {
			msg = strings.TrimSpace(msg[i+len("constraint failed:"):])
		}

		return Violation{Kind: kind, Constraint: msg}, true
	}

	return Violation{}, false
}
