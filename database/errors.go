package database

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrDuplicateKey    = errors.New("duplicate key")
	ErrForeignKey      = errors.New("foreign key violation")
	ErrCyclicRelations = errors.New("cyclic foreign key relations")
)

const (
	codeUniqueViolation     pq.ErrorCode = "23505"
	codeForeignKeyViolation pq.ErrorCode = "23503"
)

// classify оборачивает ошибки PostgreSQL в sentinel-ошибки пакета, сохраняя исходную
func classify(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case codeUniqueViolation:
		return fmt.Errorf("%w: %s (%s): %w", ErrDuplicateKey, pqErr.Constraint, pqErr.Detail, err)
	case codeForeignKeyViolation:
		return fmt.Errorf("%w: %s (%s): %w", ErrForeignKey, pqErr.Constraint, pqErr.Detail, err)
	}
	return err
}
