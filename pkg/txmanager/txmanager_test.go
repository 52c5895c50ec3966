package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CapacityService/pkg/dbmetrics"
)

func TestIsRetryable(t *testing.T) {
	// Ошибка в форме, которой её оборачивают репозитории и use case:
	// две обёртки через %w поверх исходной *pq.Error
	errExecQuery := errors.New("storage: failed to execute query")
	errInternal := errors.New("usecase: internal error")
	repoWrapped := fmt.Errorf("%w: DecrementRemaining - execute update: %w", errExecQuery, &pq.Error{Code: "40001"})
	usecaseWrapped := fmt.Errorf("%w: failed to decrement remaining: %w", errInternal, repoWrapped)

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"serialization failure", &pq.Error{Code: "40001"}, true},
		{"deadlock detected", &pq.Error{Code: "40P01"}, true},
		{"wrapped serialization failure", fmt.Errorf("query failed: %w", &pq.Error{Code: "40001"}), true},
		{"repository wrapped serialization failure", repoWrapped, true},
		{"usecase wrapped serialization failure", usecaseWrapped, true},
		{"unique violation", &pq.Error{Code: "23505"}, false},
		{"plain error", errors.New("connection refused"), false},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

type fakeTx struct {
	commits   int
	rollbacks int
}

func (t *fakeTx) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, nil
}

func (t *fakeTx) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, nil
}

func (t *fakeTx) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

func (t *fakeTx) Commit() error {
	t.commits++
	return nil
}

func (t *fakeTx) Rollback() error {
	t.rollbacks++
	return nil
}

type fakeTxBeginner struct {
	tx *fakeTx
}

func (b *fakeTxBeginner) BeginTx(context.Context, *sql.TxOptions) (dbmetrics.TxExecutor, error) {
	return b.tx, nil
}

// Конфликт сериализации на уровне statement (SELECT FOR UPDATE внутри
// транзакции) приходит из репозитория уже обёрнутым, и транзакция
// всё равно должна быть повторена
func TestDoSerializableRetriesStatementLevelFailure(t *testing.T) {
	tx := &fakeTx{}
	mgr := NewTransactionManager(&fakeTxBeginner{tx: tx})

	errExecQuery := errors.New("storage: failed to execute query")
	statementFailure := fmt.Errorf("%w: GetForUpdate - execute query: %w", errExecQuery, &pq.Error{Code: "40001"})

	attempts := 0
	err := mgr.DoSerializable(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return statementFailure
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 2, tx.rollbacks)
	assert.Equal(t, 1, tx.commits)
}

func TestDoSerializableExhaustsRetries(t *testing.T) {
	tx := &fakeTx{}
	mgr := NewTransactionManager(&fakeTxBeginner{tx: tx})

	errExecQuery := errors.New("storage: failed to execute query")
	statementFailure := fmt.Errorf("%w: DecrementRemaining - execute update: %w", errExecQuery, &pq.Error{Code: "40001"})

	attempts := 0
	err := mgr.DoSerializable(context.Background(), func(ctx context.Context) error {
		attempts++
		return statementFailure
	})

	assert.ErrorIs(t, err, ErrSerializationFailure)
	assert.Equal(t, maxRetries+1, attempts)
	assert.Equal(t, maxRetries+1, tx.rollbacks)
	assert.Zero(t, tx.commits)
}

func TestDoSerializableDoesNotRetryPlainError(t *testing.T) {
	tx := &fakeTx{}
	mgr := NewTransactionManager(&fakeTxBeginner{tx: tx})

	boom := errors.New("boom")

	attempts := 0
	err := mgr.DoSerializable(context.Background(), func(ctx context.Context) error {
		attempts++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, tx.rollbacks)
}
