package simpletxmanager

import (
	"context"
	"database/sql"

	"github.com/m04kA/SMC-CapacityService/pkg/dbmetrics"
	"github.com/m04kA/SMC-CapacityService/pkg/txmanager"
)

// beginnerAdapter адаптирует *sql.DB к интерфейсу txmanager.TxBeginner
// *sql.Tx сам по себе реализует dbmetrics.TxExecutor
type beginnerAdapter struct {
	db *sql.DB
}

func (a beginnerAdapter) BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error) {
	return a.db.BeginTx(ctx, opts)
}

// TransactionManager transaction manager поверх *sql.DB без сбора метрик
// Используется, когда метрики выключены в конфигурации
type TransactionManager struct {
	inner *txmanager.TransactionManager
}

// NewTransactionManager создает transaction manager поверх чистого *sql.DB
func NewTransactionManager(db *sql.DB) *TransactionManager {
	return &TransactionManager{
		inner: txmanager.NewTransactionManager(beginnerAdapter{db: db}),
	}
}

// Do выполняет fn в транзакции с уровнем изоляции по умолчанию
func (m *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.inner.Do(ctx, fn)
}

// DoSerializable выполняет fn в SERIALIZABLE транзакции с повторами при конфликтах
func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.inner.DoSerializable(ctx, fn)
}

// DoReadOnly выполняет fn в read-only транзакции
func (m *TransactionManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.inner.DoReadOnly(ctx, fn)
}
