package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repos bundles every repository built on one *gorm.DB handle. Workflows
// receive a transaction-scoped bundle from TxManager.Do, so a multi-step
// write (sale + items + ledger postings + debt update) is all-or-nothing.
type Repos struct {
	Products          ProductRepository
	Customers         CustomerRepository
	Sales             SaleRepository
	SaleItems         SaleItemRepository
	StockTransactions StockTransactionRepository
	Users             UserRepository
	Conversations     ConversationRepository
	Messages          MessageRepository
}

// NewRepos wires all repositories over the given handle, which may be a
// root connection or an open transaction.
func NewRepos(db *gorm.DB) *Repos {
	return &Repos{
		Products:          NewProductRepo(db),
		Customers:         NewCustomerRepo(db),
		Sales:             NewSaleRepo(db),
		SaleItems:         NewSaleItemRepo(db),
		StockTransactions: NewStockTransactionRepo(db),
		Users:             NewUserRepo(db),
		Conversations:     NewConversationRepo(db),
		Messages:          NewMessageRepo(db),
	}
}

// TxManager runs a function inside one database transaction. An error from
// fn rolls the whole transaction back.
type TxManager interface {
	Do(ctx context.Context, fn func(r *Repos) error) error
}

type gormTxManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) TxManager {
	return &gormTxManager{db}
}

func (m *gormTxManager) Do(ctx context.Context, fn func(r *Repos) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepos(tx))
	})
}
