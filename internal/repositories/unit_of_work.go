package repositories

import "gorm.io/gorm"

// Repos bundles the repositories that participate in the finalization
// transaction.
type Repos struct {
	Products ProductRepository
	Orders   OrderRepository
	Payments PendingPaymentRepository
	Carts    CartStore
}

// UnitOfWork runs a function against a consistent set of repositories.
// The GORM implementation wraps the call in one database transaction, so a
// failure anywhere rolls back stock decrements, the order record, the
// payment transition and the cart clear together.
type UnitOfWork interface {
	Transact(fn func(r Repos) error) error
}

// GORMUnitOfWork is a UnitOfWork over a GORM database.
type GORMUnitOfWork struct {
	db *gorm.DB
}

// NewGORMUnitOfWork creates a new instance of GORMUnitOfWork.
func NewGORMUnitOfWork(db *gorm.DB) *GORMUnitOfWork {
	return &GORMUnitOfWork{
		db: db,
	}
}

// Transact rebinds fresh repositories to the transaction handle and runs fn.
func (u *GORMUnitOfWork) Transact(fn func(r Repos) error) error {
	return u.db.Transaction(func(tx *gorm.DB) error {
		return fn(Repos{
			Products: NewGORMProductRepository(tx),
			Orders:   NewGORMOrderRepository(tx),
			Payments: NewGORMPendingPaymentRepository(tx),
			Carts:    NewGORMCartStore(tx),
		})
	})
}

// MemoryUnitOfWork runs the function directly against in-memory
// repositories. It provides no rollback; it exists so service tests can
// exercise finalization logic without a database.
type MemoryUnitOfWork struct {
	Repos Repos
}

// NewMemoryUnitOfWork creates a new instance of MemoryUnitOfWork.
func NewMemoryUnitOfWork(repos Repos) *MemoryUnitOfWork {
	return &MemoryUnitOfWork{Repos: repos}
}

// Transact calls fn with the fixed repository set.
func (u *MemoryUnitOfWork) Transact(fn func(r Repos) error) error {
	return fn(u.Repos)
}
