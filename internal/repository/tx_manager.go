package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	CartLines() CartLineRepository
	Inventory() InventoryRepository
	Products() ProductRepository
	Addresses() AddressRepository
	AuditLogs() AuditLogRepository
	Users() UserRepository
	Sellers() SellerRepository
	Categories() CategoryRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
