package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Users() UserRepository
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	Cart() CartRepository
	Products() ProductRepository
	Categories() CategoryRepository
	Inventory() InventoryRepository
	AuditLogs() AuditLogRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
// fnがエラーを返したらrollback
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
