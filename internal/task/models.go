// =============================================
// File: internal/task/models.go
// =============================================
// Package task loads and validates launchpad operation scenarios.
package task

// OperationType identifies what a task asks the engine to do.
type OperationType string

const (
	OperationCreate       OperationType = "create"
	OperationBuy          OperationType = "buy"
	OperationSell         OperationType = "sell"
	OperationWithdrawFees OperationType = "withdraw_fees"
	OperationExportTrades OperationType = "export_trades"
)

// Task is one scripted launchpad operation.
type Task struct {
	TaskName  string
	Operation OperationType
	Caller    string // base58 identity issuing the request

	// Token launch fields (create)
	TokenName string
	Symbol    string
	URI       string

	// Trade fields
	AmountSol    uint64 // lamports to spend on a buy
	AmountTokens uint64 // tokens to sell back

	// Export fields
	Format    string // "csv" or "json"
	OutputDir string
}
