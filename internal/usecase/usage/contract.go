package usage

import "github.com/praxis-cloud/ragcore/internal/domain/usage/budget"

// BudgetReader provides read-only access to token budget state.
//
//nolint:interfacebloat // mirrors the budget tracker's full read surface
type BudgetReader interface {
	DailyLimit() int64
	MonthlyLimit() int64
	DailyUsed() int64
	MonthlyUsed() int64
	RemainingDaily() int64
	RemainingMonthly() int64
	Action() budget.Action

	DailyRequests() int64
	DailyBatchRequests() int64
	MonthlyRequests() int64
	MonthlyBatchRequests() int64
}
