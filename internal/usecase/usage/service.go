package usage

import (
	"context"
	"time"

	domusage "github.com/praxis-cloud/ragcore/internal/domain/usage"
	"github.com/praxis-cloud/ragcore/internal/domain/usage/budget"
	"github.com/praxis-cloud/ragcore/internal/domain/usage/metrics"
)

// Service handles usage reporting.
type Service struct {
	br       BudgetReader
	provider string
}

// New creates a Service. br can be nil (unlimited mode).
func New(br BudgetReader, provider string) *Service {
	return &Service{br: br, provider: provider}
}

// GetReport builds a usage report for the given period.
func (s *Service) GetReport(_ context.Context, period domusage.Period) domusage.Report {
	now := time.Now().UTC()
	var start, end int64
	var limit, used, remaining int64
	var requests, batchRequests int64

	switch period {
	case domusage.PeriodDay:
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		dayEnd := dayStart.Add(24 * time.Hour)
		start = dayStart.UnixMilli()
		end = dayEnd.UnixMilli()
		if s.br != nil {
			limit = s.br.DailyLimit()
			used = s.br.DailyUsed()
			remaining = s.br.RemainingDaily()
			requests = s.br.DailyRequests()
			batchRequests = s.br.DailyBatchRequests()
		}
	case domusage.PeriodMonth:
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		monthEnd := monthStart.AddDate(0, 1, 0)
		start = monthStart.UnixMilli()
		end = monthEnd.UnixMilli()
		if s.br != nil {
			limit = s.br.MonthlyLimit()
			used = s.br.MonthlyUsed()
			remaining = s.br.RemainingMonthly()
			requests = s.br.MonthlyRequests()
			batchRequests = s.br.MonthlyBatchRequests()
		}
	default:
		// total: no period boundaries, monthly numbers are the best view we have
		if s.br != nil {
			limit = s.br.MonthlyLimit()
			used = s.br.MonthlyUsed()
			remaining = s.br.RemainingMonthly()
			requests = s.br.MonthlyRequests()
			batchRequests = s.br.MonthlyBatchRequests()
		}
	}

	exhausted := limit > 0 && remaining <= 0
	resetsAt := end

	action := budget.ActionWarn
	if s.br != nil {
		action = s.br.Action()
	}

	b := budget.New(int(limit), int(remaining), exhausted, action, resetsAt)
	m := metrics.New(int(requests), int(batchRequests), int(used), 0) // cost_millidollars not tracked yet

	return domusage.NewReport(period, start, end, s.provider, m, b)
}
