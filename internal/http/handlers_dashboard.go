package http

import (
	"net/http"

	"cashbook/internal/core"
	"cashbook/internal/ledger"
	applog "cashbook/internal/log"
)

// chartSeries is serialized into the page for the chart script.
type chartSeries struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

func seriesOf(buckets []core.Bucket) chartSeries {
	s := chartSeries{Labels: make([]string, len(buckets)), Values: make([]float64, len(buckets))}
	for i, b := range buckets {
		s.Labels[i] = b.Key
		s.Values[i] = b.Total.Float64()
	}
	return s
}

type dashboardView struct {
	page
	HasData      bool
	TotalIncome  string
	TotalExpense string
	Balance      string
	Negative     bool
	Chart        struct {
		Income  chartSeries `json:"income"`
		Expense chartSeries `json:"expense"`
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	snap, err := s.ledger.Snapshot(ctx)
	if err != nil {
		applog.NewStructuredLogger(applog.FromContext(ctx)).LogError(ctx, "Dashboard load failed", err,
			applog.ComponentLedger, applog.OpLoad, applog.NewFields().WithErrorType(applog.ErrorTypeStorage))
		s.renderError(w, r, http.StatusServiceUnavailable, "The ledger could not be read.")
		return
	}

	summary := ledger.Summarize(snap.Income, snap.Expense)
	view := dashboardView{
		page:         s.newPage(w, r, "Dashboard", "dashboard"),
		HasData:      !snap.Empty(),
		TotalIncome:  summary.TotalIncome.String(),
		TotalExpense: summary.TotalExpense.String(),
		Balance:      summary.Balance.String(),
		Negative:     summary.Balance.Cents < 0,
	}
	view.Chart.Income = seriesOf(ledger.SumByDate(snap.Income))
	view.Chart.Expense = seriesOf(ledger.SumByDate(snap.Expense))

	s.render(w, r, http.StatusOK, "dashboard", view)
}
