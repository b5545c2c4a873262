package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"cashbook/internal/core"
	"cashbook/internal/ledger"
	applog "cashbook/internal/log"
)

type rowView struct {
	Position int
	Amount   string
	Label    string
	Date     string
}

type ledgerView struct {
	page
	Table       string
	Slug        string
	LabelHeader string
	LabelField  string
	Rows        []rowView
	Total       int
	Limit       int
	Today       string
	Chart       struct {
		Line chartSeries `json:"line"`
		Bar  chartSeries `json:"bar"`
	}
}

// handleLedgerPage renders the income or expense page: per-date line chart,
// per-label bar chart and the first page of rows.
func (s *Server) handleLedgerPage(table core.Table) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		rows, err := s.ledger.Load(ctx, table)
		if err != nil {
			applog.NewStructuredLogger(applog.FromContext(ctx)).LogError(ctx, "Ledger load failed", err,
				applog.ComponentLedger, applog.OpLoad,
				applog.NewFields().WithErrorType(applog.ErrorTypeStorage).With(applog.FieldTable, table.String()))
			s.renderError(w, r, http.StatusServiceUnavailable, "The ledger could not be read.")
			return
		}

		first, _ := ledger.Window(rows, 0, ledger.DefaultPageSize)
		view := ledgerView{
			page:        s.newPage(w, r, table.String(), table.Slug()),
			Table:       table.String(),
			Slug:        table.Slug(),
			LabelHeader: table.LabelHeader(),
			LabelField:  strings.ToLower(table.LabelHeader()),
			Rows:        make([]rowView, len(first)),
			Total:       len(rows),
			Limit:       ledger.DefaultPageSize,
			Today:       s.now().Format(core.DateLayout),
		}
		for i, row := range first {
			view.Rows[i] = rowView{Position: i, Amount: row.Amount.String(), Label: row.Label, Date: row.Date.String()}
		}
		view.Chart.Line = seriesOf(ledger.SumByDate(rows))
		view.Chart.Bar = seriesOf(ledger.SumByLabel(rows))

		s.render(w, r, http.StatusOK, "ledger", view)
	}
}

func (s *Server) handleAddEntry(table core.Table) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := applog.NewStructuredLogger(applog.FromContext(ctx))
		target := "/" + table.Slug()

		form, err := ParseEntryForm(r, table)
		if err == nil {
			var row core.Row
			row, err = s.ledger.AddEntry(ctx, table, form.Amount, form.Label, form.Date)
			if err == nil {
				logger.LogLedgerChange(ctx, applog.OpAppend,
					applog.NewFields().WithLedgerRow(table.String(), row.Amount.String(), row.Label, row.Date.String()))
				s.flash(w, r, FlashSuccess, fmt.Sprintf("%s added successfully!", table))
				SeeOther(w, r, target)
				return
			}
		}

		if errors.Is(err, ledger.ErrInvalidArgument) {
			applog.FromContext(ctx).WarnContext(ctx, "Rejected ledger entry",
				applog.FieldTable, table.String(), applog.FieldError, err)
			s.flash(w, r, FlashDanger, fmt.Sprintf("Invalid %s entry: enter an amount, a %s and a date.",
				table.Slug(), strings.ToLower(table.LabelHeader())))
		} else {
			logger.LogError(ctx, "Failed to append ledger entry", err, applog.ComponentLedger, applog.OpAppend,
				applog.NewFields().WithErrorType(applog.ErrorTypeStorage).With(applog.FieldTable, table.String()))
			s.flash(w, r, FlashDanger, fmt.Sprintf("Could not save the %s entry.", table.Slug()))
		}
		SeeOther(w, r, target)
	}
}

func (s *Server) handleDelete(table core.Table) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := applog.NewStructuredLogger(applog.FromContext(ctx))
		target := "/" + table.Slug()

		position, err := ParsePosition(chi.URLParam(r, "index"))
		if err == nil {
			err = s.ledger.DeleteAt(ctx, table, position)
		}

		switch {
		case err == nil:
			logger.LogLedgerChange(ctx, applog.OpDelete, applog.NewFields().WithPosition(table.String(), position))
			s.flash(w, r, FlashSuccess, fmt.Sprintf("%s deleted successfully!", table))
		case errors.Is(err, ledger.ErrInvalidPosition):
			applog.FromContext(ctx).WarnContext(ctx, "Rejected delete",
				applog.FieldTable, table.String(), applog.FieldError, err)
			s.flash(w, r, FlashDanger, fmt.Sprintf("Invalid %s entry selected.", table.Slug()))
		default:
			logger.LogError(ctx, "Failed to delete ledger entry", err, applog.ComponentLedger, applog.OpDelete,
				applog.NewFields().WithErrorType(applog.ErrorTypeStorage).WithPosition(table.String(), position))
			s.flash(w, r, FlashDanger, fmt.Sprintf("Could not delete the %s entry.", table.Slug()))
		}
		SeeOther(w, r, target)
	}
}

// handleLoadMore returns the next window of rows as JSON. Unknown types
// yield an empty array; malformed offsets or limits are a 400.
func (s *Server) handleLoadMore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params, err := ParsePageParams(r.URL.Query())
	if err != nil {
		JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	out := []map[string]any{}
	if !params.Known {
		NewResponse().JSON(out).Write(w)
		return
	}

	rows, err := s.ledger.Load(ctx, params.Table)
	if err != nil {
		applog.NewStructuredLogger(applog.FromContext(ctx)).LogError(ctx, "Load more failed", err,
			applog.ComponentLedger, applog.OpPaginate, applog.NewFields().WithErrorType(applog.ErrorTypeStorage))
		JSONError(w, http.StatusServiceUnavailable, "ledger unavailable")
		return
	}
	window, err := ledger.Window(rows, params.Offset, params.Limit)
	if err != nil {
		JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	for _, row := range window {
		out = append(out, rowJSON(params.Table, row))
	}
	NewResponse().JSON(out).Write(w)
}
