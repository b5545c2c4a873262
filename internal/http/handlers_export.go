package http

import (
	"errors"
	"net/http"

	"cashbook/internal/ledger"
	applog "cashbook/internal/log"
	"cashbook/internal/sheets/workbook"
)

const noDataMessage = "No data to download!"

// handleDownload sends both tables as one workbook. With nothing to export
// the user is sent back to the dashboard with a warning.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.NewStructuredLogger(applog.FromContext(ctx))

	snap, err := s.ledger.Snapshot(ctx)
	if errors.Is(err, ledger.ErrStorageUnavailable) {
		logger.LogError(ctx, "Export load failed", err, applog.ComponentLedger, applog.OpExport,
			applog.NewFields().WithErrorType(applog.ErrorTypeStorage))
		s.flash(w, r, FlashWarning, noDataMessage)
		SeeOther(w, r, "/")
		return
	}
	if err != nil {
		logger.LogError(ctx, "Export load failed", err, applog.ComponentLedger, applog.OpExport,
			applog.NewFields().WithErrorType(applog.ErrorTypeInternal))
		s.renderError(w, r, http.StatusServiceUnavailable, "The ledger could not be read.")
		return
	}
	if snap.Empty() {
		s.flash(w, r, FlashWarning, noDataMessage)
		SeeOther(w, r, "/")
		return
	}

	data, err := workbook.Encode(snap.Income, snap.Expense)
	if err != nil {
		logger.LogError(ctx, "Export encoding failed", err, applog.ComponentWorkbook, applog.OpExport,
			applog.NewFields().WithErrorType(applog.ErrorTypeEncoding))
		s.renderError(w, r, http.StatusInternalServerError, "The export could not be created.")
		return
	}

	applog.FromContext(ctx).InfoContext(ctx, "Ledger exported",
		applog.FieldOperation, applog.OpExport,
		"income_rows", len(snap.Income),
		"expense_rows", len(snap.Expense),
		"bytes", len(data))
	NewResponse().Attachment(downloadFilename(s.now()), workbook.ContentType, data).Write(w)
}
