package accountdelivery

import (
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/go-petr/trade-ledger/internal/domain"
	"github.com/go-petr/trade-ledger/internal/middleware"
)

// XLSXContentType is the media type of an exported journal.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const exportSheet = "Entries"

var exportHeaders = []string{"Sequence", "Created at", "Kind", "Amount", "Balance after", "Reference", "Entry ID"}

// WriteEntries renders entries as a single sheet workbook. Amounts are
// written as text so no decimal place is lost.
func WriteEntries(w io.Writer, entries []domain.Entry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return err
	}

	for i, h := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}

		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return err
		}
	}

	for i, e := range entries {
		row := []any{
			e.Sequence,
			e.CreatedAt.UTC().Format(time.RFC3339Nano),
			string(e.Kind),
			e.Amount.String(),
			e.BalanceAfter.String(),
			e.Reference,
			e.ID,
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(exportSheet, "B", "B", 30); err != nil {
		return err
	}

	if err := f.SetColWidth(exportSheet, "G", "G", 38); err != nil {
		return err
	}

	return f.Write(w)
}

// ExportHistory handles http request to download an account journal as XLSX.
func (h *Handler) ExportHistory(gctx *gin.Context) {
	var uri currencyURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindError(gctx, err)
		return
	}

	var q rangeQuery
	if err := gctx.ShouldBindQuery(&q); err != nil {
		bindError(gctx, err)
		return
	}

	f := domain.HistoryFilter{Since: q.Since, Until: q.Until, Kinds: parseKinds(q.Kinds)}

	entries, err := h.service.ExportHistory(gctx.Request.Context(), middleware.Owner(gctx), uri.Currency, f)
	if err != nil {
		serviceError(gctx, err)
		return
	}

	gctx.Header("Content-Type", XLSXContentType)
	gctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"entries_%s_%s.xlsx\"",
		uri.Currency, time.Now().UTC().Format("20060102")))

	if err := WriteEntries(gctx.Writer, entries); err != nil {
		serviceError(gctx, err)
	}
}
