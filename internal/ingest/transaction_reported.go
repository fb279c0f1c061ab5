package ingest

import (
	"context"
	"fmt"

	"github.com/profitlens/profitlens-backend/pkg/db/models"
	"github.com/profitlens/profitlens-backend/pkg/enums"
	"github.com/profitlens/profitlens-backend/pkg/logger"
)

// RowWriter stores converted settlement rows.
type RowWriter interface {
	Write(ctx context.Context, rows []models.MarketplaceTransaction) (int, error)
}

type transactionHandler struct {
	writer      RowWriter
	logg        *logger.Logger
	defaultType enums.TransactionType
}

func newTransactionHandler(writer RowWriter, logg *logger.Logger, defaultType enums.TransactionType) Handler {
	return &transactionHandler{writer: writer, logg: logg, defaultType: defaultType}
}

func (h *transactionHandler) Handle(ctx context.Context, envelope Envelope, payload any) error {
	event, ok := payload.(*TransactionReported)
	if !ok {
		return fmt.Errorf("invalid payload for %s", envelope.EventType)
	}

	logCtx := h.logg.WithFields(ctx, map[string]any{
		"event_type":  envelope.EventType,
		"report_id":   event.ReportID,
		"marketplace": envelope.Marketplace,
		"rows":        len(event.Rows),
	})

	converted := make([]models.MarketplaceTransaction, 0, len(event.Rows))
	dropped := 0
	for i, row := range event.Rows {
		record, err := h.convert(envelope, event.ReportID, i, row)
		if err != nil {
			dropped++
			h.logg.Warn(h.logg.WithField(logCtx, "row_error", err.Error()), "dropping malformed report row")
			continue
		}
		converted = append(converted, record)
	}

	stored, err := h.writer.Write(logCtx, converted)
	if err != nil {
		h.logg.Error(logCtx, "failed to store report rows", err)
		return err
	}

	h.logg.Info(
		h.logg.WithFields(logCtx, map[string]any{"stored": stored, "dropped": dropped}),
		"report rows ingested",
	)
	return nil
}

// convert maps one raw report line to a storable row. The per-row event id
// derives from the envelope's event id and the row position, so replaying a
// report chunk never duplicates rows.
func (h *transactionHandler) convert(envelope Envelope, reportID string, index int, row TransactionRow) (models.MarketplaceTransaction, error) {
	if row.SKU == "" {
		return models.MarketplaceTransaction{}, fmt.Errorf("row %d: sku missing", index)
	}
	if row.Date.IsZero() {
		return models.MarketplaceTransaction{}, fmt.Errorf("row %d: date missing", index)
	}

	txnType := h.defaultType
	if row.Type != "" {
		parsed, err := enums.ParseTransactionType(row.Type)
		if err != nil {
			return models.MarketplaceTransaction{}, fmt.Errorf("row %d: %w", index, err)
		}
		txnType = parsed
	}

	fulfillment, err := enums.ParseFulfillment(row.Fulfillment)
	if err != nil {
		return models.MarketplaceTransaction{}, fmt.Errorf("row %d: %w", index, err)
	}

	currency := envelope.Marketplace.LocalCurrency()
	if row.Currency != "" {
		parsed, err := enums.ParseCurrency(row.Currency)
		if err != nil {
			return models.MarketplaceTransaction{}, fmt.Errorf("row %d: %w", index, err)
		}
		currency = parsed
	}

	return models.MarketplaceTransaction{
		EventID:     fmt.Sprintf("%s:%s:%d", envelope.EventID, reportID, index),
		OccurredOn:  row.Date.UTC(),
		Marketplace: envelope.Marketplace,
		Type:        txnType,
		SKU:         row.SKU,
		ProductName: row.ProductName,
		ParentID:    row.ParentID,
		Category:    row.Category,
		Fulfillment: fulfillment,
		OrderID:     row.OrderID,
		Currency:    currency,
		Quantity:    row.Quantity,

		ProductSales:       row.ProductSales,
		PromotionalRebates: row.PromotionalRebates,
		SellingFees:        row.SellingFees,
		FBAFees:            row.FBAFees,
		VAT:                row.VAT,
		CustomsDuty:        row.CustomsDuty,
		DDPFee:             row.DDPFee,
		WarehouseCost:      row.WarehouseCost,
		GSTCost:            row.GSTCost,
	}, nil
}
