package ingest

import (
	"encoding/json"
	"time"

	"github.com/profitlens/profitlens-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Envelope is the decoded form of one report event message.
type Envelope struct {
	EventID     string                `json:"event_id"`
	EventType   enums.IngestEventType `json:"event_type"`
	Marketplace enums.Marketplace     `json:"marketplace"`
	OccurredAt  time.Time             `json:"occurred_at"`
	Payload     json.RawMessage       `json:"payload"`
}

// TransactionReported carries the settlement rows of one report chunk. The
// same shape serves order and refund events; the event type decides the row
// type when a row omits it.
type TransactionReported struct {
	ReportID string           `json:"report_id"`
	Rows     []TransactionRow `json:"rows"`
}

// TransactionRow mirrors a raw settlement-report line.
type TransactionRow struct {
	Date        time.Time `json:"date"`
	Type        string    `json:"type,omitempty"`
	SKU         string    `json:"sku"`
	ProductName string    `json:"product_name"`
	ParentID    string    `json:"parent_id"`
	Category    string    `json:"category"`
	Fulfillment string    `json:"fulfillment"`
	OrderID     string    `json:"order_id"`
	Currency    string    `json:"currency"`
	Quantity    int64     `json:"quantity"`

	ProductSales       decimal.Decimal `json:"product_sales"`
	PromotionalRebates decimal.Decimal `json:"promotional_rebates"`
	SellingFees        decimal.Decimal `json:"selling_fees"`
	FBAFees            decimal.Decimal `json:"fba_fees"`
	VAT                decimal.Decimal `json:"vat"`
	CustomsDuty        decimal.Decimal `json:"customs_duty"`
	DDPFee             decimal.Decimal `json:"ddp_fee"`
	WarehouseCost      decimal.Decimal `json:"warehouse_cost"`
	GSTCost            decimal.Decimal `json:"gst_cost"`
}
