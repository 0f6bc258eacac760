package receipt

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is a single line item read off a receipt
type Item struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

// Receipt is the structured data parsed from a receipt's OCR text
type Receipt struct {
	Merchant    string           `json:"merchant"`
	Date        time.Time        `json:"date"`
	Total       decimal.Decimal  `json:"total"`
	Subtotal    *decimal.Decimal `json:"subtotal,omitempty"`
	Tax         *decimal.Decimal `json:"tax,omitempty"`
	Category    string           `json:"category"`
	ReceiptType string           `json:"receipt_type"`
	Items       []Item           `json:"items"`
	RawText     string           `json:"raw_text"` // kept for debugging OCR quality
}

// ArchivedReceipt is a processed receipt kept alongside its original upload
type ArchivedReceipt struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Receipt     *Receipt  `json:"receipt"`
	CreatedAt   time.Time `json:"created_at"`
}
