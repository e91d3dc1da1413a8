package model

import "github.com/shopspring/decimal"

// PurchaseRecord is one disclosed insider open-market purchase.
// Date is the trade date, not the filing date.
type PurchaseRecord struct {
	Date        Date            `json:"date"`
	InsiderName string          `json:"insider_name"`
	Title       string          `json:"title"`
	Shares      int64           `json:"shares"`
	Value       decimal.Decimal `json:"value"`
}

// PoliticalTrade is a congressional trade disclosure row.
type PoliticalTrade struct {
	ID               int64           `json:"id"`
	Politician       string          `json:"politician"`
	Party            string          `json:"party"`
	Chamber          string          `json:"chamber"`
	Ticker           string          `json:"ticker"`
	AssetDescription string          `json:"asset_description"`
	TransactionType  string          `json:"transaction_type"`
	TransactionDate  Date            `json:"transaction_date"`
	DisclosureDate   Date            `json:"disclosure_date"`
	AmountMin        decimal.Decimal `json:"amount_min"`
	AmountMax        decimal.Decimal `json:"amount_max"`
	Owner            string          `json:"owner"`
}
