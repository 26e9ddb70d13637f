package domain

import "time"

// BusinessRecord is one calendar day of business performance as ingested
// from the business CSV export. Date is the unique key; the business table
// drives the date domain of the combined output.
type BusinessRecord struct {
	Date         time.Time `json:"date" csv:"date"`
	Orders       int64     `json:"orders" csv:"orders" validate:"min=0"`
	NewOrders    int64     `json:"new_orders" csv:"new_orders" validate:"min=0"`
	NewCustomers int64     `json:"new_customers" csv:"new_customers" validate:"min=0"`
	TotalRevenue float64   `json:"total_revenue" csv:"total_revenue" validate:"min=0"`
	GrossProfit  float64   `json:"gross_profit" csv:"gross_profit"`
	COGS         float64   `json:"cogs" csv:"cogs" validate:"min=0"`
}
