package transactions

import "time"

// Transaction represents a single product sale record.
type Transaction struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	DateOfSale  time.Time `json:"dateOfSale"`
	Category    string    `json:"category"`
}

// Statistics summarizes the sales of one month.
type Statistics struct {
	TotalSaleAmount float64 `json:"totalSaleAmount"`
	TotalSoldItems  int     `json:"totalSoldItems"`
	// TotalNotSoldItems counts records sold before the month started.
	TotalNotSoldItems int `json:"totalNotSoldItems"`
}

// Bucket is one price band of the histogram.
type Bucket struct {
	BucketLabel string `json:"bucketLabel"`
	Count       int    `json:"count"`
}

// CategoryCount is the number of in-month records carrying a category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// TransactionPage is one page of a transaction search.
type TransactionPage struct {
	Items      []Transaction `json:"items"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	PerPage    int           `json:"perPage"`
	TotalPages int           `json:"totalPages"`
	HasNext    bool          `json:"hasNext"`
	HasPrev    bool          `json:"hasPrev"`
}

// Dashboard bundles everything the month view renders.
type Dashboard struct {
	Transactions []Transaction   `json:"transactions"`
	Statistics   Statistics      `json:"statistics"`
	BarChartData []Bucket        `json:"barChartData"`
	PieChartData []CategoryCount `json:"pieChartData"`
}
