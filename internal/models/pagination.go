package models

// PaginationMetadata describes the page window of a ledger query.
type PaginationMetadata struct {
	CurrentPage   int  `json:"currentPage"`
	PageSize      int  `json:"pageSize"`
	TotalElements int  `json:"totalElements"`
	TotalPages    int  `json:"totalPages"`
	HasNext       bool `json:"hasNext"`
	HasPrevious   bool `json:"hasPrevious"`
}

// PagedTransactionResponse is the body of GET /transactions/{cardId}.
type PagedTransactionResponse struct {
	Metadata     PaginationMetadata `json:"metadata"`
	Transactions []Transaction      `json:"transactions"`
}
