package types

// Envelope is the wire shape every endpoint returns. The café frontends
// key off the success flag rather than the HTTP status alone.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Pagination echoes the page window applied to a list response.
type Pagination struct {
	CurrentPage    int   `json:"current_page"`
	TotalRecords   int64 `json:"total_records"`
	TotalPages     int   `json:"total_pages"`
	RecordsPerPage int   `json:"records_per_page"`
}
