package models

// LatestInfo is the response for GET /api/v1/latest-info.
type LatestInfo struct {
	Products  []Product  `json:"products"`
	Campaigns []Campaign `json:"campaigns"`

	// Error is set only on failure; Products and Campaigns are then empty.
	Error *ErrorDetail `json:"error,omitempty"`
}

// ProductsResponse is the response for GET /api/v1/products.
type ProductsResponse struct {
	Success  bool      `json:"success"`
	Products []Product `json:"products"`

	// CacheStatus is "hit" or "miss".
	CacheStatus string `json:"cache_status,omitempty"`

	// EngineUsed is the fetch engine that produced the page ("http", "rod").
	EngineUsed string `json:"engine_used,omitempty"`

	Error *ErrorDetail `json:"error,omitempty"`
}

// SaveTextRequest is the payload for POST /api/v1/save-text.
type SaveTextRequest struct {
	Text string `json:"text"`
}

// SaveTextResponse is the response for POST /api/v1/save-text.
type SaveTextResponse struct {
	OK    bool   `json:"ok,omitempty"`
	Error string `json:"error,omitempty"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Engine  string `json:"engine"`
	Version string `json:"version"`
}

// ErrorResponse is returned by middleware that rejects a request.
type ErrorResponse struct {
	Success bool         `json:"success"`
	Error   *ErrorDetail `json:"error"`
}
