package models

// Product is one listing from the new-products page. Fields hold the
// trimmed text of the matching element; Price is not parsed.
type Product struct {
	Name   string `json:"name"`
	Price  string `json:"price"`
	Region string `json:"region"`
}

// Campaign is a link to a running campaign page.
type Campaign struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}
