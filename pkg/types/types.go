package types

// SearchResult is one candidate image returned by a search provider.
// It is not part of any scene until added as an image object.
type SearchResult struct {
	ID            int    `json:"id"`
	PreviewURL    string `json:"previewURL"`
	LargeImageURL string `json:"largeImageURL"`
	Tags          string `json:"tags"`
	PageURL       string `json:"pageURL,omitempty"`
	ImageWidth    int    `json:"imageWidth,omitempty"`
	ImageHeight   int    `json:"imageHeight,omitempty"`
	User          string `json:"user,omitempty"`
}

// ExportConfig defines the raster encoding used when exporting a scene
type ExportConfig struct {
	Format  string
	Quality float64
}
