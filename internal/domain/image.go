package domain

// CropRegion is a rectangle in image pixel coordinates
type CropRegion struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// IsEmpty reports whether the region selects nothing (meaning: use the whole image)
func (r CropRegion) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// ExtractionRequest is the input handed to the OCR collaborator
type ExtractionRequest struct {
	Image    []byte // JPEG encoded
	Language string
}
