package model

type Vertex struct {
	X int64 `json:"x"`
	Y int64 `json:"y"`
}

// Annotation is one OCR-detected text fragment with its bounding polygon.
// Providers put the full-page annotation first.
type Annotation struct {
	Text     string   `json:"description"`
	Vertices []Vertex `json:"vertices"`
}

type OCRResult struct {
	FullText    string       `json:"extractedText"`
	Annotations []Annotation `json:"annotations"`
}

// Upload is a document submitted for processing.
type Upload struct {
	Filename string
	Data     []byte
}
