package domain

// RawDocument is a file as read from disk, before text extraction.
type RawDocument struct {
	// Path is where the file was read from.
	Path string

	// MIMEType is the detected content type (e.g., "text/markdown").
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}
