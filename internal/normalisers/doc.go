// Package normalisers turns files into the plain text that is chunked and
// embedded. The Registry selects a normaliser by MIME type, detected from
// the file extension.
package normalisers
