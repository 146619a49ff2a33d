package constants

import "strings"

// FileFormat is the coarse document kind used to route OCR.
type FileFormat string

const (
	FormatPDF   FileFormat = "PDF"
	FormatImage FileFormat = "IMAGE"
)

// AllowedExtensions holds the file extensions accepted for invoice processing.
var AllowedExtensions = map[string]FileFormat{
	"pdf":  FormatPDF,
	"jpg":  FormatImage,
	"jpeg": FormatImage,
	"png":  FormatImage,
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// FormatForExt reports the format for an extension (with or without the dot).
func FormatForExt(ext string) (FileFormat, bool) {
	f, ok := AllowedExtensions[NormalizeExt(ext)]
	return f, ok
}
