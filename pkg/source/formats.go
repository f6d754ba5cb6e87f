package source

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// FileFormat represents the kinds of documents that can be scanned
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatPython             // Python source
	FormatText               // any other plain text
)

// FormatInfo contains metadata about a document format
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatPython: {
		Format:      FormatPython,
		Description: "Python Source",
		Extensions:  []string{".py", ".pyw", ".pyi"},
	},
	FormatText: {
		Format:      FormatText,
		Description: "Plain Text",
		Extensions:  []string{".txt", ".ipy", ".md", ""},
	},
}

// sniffSize is how much of a file is inspected for binary content.
const sniffSize = 1024

// DetectFileFormat guesses the format from the file extension.
// Unknown extensions are treated as plain text; content is validated separately.
func DetectFileFormat(filename string) FileFormat {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, format := range []FileFormat{FormatPython, FormatText} {
		for _, e := range supportedFormats[format].Extensions {
			if ext == e {
				return format
			}
		}
	}
	return FormatText
}

// ValidateTextFile checks that filename is a regular file whose first
// bytes look like text (no NUL bytes).
func ValidateTextFile(filename string) error {
	info, err := os.Stat(filename)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", filename)
	}

	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	buffer := make([]byte, sniffSize)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return err
	}
	if bytes.IndexByte(buffer[:n], 0) >= 0 {
		return fmt.Errorf("%s looks like a binary file", filename)
	}

	log.Debugf("Text file %s validated (%s)", filename, GetFormatInfo(DetectFileFormat(filename)).Description)
	return nil
}

// GetFormatInfo returns information about a specific format
func GetFormatInfo(format FileFormat) FormatInfo {
	if info, ok := supportedFormats[format]; ok {
		return info
	}
	return FormatInfo{Format: FormatUnknown, Description: "Unknown"}
}
