package parser

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/lfmonteiro/statusdeck/internal/models"
)

// ReportParser extracts a canonical report from a raw document byte stream.
// Implementations are stateless beyond shared compiled patterns: the same
// bytes always produce the same report, and concurrent calls are safe.
type ReportParser interface {
	Parse(content []byte) (*models.ParsedReport, error)
}

// ErrUnreadableDocument wraps any low-level reader failure. Format readers
// must never let raw library errors or panics escape to callers.
var ErrUnreadableDocument = errors.New("document could not be read")

// Factory resolves a format parser from a declared project type and a file
// name's extension. It holds only read-only shared configuration and
// performs no I/O.
type Factory struct {
	patterns *Patterns
}

// NewFactory creates a factory using the given compiled pattern set, or the
// built-in weekly-status template when nil.
func NewFactory(patterns *Patterns) *Factory {
	if patterns == nil {
		patterns = MustDefaultPatterns()
	}
	return &Factory{patterns: patterns}
}

// Get returns the parser for (filename extension, business area), or
// ok=false when the combination is unsupported. Callers surface ok=false as
// "unsupported file for this project type", not as an error.
func (f *Factory) Get(filename string, area models.BusinessArea) (ReportParser, bool) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch area {
	case models.AreaTech:
		switch ext {
		case ".pdf":
			return &ITPDFParser{pats: f.patterns}, true
		case ".docx":
			return &ITDocxParser{pats: f.patterns}, true
		}
	case models.AreaRetail:
		switch ext {
		case ".xlsx", ".xlsm":
			return &RetailXLSXParser{pats: f.patterns}, true
		}
	}
	// HR and Marketing templates are not defined yet.
	return nil, false
}
