// Package export renders a shopping list as a downloadable document.
package export

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pageza/recipebox/backend/internal/types"
)

type Format string

const (
	FormatText Format = "txt"
	FormatJSON Format = "json"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported names
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat maps a query value to a Format. Empty selects text.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

func (f Format) FileName() string {
	return "shopping_list." + string(f)
}

// Render writes lines in format f. An empty list produces an empty text
// document or an empty JSON array.
func Render(w io.Writer, f Format, lines []types.AggregatedLine) error {
	switch f {
	case FormatJSON:
		if lines == nil {
			lines = []types.AggregatedLine{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(lines)
	case FormatText:
		bw := bufio.NewWriter(w)
		for _, l := range lines {
			if _, err := fmt.Fprintf(bw, "%s (%s) — %d\n", l.IngredientName, l.MeasurementUnit, l.TotalAmount); err != nil {
				return err
			}
		}
		return bw.Flush()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}
