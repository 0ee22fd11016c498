package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/loan-workbench/internal/core/domain"
)

// OverlayFile models an operator-supplied catalog extension:
//
//	stages:
//	  Flood Certificate: Closing
//	lenders:
//	  - name: Kiavi
//	    overrides:
//	      - id: Payoff Statement
//	        required: true
//	    requirements:
//	      - id: Flood Certificate
//	        category: Closing
//	        required: true
type OverlayFile struct {
	Stages  map[string]string `yaml:"stages"`
	Lenders []LenderOverlay   `yaml:"lenders"`
}

func ParseOverlay(data []byte) (OverlayFile, error) {
	var out OverlayFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&out); err != nil {
		if errors.Is(err, io.EOF) {
			return OverlayFile{}, nil
		}
		return OverlayFile{}, domain.WrapError(domain.ErrInvalidInput, "parse catalog overlay", err)
	}
	return out, nil
}

// LoadFile merges the overlay at path into base. An empty path returns base unchanged.
func LoadFile(base *Catalog, path string) (*Catalog, error) {
	if path == "" {
		return base, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog overlay: %w", err)
	}
	overlay, err := ParseOverlay(raw)
	if err != nil {
		return nil, err
	}
	return base.Merge(overlay.Lenders, overlay.Stages)
}
