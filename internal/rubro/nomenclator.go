// Package rubro maps free-text line categories onto the rubro catalog.
package rubro

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/invoice-tracker/constants"
	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/entity"
)

// Nomenclator is the read-only rubro catalog, indexed by code and by
// lowercased name. Safe for concurrent reads once built.
type Nomenclator struct {
	byCode map[string]entity.RubroNomenclatorEntry
	byName map[string]entity.RubroNomenclatorEntry
}

// NewNomenclator indexes entries, skipping rows with an empty code or name.
// Later rows win on duplicate keys.
func NewNomenclator(entries []entity.RubroNomenclatorEntry) *Nomenclator {
	n := &Nomenclator{
		byCode: make(map[string]entity.RubroNomenclatorEntry, len(entries)),
		byName: make(map[string]entity.RubroNomenclatorEntry, len(entries)),
	}
	for _, e := range entries {
		if e.Code == "" || e.Name == "" {
			continue
		}
		n.byCode[e.Code] = e
		n.byName[strings.ToLower(e.Name)] = e
	}
	return n
}

// Lookup matches raw against entry names, ignoring case.
func (n *Nomenclator) Lookup(raw string) (entity.RubroNomenclatorEntry, bool) {
	if n == nil {
		return entity.RubroNomenclatorEntry{}, false
	}
	e, ok := n.byName[strings.ToLower(raw)]
	return e, ok
}

// ByCode returns the entry with the given code.
func (n *Nomenclator) ByCode(code string) (entity.RubroNomenclatorEntry, bool) {
	if n == nil {
		return entity.RubroNomenclatorEntry{}, false
	}
	e, ok := n.byCode[code]
	return e, ok
}

// Len reports how many entries are indexed by code.
func (n *Nomenclator) Len() int {
	if n == nil {
		return 0
	}
	return len(n.byCode)
}

// LoadFile loads a nomenclator from a .csv or .xlsx file.
func LoadFile(path string) (*Nomenclator, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open nomenclator: %w", err)
	}
	defer f.Close()

	switch constants.NormalizeExt(filepath.Ext(path)) {
	case "csv":
		return LoadCSV(f)
	case "xlsx":
		return LoadXLSX(f)
	default:
		return nil, common.ConfigError(fmt.Sprintf("unsupported nomenclator file %q (want .csv or .xlsx)", path))
	}
}

// LoadCSV reads a table whose header row names "code" and "name" columns.
func LoadCSV(r io.Reader) (*Nomenclator, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return NewNomenclator(nil), nil
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	codeIdx, nameIdx, err := columns(header)
	if err != nil {
		return nil, err
	}

	var entries []entity.RubroNomenclatorEntry
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		entries = append(entries, entryAt(rec, codeIdx, nameIdx))
	}
	return NewNomenclator(entries), nil
}

// LoadXLSX reads the first sheet of a workbook with the same layout as LoadCSV.
func LoadXLSX(r io.Reader) (*Nomenclator, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return NewNomenclator(nil), nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read xlsx rows: %w", err)
	}
	if len(rows) == 0 {
		return NewNomenclator(nil), nil
	}
	codeIdx, nameIdx, err := columns(rows[0])
	if err != nil {
		return nil, err
	}

	entries := make([]entity.RubroNomenclatorEntry, 0, len(rows)-1)
	for _, rec := range rows[1:] {
		entries = append(entries, entryAt(rec, codeIdx, nameIdx))
	}
	return NewNomenclator(entries), nil
}

func columns(header []string) (codeIdx, nameIdx int, err error) {
	codeIdx, nameIdx = -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "code":
			codeIdx = i
		case "name":
			nameIdx = i
		}
	}
	if codeIdx < 0 || nameIdx < 0 {
		return 0, 0, common.ConfigError("nomenclator header must contain code and name columns")
	}
	return codeIdx, nameIdx, nil
}

func entryAt(rec []string, codeIdx, nameIdx int) entity.RubroNomenclatorEntry {
	var e entity.RubroNomenclatorEntry
	if codeIdx < len(rec) {
		e.Code = strings.TrimSpace(rec[codeIdx])
	}
	if nameIdx < len(rec) {
		e.Name = strings.TrimSpace(rec[nameIdx])
	}
	return e
}
