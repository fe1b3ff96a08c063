// Package registry loads the building registry and the vendor alias map
// from the formats property managers actually hand over: CSV exports,
// XLSX workbooks, and a small SQLite database.
package registry

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
	_ "modernc.org/sqlite"

	"github.com/postbeschriftung/extraction/internal/entity"
)

// header names accepted for each registry column, lowercased. German
// exports and English re-exports of the same sheet both occur in the wild.
var columnAliases = map[string][]string{
	"object_number":      {"object_number", "objektnummer", "objekt", "objektnr", "nr"},
	"building_name":      {"building_name", "gebaeude", "gebäude", "name", "bezeichnung"},
	"street":             {"street", "strasse", "straße", "adresse"},
	"postal_code":        {"postal_code", "plz"},
	"city":               {"city", "ort", "stadt"},
	"aliases":            {"aliases", "aliase", "kurznamen"},
	"management_contact": {"management_contact", "verwaltung", "verwaltung_kontakt", "hausverwaltung"},
	"accounting_contact": {"accounting_contact", "buchhaltung", "buchhaltung_kontakt"},
}

// LoadRegistryCSV reads a building registry from a CSV file. The first
// row must be a header; both comma and semicolon delimiters are accepted.
func LoadRegistryCSV(path string) ([]entity.BuildingRegistryEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open registry csv: %w", err)
	}
	defer f.Close()
	return ParseRegistryCSV(f)
}

// ParseRegistryCSV parses registry rows from r. See LoadRegistryCSV.
func ParseRegistryCSV(r io.Reader) ([]entity.BuildingRegistryEntry, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("read registry csv: %w", err)
	}

	cr := csvReader(br, detectDelimiter(head))
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse registry csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("registry csv: empty file")
	}

	cols, err := mapColumns(rows[0])
	if err != nil {
		return nil, err
	}

	var entries []entity.BuildingRegistryEntry
	for _, row := range rows[1:] {
		e := entryFromRow(row, cols)
		if e.ObjectNumber == "" {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// LoadRegistryXLSX reads a building registry from the first sheet of an
// XLSX workbook. Row 1 is the header, mapped like the CSV variant.
func LoadRegistryXLSX(path string) ([]entity.BuildingRegistryEntry, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open registry xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("registry xlsx: no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("registry xlsx: read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("registry xlsx: empty sheet")
	}

	cols, err := mapColumns(rows[0])
	if err != nil {
		return nil, err
	}

	var entries []entity.BuildingRegistryEntry
	for _, row := range rows[1:] {
		e := entryFromRow(row, cols)
		if e.ObjectNumber == "" {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// OpenRegistryDB opens a SQLite registry database at path.
func OpenRegistryDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open registry db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping registry db: %w", err)
	}
	return db, nil
}

// LoadRegistrySQL reads all buildings and their aliases from db. The
// expected schema is a buildings table plus a building_aliases table
// keyed by object_number.
func LoadRegistrySQL(ctx context.Context, db *sql.DB) ([]entity.BuildingRegistryEntry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT object_number, building_name, street, postal_code, city,
		       management_contact, accounting_contact
		FROM buildings
		ORDER BY object_number`)
	if err != nil {
		return nil, fmt.Errorf("query buildings: %w", err)
	}
	defer rows.Close()

	var entries []entity.BuildingRegistryEntry
	byNumber := make(map[string]int)
	for rows.Next() {
		var e entity.BuildingRegistryEntry
		var mgmt, acct sql.NullString
		if err := rows.Scan(&e.ObjectNumber, &e.BuildingName, &e.Street,
			&e.PostalCode, &e.City, &mgmt, &acct); err != nil {
			return nil, fmt.Errorf("scan building: %w", err)
		}
		e.ManagementContact = mgmt.String
		e.AccountingContact = acct.String
		byNumber[e.ObjectNumber] = len(entries)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate buildings: %w", err)
	}

	arows, err := db.QueryContext(ctx, `SELECT object_number, alias FROM building_aliases`)
	if err != nil {
		return nil, fmt.Errorf("query building aliases: %w", err)
	}
	defer arows.Close()

	for arows.Next() {
		var num, alias string
		if err := arows.Scan(&num, &alias); err != nil {
			return nil, fmt.Errorf("scan alias: %w", err)
		}
		if i, ok := byNumber[num]; ok && alias != "" {
			entries[i].Aliases = append(entries[i].Aliases, alias)
		}
	}
	if err := arows.Err(); err != nil {
		return nil, fmt.Errorf("iterate aliases: %w", err)
	}
	return entries, nil
}

// LoadVendorAliases reads a JSON object mapping alias keys to canonical
// vendor names. Keys are lowercased; matching is case-insensitive anyway.
func LoadVendorAliases(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vendor aliases: %w", err)
	}
	var m map[string]string
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse vendor aliases: %w", err)
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		out[k] = v
	}
	return out, nil
}

func csvReader(r io.Reader, comma rune) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = comma
	// rows may omit trailing columns
	cr.FieldsPerRecord = -1
	return cr
}

func detectDelimiter(head []byte) rune {
	line, _, _ := strings.Cut(string(head), "\n")
	if strings.Count(line, ";") > strings.Count(line, ",") {
		return ';'
	}
	return ','
}

func mapColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int)
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")))
		for canonical, names := range columnAliases {
			for _, n := range names {
				if h == n {
					if _, seen := cols[canonical]; !seen {
						cols[canonical] = i
					}
				}
			}
		}
	}
	if _, ok := cols["object_number"]; !ok {
		return nil, fmt.Errorf("registry header: missing object number column")
	}
	return cols, nil
}

func entryFromRow(row []string, cols map[string]int) entity.BuildingRegistryEntry {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	e := entity.BuildingRegistryEntry{
		ObjectNumber:      get("object_number"),
		BuildingName:      get("building_name"),
		Street:            get("street"),
		PostalCode:        get("postal_code"),
		City:              get("city"),
		ManagementContact: get("management_contact"),
		AccountingContact: get("accounting_contact"),
	}
	if raw := get("aliases"); raw != "" {
		for _, a := range strings.FieldsFunc(raw, func(r rune) bool { return r == ';' || r == '|' }) {
			a = strings.TrimSpace(a)
			if a != "" {
				e.Aliases = append(e.Aliases, a)
			}
		}
	}
	return e
}
