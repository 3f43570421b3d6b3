// Package importer reads historical match results from CSV or XLSX spreadsheets.
package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/xuri/excelize/v2"
)

// MaxFileSize caps how much of an upload is read into memory.
const MaxFileSize = 10 << 20

var (
	ErrUnsupportedFormat = errors.New("unsupported file type")
	ErrEmpty             = errors.New("file has no data rows")
	ErrTooLarge          = errors.New("file exceeds the 10 MiB import limit")
)

// Row is one parsed result line. Line is the 1-based spreadsheet row (the header is line 1).
type Row struct {
	Line      int
	Date      time.Time
	TeamAName string
	TeamBName string
	GoalsA    int
	GoalsB    int
}

// RowError points at the offending line and column.
type RowError struct {
	Line    int    `json:"line"`
	Column  string `json:"column"`
	Message string `json:"message"`
}

// ParseError collects every row problem found in a file.
type ParseError struct {
	Rows []RowError
}

func (e *ParseError) Error() string {
	if len(e.Rows) == 0 {
		return "import: invalid file"
	}
	first := e.Rows[0]
	return fmt.Sprintf("import: line %d %s: %s (%d problems)", first.Line, first.Column, first.Message, len(e.Rows))
}

// Parse dispatches on the file extension. Files larger than MaxFileSize are rejected
// with ErrTooLarge; nothing is parsed from a truncated upload.
func Parse(filename string, r io.Reader) ([]Row, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".csv" && ext != ".txt" && ext != ".xlsx" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
	}
	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if len(data) > MaxFileSize {
		return nil, ErrTooLarge
	}
	if ext == ".xlsx" {
		return ParseXLSX(bytes.NewReader(data))
	}
	return ParseCSV(bytes.NewReader(data))
}

// ParseCSV reads comma or semicolon separated values; the delimiter is guessed from the header.
func ParseCSV(r io.Reader) ([]Row, error) {
	br := bufio.NewReader(r)
	first, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	reader := csv.NewReader(io.MultiReader(strings.NewReader(first), br))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	if strings.Count(first, ";") > strings.Count(first, ",") {
		reader.Comma = ';'
	}
	var (
		records [][]string
		lines   []int
	)
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}
		line, _ := reader.FieldPos(0)
		records = append(records, rec)
		lines = append(lines, line)
	}
	return fromRecords(records, lines)
}

// ParseXLSX reads the first sheet of a workbook.
func ParseXLSX(r io.Reader) ([]Row, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("opening xlsx: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrEmpty
	}
	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	return fromRecords(records, nil)
}

const (
	colDate   = "date"
	colTeamA  = "teama"
	colTeamB  = "teamb"
	colGoalsA = "goalsa"
	colGoalsB = "goalsb"
	colResult = "result"
)

var headerAliases = map[string]string{
	"data": colDate, "date": colDate, "dia": colDate,
	"timea": colTeamA, "equipea": colTeamA, "mandante": colTeamA, "casa": colTeamA, "home": colTeamA, "hometeam": colTeamA, "teama": colTeamA,
	"timeb": colTeamB, "equipeb": colTeamB, "visitante": colTeamB, "fora": colTeamB, "away": colTeamB, "awayteam": colTeamB, "teamb": colTeamB,
	"golsa": colGoalsA, "golsmandante": colGoalsA, "goalsa": colGoalsA, "homegoals": colGoalsA,
	"golsb": colGoalsB, "golsvisitante": colGoalsB, "goalsb": colGoalsB, "awaygoals": colGoalsB,
	"placar": colResult, "resultado": colResult, "result": colResult, "score": colResult,
}

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"2006-01-02 15:04",
	"02/01/2006 15:04",
	time.RFC3339,
	"01-02-06",
}

// fromRecords turns raw records into rows. lines holds the source line of each record;
// when nil the record index is used, which matches spreadsheet row numbers.
func fromRecords(records [][]string, lines []int) ([]Row, error) {
	if len(records) == 0 {
		return nil, ErrEmpty
	}
	cols := normHeaders(records[0])
	if perr := checkHeaders(cols); perr != nil {
		return nil, perr
	}

	var (
		out  []Row
		errs []RowError
	)
	for i := 1; i < len(records); i++ {
		rec := records[i]
		if strings.TrimSpace(strings.Join(rec, "")) == "" {
			continue
		}
		line := i + 1
		if lines != nil {
			line = lines[i]
		}
		row, rowErrs := toRow(cols, rec, line)
		if len(rowErrs) > 0 {
			errs = append(errs, rowErrs...)
			continue
		}
		out = append(out, row)
	}
	if len(errs) > 0 {
		return nil, &ParseError{Rows: errs}
	}
	if len(out) == 0 {
		return nil, ErrEmpty
	}
	return out, nil
}

// normHeaders maps canonical column names to their index; unknown columns are ignored.
func normHeaders(hdr []string) map[string]int {
	cols := make(map[string]int, len(hdr))
	for i, h := range hdr {
		if canon, ok := headerAliases[foldKey(h)]; ok {
			if _, dup := cols[canon]; !dup {
				cols[canon] = i
			}
		}
	}
	return cols
}

func checkHeaders(cols map[string]int) error {
	var missing []RowError
	for _, c := range []string{colTeamA, colTeamB} {
		if _, ok := cols[c]; !ok {
			missing = append(missing, RowError{Line: 1, Column: c, Message: "missing column"})
		}
	}
	_, hasA := cols[colGoalsA]
	_, hasB := cols[colGoalsB]
	_, hasResult := cols[colResult]
	if !(hasA && hasB) && !hasResult {
		missing = append(missing, RowError{Line: 1, Column: colResult, Message: "missing score columns (gols_a/gols_b or placar)"})
	}
	if len(missing) > 0 {
		return &ParseError{Rows: missing}
	}
	return nil
}

func toRow(cols map[string]int, rec []string, line int) (Row, []RowError) {
	get := func(col string) string {
		if i, ok := cols[col]; ok && i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}
	var errs []RowError
	fail := func(col, msg string) { errs = append(errs, RowError{Line: line, Column: col, Message: msg}) }

	row := Row{Line: line, TeamAName: get(colTeamA), TeamBName: get(colTeamB)}
	if row.TeamAName == "" {
		fail(colTeamA, "must not be empty")
	}
	if row.TeamBName == "" {
		fail(colTeamB, "must not be empty")
	}
	if row.TeamAName != "" && strings.EqualFold(row.TeamAName, row.TeamBName) {
		fail(colTeamB, "must differ from team A")
	}

	if raw := get(colDate); raw != "" {
		d, ok := parseDate(raw)
		if !ok {
			fail(colDate, fmt.Sprintf("unrecognized date %q", raw))
		}
		row.Date = d
	}

	if res := get(colResult); res != "" {
		a, b, ok := parseResult(res)
		if !ok {
			fail(colResult, fmt.Sprintf("expected N-N, got %q", res))
		}
		row.GoalsA, row.GoalsB = a, b
	} else {
		var ok bool
		if row.GoalsA, ok = parseGoals(get(colGoalsA)); !ok {
			fail(colGoalsA, "must be a non-negative integer")
		}
		if row.GoalsB, ok = parseGoals(get(colGoalsB)); !ok {
			fail(colGoalsB, "must be a non-negative integer")
		}
	}
	return row, errs
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseResult accepts "3-1", "3 x 1" and "3:1".
func parseResult(s string) (int, int, bool) {
	s = strings.ToLower(s)
	for _, sep := range []string{"-", "x", ":"} {
		parts := strings.SplitN(s, sep, 2)
		if len(parts) != 2 {
			continue
		}
		a, okA := parseGoals(parts[0])
		b, okB := parseGoals(parts[1])
		if okA && okB {
			return a, b, true
		}
	}
	return 0, 0, false
}

func parseGoals(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// foldKey lowercases, drops everything but letters and digits and strips Portuguese diacritics.
func foldKey(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(h)) {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		switch r {
		case 'á', 'à', 'â', 'ã':
			r = 'a'
		case 'é', 'ê':
			r = 'e'
		case 'í':
			r = 'i'
		case 'ó', 'ô', 'õ':
			r = 'o'
		case 'ú':
			r = 'u'
		case 'ç':
			r = 'c'
		}
		b.WriteRune(r)
	}
	return b.String()
}
