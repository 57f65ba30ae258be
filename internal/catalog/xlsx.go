package catalog

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/playperu/resultboard/internal/resultboard"
)

// headerScanRows bounds how far down the sheet the header row is searched for.
const headerScanRows = 10

var (
	spaceRun = regexp.MustCompile(`\s+`)
	nonSlug  = regexp.MustCompile(`[^a-z0-9-]`)
)

// column is one resolved sheet column. group is the upper label of a two-row
// header ("Candidate", "Result") and is empty for single-row headers.
type column struct {
	group string
	field string
	index int
}

// lookup names the labels a logical field may appear under.
type lookup struct {
	groups []string
	fields []string
}

var (
	colProgram  = lookup{groups: []string{"program"}, fields: []string{"program_name", "program name", "program", "event", "item"}}
	colSection  = lookup{groups: []string{"program"}, fields: []string{"section", "category", "group"}}
	colPosition = lookup{groups: []string{"result", "results"}, fields: []string{"position", "place", "rank", "pos"}}
	colGrade    = lookup{groups: []string{"result", "results"}, fields: []string{"grade", "class"}}
	colName     = lookup{groups: []string{"candidate", "candidates"}, fields: []string{"name", "athlete", "competitor"}}
	colTeam     = lookup{groups: []string{"candidate", "candidates"}, fields: []string{"team", "house", "school", "club"}}
	colChest    = lookup{groups: []string{"candidate", "candidates"}, fields: []string{"chest_no", "chest no", "chest no.", "chest", "bib"}}
	colPhoto    = lookup{groups: []string{"candidate", "candidates"}, fields: []string{"photo_url", "photo", "image", "pic"}}
)

// LoadXLSX builds a catalog from the first sheet of a results workbook.
//
// The header is either a single row of field names or two rows where the
// upper one groups columns under Program, Candidate and Result. Program name
// and section are filled down across blank cells, so merged program cells
// work. Program keys are derived from name and section.
func LoadXLSX(r io.Reader) (*Catalog, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}

	cols, first, err := parseHeader(rows)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheets[0], err)
	}
	programs, results := parseRows(cols, rows[first:])
	return New(programs, results)
}

func parseHeader(rows [][]string) ([]column, int, error) {
	at := -1
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		if isHeader(rows[i]) {
			at = i
			break
		}
	}
	if at < 0 {
		return nil, 0, errors.New("no header row mentioning a program column")
	}

	top := rows[at]
	grouped := at+1 < len(rows) && hasCell(top, "candidate", "candidates", "result", "results")
	if !grouped {
		cols := make([]column, len(top))
		for i, label := range top {
			cols[i] = column{field: strings.TrimSpace(label), index: i}
		}
		return cols, at + 1, nil
	}

	bottom := rows[at+1]
	width := max(len(top), len(bottom))
	cols := make([]column, width)
	group := ""
	for i := range width {
		if i < len(top) && strings.TrimSpace(top[i]) != "" {
			group = strings.TrimSpace(top[i])
		}
		cols[i] = column{group: group, field: strings.TrimSpace(cell(bottom, i)), index: i}
	}
	return cols, at + 2, nil
}

func parseRows(cols []column, rows [][]string) ([]resultboard.Program, map[string][]resultboard.Result) {
	var (
		programs []resultboard.Program
		results  = map[string][]resultboard.Result{}
		name     string
		section  string
	)

	for _, row := range rows {
		if v := field(cols, row, colProgram); v != "" {
			name = v
		}
		if v := field(cols, row, colSection); v != "" {
			section = v
		}
		if name == "" {
			continue
		}

		key := inferKey(name, section)
		if _, ok := results[key]; !ok {
			programs = append(programs, resultboard.Program{Key: key, ProgramName: name, Section: section})
			results[key] = []resultboard.Result{}
		}

		res := resultboard.Result{
			Grade:   dash(field(cols, row, colGrade)),
			Name:    field(cols, row, colName),
			Team:    field(cols, row, colTeam),
			ChestNo: dash(field(cols, row, colChest)),
		}
		if res.Name == "" && res.ChestNo == "" {
			continue
		}
		if photo := field(cols, row, colPhoto); photo != "" {
			res.PhotoURL = &photo
		}
		res.Position, _ = strconv.Atoi(field(cols, row, colPosition))
		if res.Position < 1 {
			res.Position = len(results[key]) + 1
		}
		results[key] = append(results[key], res)
	}

	return programs, results
}

// field returns the trimmed value of the first column matching l. Matching
// tries exact labels, then labels with whitespace removed, then substrings.
func field(cols []column, row []string, l lookup) string {
	matchers := []func(label, want string) bool{
		func(label, want string) bool { return label == want },
		func(label, want string) bool { return squash(label) == squash(want) },
		func(label, want string) bool { return strings.Contains(label, want) },
	}

	for _, match := range matchers {
		for _, c := range cols {
			if !inGroup(c.group, l.groups) {
				continue
			}
			label := strings.ToLower(c.field)
			if label == "" {
				continue
			}
			for _, want := range l.fields {
				if match(label, want) {
					return strings.TrimSpace(cell(row, c.index))
				}
			}
		}
	}
	return ""
}

func inGroup(group string, groups []string) bool {
	if group == "" {
		return true
	}
	g := squash(group)
	for _, want := range groups {
		if g == want {
			return true
		}
	}
	return false
}

// inferKey slugs name and section into a stable program key.
func inferKey(name, section string) string {
	return slug(name) + "__" + slug(section)
}

func slug(s string) string {
	s = spaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	return nonSlug.ReplaceAllString(s, "")
}

func squash(s string) string {
	return spaceRun.ReplaceAllString(strings.ToLower(s), "")
}

func dash(s string) string {
	if s == "-" {
		return ""
	}
	return s
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// isHeader reports whether row mentions a program column. Single-cell rows
// are sheet titles and never headers.
func isHeader(row []string) bool {
	var filled int
	var program bool
	for _, v := range row {
		if strings.TrimSpace(v) == "" {
			continue
		}
		filled++
		if strings.Contains(strings.ToLower(v), "program") {
			program = true
		}
	}
	return program && filled > 1
}

func hasCell(row []string, wants ...string) bool {
	for _, v := range row {
		v = squash(v)
		for _, w := range wants {
			if v == w {
				return true
			}
		}
	}
	return false
}
