package parser

import (
	"os"
	"regexp"
	"strings"

	"adventureworks/database"
)

var (
	reTable   = regexp.MustCompile(`(?is)CREATE TABLE\s+(?:IF NOT EXISTS\s+)?(\w+)\s*\((.*?)\)\s*;`)
	reCol     = regexp.MustCompile(`(?i)^([A-Za-z_]\w*)\s+(.+)$`)
	reColOpt  = regexp.MustCompile(`(?i)\s\b(?:PRIMARY|REFERENCES|NOT|NULL|DEFAULT|UNIQUE|CHECK|CONSTRAINT|COLLATE|GENERATED)\b`)
	reTablePK = regexp.MustCompile(`(?i)^PRIMARY KEY\s*\(([^)]*)\)`)
)

// ParseSQLSchema парсит CREATE TABLE из SQL файла
func ParseSQLSchema(path string) ([]database.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSQLSchemaText(string(data)), nil
}

// ParseSQLSchemaText парсит CREATE TABLE из текста DDL, порядок таблиц и колонок сохраняется
func ParseSQLSchemaText(text string) []database.Table {
	var tables []database.Table
	for _, m := range reTable.FindAllStringSubmatch(stripComments(text), -1) {
		t := database.Table{Name: strings.ToLower(m[1])}
		var tablePK []string

		for _, line := range splitDefinitions(m[2]) {
			upper := strings.ToUpper(line)
			if line == "" {
				continue
			}
			if strings.HasPrefix(upper, "PRIMARY KEY") {
				if caps := reTablePK.FindStringSubmatch(line); caps != nil {
					for _, name := range strings.Split(caps[1], ",") {
						tablePK = append(tablePK, strings.ToLower(strings.TrimSpace(name)))
					}
				}
				continue
			}
			if strings.HasPrefix(upper, "CONSTRAINT") ||
				strings.HasPrefix(upper, "FOREIGN KEY") ||
				strings.HasPrefix(upper, "UNIQUE") {
				continue
			}
			if caps := reCol.FindStringSubmatch(line); caps != nil {
				t.Columns = append(t.Columns, database.Column{
					Name:       strings.ToLower(caps[1]),
					Type:       strings.ToUpper(caps[2]),
					PrimaryKey: strings.Contains(upper, "PRIMARY KEY"),
				})
			}
		}

		for _, pk := range tablePK {
			for i := range t.Columns {
				if t.Columns[i].Name == pk {
					t.Columns[i].PrimaryKey = true
				}
			}
		}
		tables = append(tables, t)
	}
	return tables
}

// columnType отрезает ограничения колонки, тип может состоять из нескольких слов
func columnType(def string) string {
	if loc := reColOpt.FindStringIndex(def); loc != nil {
		def = def[:loc[0]]
	}
	return strings.ToUpper(strings.TrimSpace(def))
}

// stripComments удаляет однострочные комментарии "--"
func stripComments(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if idx := strings.Index(line, "--"); idx >= 0 {
			lines[i] = line[:idx]
		}
	}
	return strings.Join(lines, "\n")
}

// splitDefinitions делит тело CREATE TABLE на определения по запятым верхнего уровня
func splitDefinitions(block string) []string {
	var defs []string
	depth, start := 0, 0
	for i, r := range block {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				defs = append(defs, strings.Join(strings.Fields(block[start:i]), " "))
				start = i + 1
			}
		}
	}
	defs = append(defs, strings.Join(strings.Fields(block[start:]), " "))

	out := defs[:0]
	for _, d := range defs {
		if d != "" {
			out = append(out, d)
		}
	}
	return out
}
