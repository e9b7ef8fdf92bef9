package parser

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"adventureworks/database"
)

var (
	reRel = regexp.MustCompile(
		`(?i)ALTER TABLE\s+(\w+)\s+ADD CONSTRAINT\s+(\w+)\s+FOREIGN KEY\s*\(\s*(\w+)\s*\)\s+REFERENCES\s+(\w+)\s*\(\s*(\w+)\s*\)`,
	)
	reInlineRef = regexp.MustCompile(
		`(?i)^([A-Za-z_]\w*)\s+.*?\bREFERENCES\s+(\w+)\s*\(\s*(\w+)\s*\)`,
	)
)

// ParseRelations парсит внешние ключи из SQL файла
func ParseRelations(path string) ([]database.Relation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseRelationsText(string(data)), nil
}

// ParseRelationsText парсит inline REFERENCES внутри CREATE TABLE и ALTER TABLE с внешними ключами
func ParseRelationsText(text string) []database.Relation {
	text = stripComments(text)

	var rels []database.Relation
	for _, m := range reTable.FindAllStringSubmatch(text, -1) {
		table := strings.ToLower(m[1])
		for _, line := range splitDefinitions(m[2]) {
			upper := strings.ToUpper(line)
			if strings.HasPrefix(upper, "FOREIGN KEY") || strings.HasPrefix(upper, "CONSTRAINT") {
				continue
			}
			caps := reInlineRef.FindStringSubmatch(line)
			if caps == nil {
				continue
			}
			col := strings.ToLower(caps[1])
			rels = append(rels, database.Relation{
				ConstraintName: fmt.Sprintf("fk_%s_%s", table, col),
				SourceTable:    table,
				SourceColumn:   col,
				TargetTable:    strings.ToLower(caps[2]),
				TargetColumn:   strings.ToLower(caps[3]),
			})
		}
	}

	for _, m := range reRel.FindAllStringSubmatch(text, -1) {
		rels = append(rels, database.Relation{
			ConstraintName: strings.ToLower(m[2]),
			SourceTable:    strings.ToLower(m[1]),
			SourceColumn:   strings.ToLower(m[3]),
			TargetTable:    strings.ToLower(m[4]),
			TargetColumn:   strings.ToLower(m[5]),
		})
	}
	return rels
}
