package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServerCopyQuery(t *testing.T) {
	table := Table{Name: "return", Columns: []Column{{Name: "return_date"}, {Name: "territory_key"}}}
	assert.Equal(t,
		`COPY "adventure_works"."return" FROM '/data/AdventureWorks_Returns.csv' `+
			`WITH (FORMAT csv, HEADER true, DELIMITER ',', FORCE_NULL ("return_date", "territory_key"))`,
		serverCopyQuery(table, "/data/AdventureWorks_Returns.csv", "adventure_works"),
	)
	assert.Contains(t, serverCopyQuery(table, "/data/o'brien.csv", "aw"), `FROM '/data/o''brien.csv' WITH`)
}
