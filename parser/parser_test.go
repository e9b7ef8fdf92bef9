package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adventureworks/database"
)

func TestParseSQLSchemaText_AdventureWorks(t *testing.T) {
	tables := ParseSQLSchemaText(database.AdventureWorksDDL)
	require.Len(t, tables, 7)

	names := make([]string, len(tables))
	for i, tbl := range tables {
		names[i] = tbl.Name
	}
	assert.Equal(t, []string{"customer", "territory", "category", "subcategory", "product", "sale", "return"}, names)

	customer := tables[0]
	require.Len(t, customer.Columns, 13)
	assert.Equal(t, database.Column{Name: "customer_key", Type: "INT", PrimaryKey: true}, customer.Columns[0])
	assert.Equal(t, database.Column{Name: "income", Type: "MONEY"}, customer.Columns[8])

	product := tables[4]
	require.Len(t, product.Columns, 11)
	assert.Equal(t, "VARCHAR(300)", product.Columns[5].Type)
	assert.Equal(t, database.Column{Name: "subcategory_key", Type: "INT"}, product.Columns[1])

	sale := tables[5]
	require.Len(t, sale.Columns, 8)
	for _, c := range sale.Columns {
		assert.False(t, c.PrimaryKey, c.Name)
	}
}

func TestParseSQLSchemaText_TableLevelKey(t *testing.T) {
	tables := ParseSQLSchemaText(`
		-- комментарий CREATE TABLE x (a INT);
		CREATE TABLE IF NOT EXISTS line_item (
			order_number VARCHAR(20),
			line INT,
			amount NUMERIC(10,2),
			PRIMARY KEY (order_number, line),
			CONSTRAINT chk CHECK (line > 0)
		);
	`)
	require.Len(t, tables, 1)
	assert.Equal(t, "line_item", tables[0].Name)
	assert.Equal(t, []database.Column{
		{Name: "order_number", Type: "VARCHAR(20)", PrimaryKey: true},
		{Name: "line", Type: "INT", PrimaryKey: true},
		{Name: "amount", Type: "NUMERIC(10,2)"},
	}, tables[0].Columns)
}

func TestParseSQLSchemaText_MultiWordTypes(t *testing.T) {
	tables := ParseSQLSchemaText(`
		CREATE TABLE reading (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			value DOUBLE PRECISION NOT NULL,
			taken_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
			sensor CHARACTER VARYING(20) REFERENCES sensor(code),
			note text COLLATE "C",
			amount MONEY
		);
	`)
	require.Len(t, tables, 1)
	assert.Equal(t, []database.Column{
		{Name: "id", Type: "BIGINT", PrimaryKey: true},
		{Name: "value", Type: "DOUBLE PRECISION"},
		{Name: "taken_at", Type: "TIMESTAMP WITH TIME ZONE"},
		{Name: "sensor", Type: "CHARACTER VARYING(20)"},
		{Name: "note", Type: "TEXT"},
		{Name: "amount", Type: "MONEY"},
	}, tables[0].Columns)
}

func TestParseRelationsText_AdventureWorks(t *testing.T) {
	rels := ParseRelationsText(database.AdventureWorksDDL)
	assert.Equal(t, []database.Relation{
		{ConstraintName: "fk_subcategory_category_key", SourceTable: "subcategory", SourceColumn: "category_key", TargetTable: "category", TargetColumn: "category_key"},
		{ConstraintName: "fk_product_subcategory_key", SourceTable: "product", SourceColumn: "subcategory_key", TargetTable: "subcategory", TargetColumn: "subcategory_key"},
		{ConstraintName: "fk_sale_product_key", SourceTable: "sale", SourceColumn: "product_key", TargetTable: "product", TargetColumn: "product_key"},
		{ConstraintName: "fk_sale_customer_key", SourceTable: "sale", SourceColumn: "customer_key", TargetTable: "customer", TargetColumn: "customer_key"},
		{ConstraintName: "fk_sale_territory_key", SourceTable: "sale", SourceColumn: "territory_key", TargetTable: "territory", TargetColumn: "territory_key"},
		{ConstraintName: "fk_return_territory_key", SourceTable: "return", SourceColumn: "territory_key", TargetTable: "territory", TargetColumn: "territory_key"},
		{ConstraintName: "fk_return_product_key", SourceTable: "return", SourceColumn: "product_key", TargetTable: "product", TargetColumn: "product_key"},
	}, rels)
}

func TestParseRelationsText_AlterTable(t *testing.T) {
	rels := ParseRelationsText(`
		CREATE TABLE a (id INT PRIMARY KEY);
		CREATE TABLE b (id INT PRIMARY KEY, a_id INT);
		ALTER TABLE b ADD CONSTRAINT FK_B_A FOREIGN KEY (a_id) REFERENCES a (id);
	`)
	assert.Equal(t, []database.Relation{
		{ConstraintName: "fk_b_a", SourceTable: "b", SourceColumn: "a_id", TargetTable: "a", TargetColumn: "id"},
	}, rels)
}

func TestParseFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.sql")
	require.NoError(t, os.WriteFile(path, []byte(database.AdventureWorksDDL), 0o600))

	tables, err := ParseSQLSchema(path)
	require.NoError(t, err)
	assert.Len(t, tables, 7)

	rels, err := ParseRelations(path)
	require.NoError(t, err)
	assert.Len(t, rels, 7)

	_, err = ParseSQLSchema(filepath.Join(t.TempDir(), "missing.sql"))
	assert.Error(t, err)
}
