package database

// Column представляет колонку таблицы
type Column struct {
	Name       string
	Type       string
	PrimaryKey bool
}

// Table представляет таблицу с колонками
type Table struct {
	Name    string
	Columns []Column // Порядок сохранён, COPY позиционный
}

// ColumnNames возвращает имена колонок в порядке объявления
func (t Table) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		names = append(names, c.Name)
	}
	return names
}

// Relation представляет внешний ключ между таблицами
type Relation struct {
	ConstraintName string
	SourceTable    string
	SourceColumn   string
	TargetTable    string
	TargetColumn   string
}

// CSVInfo содержит информацию о CSV-файле для таблицы
type CSVInfo struct {
	Table  string
	Path   string
	Header []string
	Rows   int
}

// LoadMode определяет способ загрузки CSV
type LoadMode string

const (
	// LoadModeClient передаёт строки через COPY FROM STDIN
	LoadModeClient LoadMode = "client"
	// LoadModeServer читает файл на стороне сервера (COPY ... FROM '<path>')
	LoadModeServer LoadMode = "server"
)
