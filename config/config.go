package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"

	"adventureworks/database"
)

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
	Schema   string `yaml:"schema"`
}

type PathsConfig struct {
	CSVDir        string `yaml:"csv_dir"`
	OutputSQLFile string `yaml:"output_sql_file"`
	SchemaFile    string `yaml:"schema_file"`
	ChartsDir     string `yaml:"charts_dir"`
}

type LoadSettings struct {
	Mode         database.LoadMode `yaml:"mode"`
	FilePrefix   string            `yaml:"file_prefix"`
	Tables       map[string]string `yaml:"tables"`
	DropExisting bool              `yaml:"drop_existing"`
	Workers      int               `yaml:"workers"`
}

type ReportConfig struct {
	Limit int `yaml:"limit"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Paths    PathsConfig    `yaml:"paths"`
	Load     LoadSettings   `yaml:"load"`
	Report   ReportConfig   `yaml:"report"`
	Log      LogConfig      `yaml:"log"`
}

// DefaultTableFiles сопоставление таблиц и файлов набора Adventure Works
var DefaultTableFiles = map[string]string{
	"customer":    "Customers",
	"territory":   "Territories",
	"category":    "Product_Categories",
	"subcategory": "Product_Subcategories",
	"product":     "Products",
	"sale":        "Sales",
	"return":      "Returns",
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	tables := make(map[string]string, len(DefaultTableFiles))
	for k, v := range DefaultTableFiles {
		tables[k] = v
	}
	return &Config{
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "postgres",
			DBName:  "postgres",
			SSLMode: "disable",
			Schema:  "public",
		},
		Paths: PathsConfig{
			CSVDir:    ".",
			ChartsDir: ".",
		},
		Load: LoadSettings{
			Mode:         database.LoadModeClient,
			FilePrefix:   "AdventureWorks_",
			Tables:       tables,
			DropExisting: true,
		},
		Report: ReportConfig{Limit: 10},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

func (db *DatabaseConfig) GetConnectionString() string {
	parts := []string{
		"host=" + quoteValue(db.Host),
		"port=" + strconv.Itoa(db.Port),
		"user=" + quoteValue(db.User),
		"dbname=" + quoteValue(db.DBName),
		"sslmode=" + quoteValue(db.SSLMode),
	}
	if db.Password != "" {
		parts = append(parts, "password="+quoteValue(db.Password))
	}
	if db.Schema != "" {
		parts = append(parts, "search_path="+quoteValue(db.Schema))
	}
	return strings.Join(parts, " ")
}

// CSVFiles возвращает пути CSV-файлов по таблицам
func (c *Config) CSVFiles() map[string]string {
	files := make(map[string]string, len(c.Load.Tables))
	for table, stem := range c.Load.Tables {
		files[table] = filepath.Join(c.Paths.CSVDir, c.Load.FilePrefix+stem+".csv")
	}
	return files
}

func (c *Config) Validate() error {
	var errs []error
	if c.Database.Host == "" {
		errs = append(errs, errors.New("database host is required"))
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid database port %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, errors.New("database user is required"))
	}
	if c.Database.DBName == "" {
		errs = append(errs, errors.New("database name is required"))
	}
	if c.Database.Schema == "" {
		errs = append(errs, errors.New("database schema is required"))
	}
	switch c.Load.Mode {
	case database.LoadModeClient, database.LoadModeServer:
	default:
		errs = append(errs, fmt.Errorf("unknown load mode %q", c.Load.Mode))
	}
	if c.Report.Limit <= 0 {
		errs = append(errs, fmt.Errorf("report limit must be positive, got %d", c.Report.Limit))
	}
	return errors.Join(errs...)
}

// LoadConfig читает YAML поверх значений по умолчанию и применяет переменные окружения.
// Пустой path означает только значения по умолчанию и окружение.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfigFile имя файла конфигурации, который ищется в рабочем каталоге
const DefaultConfigFile = "config.yaml"

// GetDefaultConfigPath возвращает путь к config.yaml в рабочем каталоге
// или пустую строку, если такого файла нет
func GetDefaultConfigPath() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	path := filepath.Join(dir, DefaultConfigFile)
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return ""
	}
	return path
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"AW_DB_HOST":     &cfg.Database.Host,
		"AW_DB_USER":     &cfg.Database.User,
		"AW_DB_PASSWORD": &cfg.Database.Password,
		"AW_DB_NAME":     &cfg.Database.DBName,
		"AW_DB_SSLMODE":  &cfg.Database.SSLMode,
		"AW_DB_SCHEMA":   &cfg.Database.Schema,
		"AW_CSV_DIR":     &cfg.Paths.CSVDir,
	}
	for key, dst := range str {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	if v, ok := lookup("AW_DB_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid AW_DB_PORT %q: %w", v, err)
		}
		cfg.Database.Port = port
	}
	return nil
}

// quoteValue экранирует значение для key/value DSN lib/pq
func quoteValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}
