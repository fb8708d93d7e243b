// Package journal records evictions and sweeps into a SQLite database so that
// a run can be inspected after it ends.
package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/fatih/structs"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// Table names.
const (
	TableEvictions = "evictions"
	TableSweeps    = "sweeps"
	TableExecInfo  = "exec_info"
)

const defaultBatchSize = 10000

type table struct {
	structType reflect.Type
	entries    []any
}

// A Recorder buffers rows and writes them into SQLite in batches.
type Recorder struct {
	*sql.DB

	filename   string
	tables     map[string]*table
	tableOrder []string
	batchSize  int
	entryCount int
}

// New creates a database at path + ".sqlite3" with the journal tables. An
// empty path picks a unique name. It fails if the file already exists.
// Buffered rows are flushed when the program exits through atexit.
func New(path string) (*Recorder, error) {
	if path == "" {
		path = "chesttrack_journal_" + xid.New().String()
	}

	filename := strings.TrimSuffix(path, ".sqlite3") + ".sqlite3"

	if _, err := os.Stat(filename); err == nil {
		return nil, fmt.Errorf("journal %s already exists", filename)
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", filename, err)
	}

	r := NewWithDB(db)
	r.filename = filename

	if err := r.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	atexit.Register(func() { _ = r.Flush() })

	return r, nil
}

// NewWithDB creates a recorder on an open database. The tables are not
// created.
func NewWithDB(db *sql.DB) *Recorder {
	return &Recorder{
		DB:        db,
		batchSize: defaultBatchSize,
		tables:    make(map[string]*table),
	}
}

// Filename returns the database file, if the recorder created one.
func (r *Recorder) Filename() string {
	return r.filename
}

// WithBatchSize sets the number of buffered rows that triggers a flush.
func (r *Recorder) WithBatchSize(n int) *Recorder {
	if n <= 0 {
		panic("batch size must be positive")
	}

	r.batchSize = n

	return r
}

func (r *Recorder) createTables() error {
	if err := r.CreateTable(TableEvictions, EvictionRow{}); err != nil {
		return err
	}

	if err := r.CreateTable(TableSweeps, SweepRow{}); err != nil {
		return err
	}

	return r.CreateTable(TableExecInfo, ExecInfo{})

	return nil
}

func isAllowedKind(kind reflect.Kind) bool {
	switch kind {
	case
		reflect.Bool,
		reflect.Int,
		reflect.Int8,
		reflect.Int16,
		reflect.Int32,
		reflect.Int64,
		reflect.Uint,
		reflect.Uint8,
		reflect.Uint16,
		reflect.Uint32,
		reflect.Uint64,
		reflect.Float32,
		reflect.Float64,
		reflect.String:
		return true
	default:
		return false
	}
}

func checkStructFields(entry any) error {
	t := reflect.TypeOf(entry)
	if t.Kind() != reflect.Struct {
		return errors.New("entry must be a struct")
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !isAllowedKind(field.Type.Kind()) {
			return fmt.Errorf("field %s of %s has unsupported type %s",
				field.Name, t.Name(), field.Type)
		}
	}

	return nil
}

// CreateTable creates a table whose columns are the fields of sampleEntry.
func (r *Recorder) CreateTable(tableName string, sampleEntry any) error {
	if err := checkStructFields(sampleEntry); err != nil {
		return fmt.Errorf("creating table %s: %w", tableName, err)
	}

	fields := strings.Join(structs.Names(sampleEntry), ", \n\t")
	createTableSQL := `CREATE TABLE IF NOT EXISTS ` + tableName +
		` (` + "\n\t" + fields + "\n" + `);`

	if _, err := r.Exec(createTableSQL); err != nil {
		return fmt.Errorf("creating table %s: %w", tableName, err)
	}

	if _, exists := r.tables[tableName]; !exists {
		r.tableOrder = append(r.tableOrder, tableName)
	}

	r.tables[tableName] = &table{structType: reflect.TypeOf(sampleEntry)}

	return nil
}

// InsertData buffers a row. The entry must have the type the table was
// created with.
func (r *Recorder) InsertData(tableName string, entry any) error {
	t, exists := r.tables[tableName]
	if !exists {
		return fmt.Errorf("table %s does not exist", tableName)
	}

	if reflect.TypeOf(entry) != t.structType {
		return fmt.Errorf("table %s stores %s, not %T",
			tableName, t.structType, entry)
	}

	t.entries = append(t.entries, entry)

	r.entryCount++
	if r.entryCount >= r.batchSize {
		return r.Flush()
	}

	return nil
}

// ListTables returns the names of the tables, in creation order.
func (r *Recorder) ListTables() []string {
	return append([]string(nil), r.tableOrder...)
}

// Flush writes all the buffered rows in one transaction.
func (r *Recorder) Flush() error {
	if r.entryCount == 0 {
		return nil
	}

	tx, err := r.Begin()
	if err != nil {
		return fmt.Errorf("flushing journal: %w", err)
	}

	for _, name := range r.tableOrder {
		if err := r.flushTable(tx, name, r.tables[name]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("flushing journal: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("flushing journal: %w", err)
	}

	for _, t := range r.tables {
		t.entries = nil
	}

	r.entryCount = 0

	return nil
}

func (r *Recorder) flushTable(tx *sql.Tx, name string, t *table) error {
	if len(t.entries) == 0 {
		return nil
	}

	stmt, err := tx.Prepare(insertStatement(name, t.entries[0]))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, entry := range t.entries {
		if _, err := stmt.Exec(structs.Values(entry)...); err != nil {
			return err
		}
	}

	return nil
}

func insertStatement(tableName string, entry any) string {
	n := structs.Names(entry)
	for i := range n {
		n[i] = "?"
	}

	return "INSERT INTO " + tableName + " VALUES (" + strings.Join(n, ", ") + ")"
}

// Close flushes the buffered rows and closes the database.
func (r *Recorder) Close() error {
	if err := r.Flush(); err != nil {
		r.DB.Close()
		return err
	}

	return r.DB.Close()
}
