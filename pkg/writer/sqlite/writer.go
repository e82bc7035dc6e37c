// Package sqlite provides SQLite database writing for classification results
package sqlite

import (
	"database/sql"
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/ChrisMcGann/RamanKey/pkg/core"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const (
	// Date format for RunTable (ISO 8601)
	runDateFormat = time.RFC3339
)

// RunInfo describes the parameters a run was made with
type RunInfo struct {
	Reference    string
	Tolerance    float64
	RelTolerance float64
	Threshold    float64
}

// Writer handles writing classification results to SQLite database files
type Writer struct {
	db           *sql.DB
	outputPath   string
	runID        string
	batchStmt    *sql.Stmt
	resultStmt   *sql.Stmt
	decisionStmt *sql.Stmt
	succeeded    int
	failed       int
	closed       bool
}

// NewWriter creates a new SQLite writer and registers a new run
func NewWriter(outputPath string, info RunInfo) (*Writer, error) {
	dsn, err := fileDSN(outputPath, "")
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	w := &Writer{
		db:         db,
		outputPath: outputPath,
		runID:      uuid.NewString(),
	}

	if err := w.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	if err := w.insertRun(info); err != nil {
		db.Close()
		return nil, err
	}

	if err := w.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}

	return w, nil
}

// fileDSN builds a file URI for path so that characters such as ? and # stay
// part of the file name
func fileDSN(path, query string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve database path: %w", err)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs), RawQuery: query}
	return u.String(), nil
}

// RunID returns the identifier of the run being written
func (w *Writer) RunID() string {
	return w.runID
}

// createTables creates the required database schema
func (w *Writer) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS RunTable (
		RunId TEXT PRIMARY KEY,
		CreationDate TEXT,
		Reference TEXT,
		Tolerance DOUBLE,
		RelTolerance DOUBLE,
		Threshold DOUBLE,
		BatchesSucceeded INTEGER,
		BatchesFailed INTEGER
	);

	CREATE TABLE IF NOT EXISTS BatchTable (
		BatchId INTEGER PRIMARY KEY AUTOINCREMENT,
		RunId TEXT REFERENCES RunTable(RunId),
		Name TEXT,
		SampleCount INTEGER,
		Error TEXT
	);

	CREATE TABLE IF NOT EXISTS ResultTable (
		BatchId INTEGER REFERENCES BatchTable(BatchId),
		SampleIndex INTEGER,
		SampleId TEXT,
		TypeIndex INTEGER,
		PolymerType TEXT,
		MatchPercent DOUBLE,
		Highlight BOOL
	);

	CREATE TABLE IF NOT EXISTS DecisionTable (
		BatchId INTEGER REFERENCES BatchTable(BatchId),
		SampleIndex INTEGER,
		SampleId TEXT,
		PolymerType TEXT,
		MaxPercent DOUBLE
	);
	`

	_, err := w.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

func (w *Writer) insertRun(info RunInfo) error {
	_, err := w.db.Exec(`
		INSERT INTO RunTable (RunId, CreationDate, Reference, Tolerance, RelTolerance, Threshold, BatchesSucceeded, BatchesFailed)
		VALUES (?, ?, ?, ?, ?, ?, 0, 0)
	`, w.runID, time.Now().UTC().Format(runDateFormat), info.Reference, info.Tolerance, info.RelTolerance, info.Threshold)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// prepareStatements prepares SQL statements for batch insertion
func (w *Writer) prepareStatements() error {
	var err error

	w.batchStmt, err = w.db.Prepare(`
		INSERT INTO BatchTable (RunId, Name, SampleCount, Error) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch statement: %w", err)
	}

	w.resultStmt, err = w.db.Prepare(`
		INSERT INTO ResultTable (
			BatchId, SampleIndex, SampleId, TypeIndex, PolymerType, MatchPercent, Highlight
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare result statement: %w", err)
	}

	w.decisionStmt, err = w.db.Prepare(`
		INSERT INTO DecisionTable (BatchId, SampleIndex, SampleId, PolymerType, MaxPercent) VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare decision statement: %w", err)
	}

	return nil
}

// WriteTable writes one batch's results table inside a single transaction
func (w *Writer) WriteTable(table *core.ResultsTable) error {
	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Stmt(w.batchStmt).Exec(w.runID, table.Batch, len(table.Samples), nil)
	if err != nil {
		return fmt.Errorf("failed to insert batch: %w", err)
	}
	batchID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read batch id: %w", err)
	}

	resultStmt := tx.Stmt(w.resultStmt)
	decisionStmt := tx.Stmt(w.decisionStmt)

	for j, sampleID := range table.Samples {
		for i, typeName := range table.Types {
			_, err := resultStmt.Exec(
				batchID,               // BatchId
				j,                     // SampleIndex
				sampleID,              // SampleId
				i,                     // TypeIndex
				typeName,              // PolymerType
				table.Cell(i, j),      // MatchPercent
				table.Highlight(i, j), // Highlight
			)
			if err != nil {
				return fmt.Errorf("failed to insert result: %w", err)
			}
		}

		d := table.Decisions[j]
		// unclassified samples store NULL
		var polymer interface{} = nil
		if d.Classified {
			polymer = d.Type
		}
		if _, err := decisionStmt.Exec(batchID, j, sampleID, polymer, d.Max); err != nil {
			return fmt.Errorf("failed to insert decision: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}

	w.succeeded++
	return nil
}

// WriteFailure records a batch that could not be processed
func (w *Writer) WriteFailure(batch string, cause error) error {
	if _, err := w.batchStmt.Exec(w.runID, batch, 0, cause.Error()); err != nil {
		return fmt.Errorf("failed to insert batch failure: %w", err)
	}
	w.failed++
	return nil
}

// Finalize updates the run summary and closes the database
func (w *Writer) Finalize() error {
	if w.closed {
		return nil
	}
	w.closed = true

	_, err := w.db.Exec(`
		UPDATE RunTable SET BatchesSucceeded = ?, BatchesFailed = ? WHERE RunId = ?
	`, w.succeeded, w.failed, w.runID)
	if err != nil {
		w.db.Close()
		return fmt.Errorf("failed to update run: %w", err)
	}

	// Close prepared statements
	for _, stmt := range []*sql.Stmt{w.batchStmt, w.resultStmt, w.decisionStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}

	// Close database
	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

// Close closes the database connection (alias for Finalize)
func (w *Writer) Close() error {
	return w.Finalize()
}
