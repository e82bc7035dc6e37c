package sqlite

import (
	"database/sql"
	"fmt"
	"os"
)

// RunSummary is one row of the run listing
type RunSummary struct {
	RunID        string
	CreationDate string
	Reference    string
	Tolerance    float64
	Threshold    float64
	Succeeded    int
	Failed       int
	Samples      int
	Classified   int
	ByType       map[string]int // Classified samples per polymer type
}

// ListRuns reads every run stored in a results database, oldest first
func ListRuns(path string) ([]RunSummary, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("results database not found: %w", err)
	}

	dsn, err := fileDSN(path, "mode=ro")
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(`
		SELECT r.RunId, r.CreationDate, r.Reference, r.Tolerance, r.Threshold,
		       r.BatchesSucceeded, r.BatchesFailed,
		       (SELECT COUNT(*) FROM DecisionTable d JOIN BatchTable b ON d.BatchId = b.BatchId WHERE b.RunId = r.RunId),
		       (SELECT COUNT(*) FROM DecisionTable d JOIN BatchTable b ON d.BatchId = b.BatchId WHERE b.RunId = r.RunId AND d.PolymerType IS NOT NULL)
		FROM RunTable r
		ORDER BY r.CreationDate, r.RunId
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var s RunSummary
		if err := rows.Scan(&s.RunID, &s.CreationDate, &s.Reference, &s.Tolerance, &s.Threshold,
			&s.Succeeded, &s.Failed, &s.Samples, &s.Classified); err != nil {
			return nil, fmt.Errorf("failed to read run: %w", err)
		}
		runs = append(runs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}

	for i := range runs {
		byType, err := classifiedByType(db, runs[i].RunID)
		if err != nil {
			return nil, err
		}
		runs[i].ByType = byType
	}

	return runs, nil
}

func classifiedByType(db *sql.DB, runID string) (map[string]int, error) {
	rows, err := db.Query(`
		SELECT d.PolymerType, COUNT(*)
		FROM DecisionTable d JOIN BatchTable b ON d.BatchId = b.BatchId
		WHERE b.RunId = ? AND d.PolymerType IS NOT NULL
		GROUP BY d.PolymerType
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("failed to read decision count: %w", err)
		}
		out[name] = n
	}
	return out, rows.Err()
}
