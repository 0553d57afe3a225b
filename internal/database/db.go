package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB represents the database connection with pooling.
type DB struct {
	*sql.DB
	pool     *ConnectionPool
	prepared map[string]*sql.Stmt
	mutex    sync.RWMutex
}

// ConnectionPool manages database connection pooling.
type ConnectionPool struct {
	db           *sql.DB
	maxOpenConns int
	maxIdleConns int
	maxLifetime  time.Duration
}

// NewConnectionPool creates a new database connection pool.
func NewConnectionPool(db *sql.DB, maxOpen, maxIdle int, maxLifetime time.Duration) *ConnectionPool {
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(maxLifetime)

	return &ConnectionPool{
		db:           db,
		maxOpenConns: maxOpen,
		maxIdleConns: maxIdle,
		maxLifetime:  maxLifetime,
	}
}

// GetStats returns connection pool statistics.
func (cp *ConnectionPool) GetStats() map[string]interface{} {
	stats := cp.db.Stats()

	return map[string]interface{}{
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"max_open_connections": cp.maxOpenConns,
		"max_idle_connections": cp.maxIdleConns,
		"max_lifetime_seconds": cp.maxLifetime.Seconds(),
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}
}

// NewDB opens the placement database under dataDir, running migrations and
// preparing hot-path statements. Pass ":memory:" as dataDir for an ephemeral
// database in tests.
func NewDB(dataDir string) (*DB, error) {
	var connStr string
	if dataDir == ":memory:" {
		connStr = "file::memory:?cache=shared&_pragma=foreign_keys(ON)"
	} else {
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		dbPath := filepath.Join(dataDir, "placement_engine.db")
		connStr = fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", dbPath)
	}

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pool := NewConnectionPool(db, 25, 5, 5*time.Minute)

	database := &DB{
		DB:       db,
		pool:     pool,
		prepared: make(map[string]*sql.Stmt),
	}

	if err := database.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := database.initPreparedStatements(); err != nil {
		return nil, fmt.Errorf("failed to initialize prepared statements: %w", err)
	}

	slog.Info("Database initialized with connection pooling",
		"max_open_conns", pool.maxOpenConns,
		"max_idle_conns", pool.maxIdleConns,
		"max_lifetime", pool.maxLifetime)

	return database, nil
}

// migrate creates the necessary tables. Skills, eligibility, and weight
// policies are stored as JSON columns; the engine consumes them as structured
// values, the database never inspects them.
func (db *DB) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS candidates (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			branch TEXT NOT NULL,
			cgpa REAL NOT NULL,
			active_backlogs INTEGER NOT NULL,
			skills TEXT NOT NULL,
			communication_score INTEGER NOT NULL,
			mock_interview_score INTEGER NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS jobs (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			eligibility TEXT NOT NULL,
			weight_policy TEXT NOT NULL,
			risk_tolerance TEXT NOT NULL,
			open_positions INTEGER NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,

		// Outcomes carry no foreign keys: the placement log outlives
		// candidate and job deletions.
		`CREATE TABLE IF NOT EXISTS outcomes (
			id TEXT PRIMARY KEY,
			candidate_id TEXT NOT NULL,
			job_id TEXT NOT NULL,
			shortlisted BOOLEAN NOT NULL,
			result TEXT NOT NULL,
			failure_reason TEXT,
			recorded_at DATETIME NOT NULL,
			created_at DATETIME NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_candidates_branch ON candidates(branch)`,
		`CREATE INDEX IF NOT EXISTS idx_candidates_cgpa ON candidates(cgpa DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_candidate ON outcomes(candidate_id)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_job ON outcomes(job_id)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_recorded ON outcomes(recorded_at)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}
	return nil
}

// initPreparedStatements initializes frequently used prepared statements.
func (db *DB) initPreparedStatements() error {
	statements := map[string]string{
		"insert_candidate": `INSERT INTO candidates (
			id, name, branch, cgpa, active_backlogs, skills,
			communication_score, mock_interview_score, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			branch = excluded.branch,
			cgpa = excluded.cgpa,
			active_backlogs = excluded.active_backlogs,
			skills = excluded.skills,
			communication_score = excluded.communication_score,
			mock_interview_score = excluded.mock_interview_score,
			updated_at = excluded.updated_at`,

		"insert_job": `INSERT INTO jobs (
			id, name, type, eligibility, weight_policy,
			risk_tolerance, open_positions, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			eligibility = excluded.eligibility,
			weight_policy = excluded.weight_policy,
			risk_tolerance = excluded.risk_tolerance,
			open_positions = excluded.open_positions,
			updated_at = excluded.updated_at`,

		"insert_outcome": `INSERT INTO outcomes (
			id, candidate_id, job_id, shortlisted, result,
			failure_reason, recorded_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,

		"get_candidate": `SELECT id, name, branch, cgpa, active_backlogs, skills,
			communication_score, mock_interview_score
			FROM candidates WHERE id = ?`,

		"get_job": `SELECT id, name, type, eligibility, weight_policy,
			risk_tolerance, open_positions
			FROM jobs WHERE id = ?`,

		"list_candidates": `SELECT id, name, branch, cgpa, active_backlogs, skills,
			communication_score, mock_interview_score
			FROM candidates ORDER BY id`,

		"list_jobs": `SELECT id, name, type, eligibility, weight_policy,
			risk_tolerance, open_positions
			FROM jobs ORDER BY id`,

		"list_outcomes": `SELECT id, candidate_id, job_id, shortlisted, result,
			failure_reason, recorded_at
			FROM outcomes ORDER BY recorded_at, id`,
	}

	db.mutex.Lock()
	defer db.mutex.Unlock()

	for name, query := range statements {
		stmt, err := db.Prepare(query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement %s: %w", name, err)
		}
		db.prepared[name] = stmt
	}
	return nil
}

// GetPreparedStatement retrieves a prepared statement.
func (db *DB) GetPreparedStatement(name string) (*sql.Stmt, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	stmt, exists := db.prepared[name]
	if !exists {
		return nil, fmt.Errorf("prepared statement %s not found", name)
	}
	return stmt, nil
}

// GetPoolStats returns database connection pool statistics.
func (db *DB) GetPoolStats() map[string]interface{} {
	return db.pool.GetStats()
}

// Close closes the database connection and prepared statements.
func (db *DB) Close() error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	for name, stmt := range db.prepared {
		if err := stmt.Close(); err != nil {
			slog.Warn("Failed to close prepared statement", "name", name, "error", err)
		}
	}
	db.prepared = make(map[string]*sql.Stmt)

	return db.DB.Close()
}
