package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aitomatic/orchestra/internal/engine"
	"github.com/aitomatic/orchestra/internal/value"
)

// StrategyRecord is one persisted strategy decision.
type StrategyRecord struct {
	FunctionIdentity string
	ShapeTag         string
	Strategy         engine.Strategy
	RecordedAt       string
}

// Lookup returns the persisted strategy for the pair, if any.
//
// Implements engine.StrategyCache. A read failure is reported as a miss
// and logged: the cache is an optimization hint, never a correctness
// dependency, so storage trouble must not fail orchestration.
func (s *Store) Lookup(functionIdentity, shapeTag string) (engine.Strategy, bool) {
	var strategy string
	err := s.db.QueryRow(
		`SELECT strategy FROM strategies WHERE strategy_key = ?`,
		value.StrategyKey(functionIdentity, shapeTag),
	).Scan(&strategy)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Warn("strategy lookup failed",
				"function", functionIdentity,
				"shape", shapeTag,
				"error", err,
			)
		}
		return "", false
	}
	if !engine.ValidStrategy(engine.Strategy(strategy)) {
		slog.Warn("ignoring unknown persisted strategy",
			"function", functionIdentity,
			"shape", shapeTag,
			"strategy", strategy,
		)
		return "", false
	}
	return engine.Strategy(strategy), true
}

// Record persists the strategy for the pair.
//
// Implements engine.StrategyCache. Idempotent via UPSERT: re-recording a
// pair overwrites. A write failure is logged and swallowed for the same
// reason Lookup degrades to a miss.
func (s *Store) Record(functionIdentity, shapeTag string, strategy engine.Strategy) {
	_, err := s.db.Exec(`
		INSERT INTO strategies (strategy_key, function_identity, shape_tag, strategy)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(strategy_key) DO UPDATE SET strategy = excluded.strategy
	`,
		value.StrategyKey(functionIdentity, shapeTag),
		functionIdentity,
		shapeTag,
		string(strategy),
	)
	if err != nil {
		slog.Warn("strategy record failed",
			"function", functionIdentity,
			"shape", shapeTag,
			"error", err,
		)
	}
}

// Records returns every persisted strategy record, ordered by function
// identity then shape tag. Used by inspection tooling.
func (s *Store) Records() ([]StrategyRecord, error) {
	rows, err := s.db.Query(`
		SELECT function_identity, shape_tag, strategy, recorded_at
		FROM strategies
		ORDER BY function_identity, shape_tag
	`)
	if err != nil {
		return nil, fmt.Errorf("query strategies: %w", err)
	}
	defer rows.Close()

	var records []StrategyRecord
	for rows.Next() {
		var r StrategyRecord
		var strategy string
		if err := rows.Scan(&r.FunctionIdentity, &r.ShapeTag, &strategy, &r.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan strategy row: %w", err)
		}
		r.Strategy = engine.Strategy(strategy)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate strategies: %w", err)
	}
	return records, nil
}

// PruneFunction removes every record for one function identity, returning
// how many were deleted. Used when a function's signature changes and its
// recorded strategies may no longer apply.
func (s *Store) PruneFunction(functionIdentity string) (int64, error) {
	res, err := s.db.Exec(
		`DELETE FROM strategies WHERE function_identity = ?`,
		functionIdentity,
	)
	if err != nil {
		return 0, fmt.Errorf("prune strategies for %s: %w", functionIdentity, err)
	}
	return res.RowsAffected()
}

// Len returns the number of persisted records.
// Used for testing and introspection.
func (s *Store) Len() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM strategies`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count strategies: %w", err)
	}
	return n, nil
}
