package main

import (
	"database/sql"
	"eventhub/stats"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS endpoint_hits (
    id TEXT PRIMARY KEY,
    app TEXT NOT NULL,
    uri TEXT NOT NULL,
    ip TEXT NOT NULL,
    ts TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_hits_ts ON endpoint_hits (ts);
`

// HitStore persists endpoint hits in sqlite. Timestamps are stored in
// stats.TimeLayout, which orders lexicographically, so range filters are
// plain string comparisons.
type HitStore struct {
	db *sql.DB
}

func OpenStore(path string) (*HitStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create schema: %v", err)
	}
	return &HitStore{db: db}, nil
}

func (s *HitStore) Close() error {
	return s.db.Close()
}

func (s *HitStore) Record(hit stats.EndpointHit) error {
	_, err := s.db.Exec(`INSERT INTO endpoint_hits (id, app, uri, ip, ts) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), hit.App, hit.URI, hit.IP, hit.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to record hit: %v", err)
	}
	return nil
}

// Stats aggregates hit counts per endpoint between start and end. With
// unique set, each ip counts once per endpoint.
func (s *HitStore) Stats(start, end string, uris []string, unique bool) ([]stats.EndpointStats, error) {
	countExpr := "COUNT(*)"
	if unique {
		countExpr = "COUNT(DISTINCT ip)"
	}

	query := fmt.Sprintf(`SELECT app, uri, %s AS hits FROM endpoint_hits WHERE ts >= ? AND ts <= ?`, countExpr)
	args := []interface{}{start, end}

	if len(uris) > 0 {
		query += fmt.Sprintf(" AND uri IN (%s)", strings.TrimSuffix(strings.Repeat("?,", len(uris)), ","))
		for _, u := range uris {
			args = append(args, u)
		}
	}
	query += " GROUP BY app, uri ORDER BY hits DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %v", err)
	}
	defer rows.Close()

	result := []stats.EndpointStats{}
	for rows.Next() {
		var es stats.EndpointStats
		if err := rows.Scan(&es.App, &es.URI, &es.Hits); err != nil {
			return nil, err
		}
		result = append(result, es)
	}
	return result, rows.Err()
}
