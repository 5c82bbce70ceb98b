package cache

import (
	"database/sql"
	"time"
)

func buildCreateResponsesTable() string {
	return `CREATE TABLE IF NOT EXISTS responses (
		url TEXT PRIMARY KEY,
		body BLOB NOT NULL,
		fetched_at INTEGER NOT NULL);`
}

func buildSelectResponseCommand() (string, func(*sql.Rows) (entry, bool, error)) {
	return `SELECT body, fetched_at FROM responses WHERE url = ?`, processSelectResponseRows
}

func processSelectResponseRows(rows *sql.Rows) (entry, bool, error) {
	defer rows.Close()

	// only can be one row
	if rows.Next() {
		var body []byte
		var fetchedAt int64
		if err := rows.Scan(&body, &fetchedAt); err != nil {
			return entry{}, false, err
		}
		return entry{body: body, fetchedAt: time.Unix(0, fetchedAt)}, true, nil
	}
	return entry{}, false, rows.Err()
}

func buildUpsertResponseCommand() string {
	return `INSERT OR REPLACE INTO responses (url, body, fetched_at) VALUES (?, ?, ?)`
}
