package storage

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
//
// Dates are declared TEXT, not DATE: the driver would otherwise hand them
// back as time.Time and the YYYY-MM-DD keys would stop round-tripping.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS work_entries (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	date_iso        TEXT NOT NULL,
	hours           TEXT NOT NULL,
	note            TEXT NOT NULL DEFAULT '',
	window_end_date TEXT NOT NULL,
	created_at      DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_work_entries_date_iso ON work_entries(date_iso);
CREATE INDEX IF NOT EXISTS idx_work_entries_window_end_date ON work_entries(window_end_date);
CREATE INDEX IF NOT EXISTS idx_work_entries_created_at ON work_entries(created_at);

CREATE TABLE IF NOT EXISTS paid_blocks (
	window_end_date TEXT PRIMARY KEY,
	is_paid         INTEGER NOT NULL DEFAULT 0 CHECK(is_paid IN (0, 1)),
	payday_date     TEXT NOT NULL,
	total_hours     TEXT NOT NULL DEFAULT '0',
	updated_at      DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_paid_blocks_is_paid ON paid_blocks(is_paid);
CREATE INDEX IF NOT EXISTS idx_paid_blocks_payday_date ON paid_blocks(payday_date);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
