package pricestore

// Schema stores one row per bar. Times are unix seconds so range scans
// compare integers.
const Schema = `
CREATE TABLE IF NOT EXISTS bars (
	ts INTEGER NOT NULL,
	interval TEXT NOT NULL,
	open REAL NOT NULL,
	high REAL NOT NULL,
	low REAL NOT NULL,
	close REAL NOT NULL,
	PRIMARY KEY (ts, interval)
);

CREATE INDEX IF NOT EXISTS idx_bars_ts ON bars(ts);
`
