package store

// Schema creates the result journal tables. Results are keyed by run so a
// single database can hold repeated ensembles side by side.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	created_at DATETIME NOT NULL,
	trial_count INTEGER NOT NULL,
	seed INTEGER NOT NULL,
	config TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS results (
	run_id TEXT NOT NULL,
	trial_id INTEGER NOT NULL,
	strategy TEXT NOT NULL,
	death_age INTEGER NOT NULL,
	years_lived INTEGER NOT NULL,
	terminal_wealth REAL NOT NULL,
	total_taxes_paid REAL NOT NULL,
	total_rmd_withdrawals REAL NOT NULL,
	step_up_benefit REAL NOT NULL,
	valid INTEGER NOT NULL,
	PRIMARY KEY (run_id, trial_id, strategy)
);

CREATE INDEX IF NOT EXISTS idx_results_run_strategy ON results(run_id, strategy);

CREATE TABLE IF NOT EXISTS items (
	id TEXT PRIMARY KEY,
	body TEXT NOT NULL
);
`
