package journal

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	id TEXT PRIMARY KEY,
	type TEXT NOT NULL,
	symbol TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	price REAL NOT NULL,
	total REAL NOT NULL,
	time DATETIME NOT NULL,
	order_id TEXT NOT NULL,
	profit_loss REAL,
	profit_loss_pct REAL
);

CREATE INDEX IF NOT EXISTS idx_transactions_time ON transactions(time);
CREATE INDEX IF NOT EXISTS idx_transactions_symbol ON transactions(symbol);
`
