package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/macdbot/position"
)

// SQLite is a Journal backed by a local SQLite database.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) Append(r TransactionRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO transactions
		(id, type, symbol, quantity, price, total, time, order_id, profit_loss, profit_loss_pct)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, string(r.Type), r.Symbol, r.Quantity, r.Price,
		r.Total, r.Time, r.OrderID, r.ProfitLoss, r.ProfitLossPct,
	)
	return err
}

func (j *SQLite) LoadAll() ([]TransactionRecord, error) {
	rows, err := j.db.Query(`
		SELECT id, type, symbol, quantity, price, total, time, order_id, profit_loss, profit_loss_pct
		FROM transactions
		ORDER BY time ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TransactionRecord
	for rows.Next() {
		var rec TransactionRecord
		var typ string
		if err := rows.Scan(
			&rec.ID,
			&typ,
			&rec.Symbol,
			&rec.Quantity,
			&rec.Price,
			&rec.Total,
			&rec.Time,
			&rec.OrderID,
			&rec.ProfitLoss,
			&rec.ProfitLossPct,
		); err != nil {
			return nil, err
		}
		rec.Type = position.Action(typ)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
