package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rustyeddy/macdbot/position"
)

// File is a Journal backed by a single JSON document on disk. Every
// append rewrites the file atomically (tmp + fsync + rename) so a crash
// mid-write never corrupts the history.
type File struct {
	path    string
	records []TransactionRecord
}

type fileRecord struct {
	ID            string   `json:"id"`
	Type          string   `json:"type"`
	Symbol        string   `json:"symbol"`
	Quantity      int      `json:"quantity"`
	Price         float64  `json:"price"`
	Total         float64  `json:"total"`
	Timestamp     string   `json:"timestamp"`
	OrderID       string   `json:"order_id,omitempty"`
	ProfitLoss    *float64 `json:"profit_loss,omitempty"`
	ProfitLossPct *float64 `json:"profit_loss_pct,omitempty"`
}

type fileDoc struct {
	Transactions []fileRecord `json:"transactions"`
	LastUpdated  string       `json:"last_updated"`
}

// NewFile opens (or creates) a JSON journal at path and loads any
// existing history into memory.
func NewFile(path string) (*File, error) {
	j := &File{path: path}

	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return j, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}

	var doc fileDoc
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse journal %s: %w", path, err)
	}
	for _, fr := range doc.Transactions {
		rec, err := fr.toRecord()
		if err != nil {
			return nil, fmt.Errorf("journal %s: %w", path, err)
		}
		j.records = append(j.records, rec)
	}
	return j, nil
}

func (fr fileRecord) toRecord() (TransactionRecord, error) {
	ts, err := time.Parse(time.RFC3339Nano, fr.Timestamp)
	if err != nil {
		return TransactionRecord{}, fmt.Errorf("bad timestamp %q: %w", fr.Timestamp, err)
	}
	return TransactionRecord{
		ID:            fr.ID,
		Type:          position.Action(fr.Type),
		Symbol:        fr.Symbol,
		Quantity:      fr.Quantity,
		Price:         fr.Price,
		Total:         fr.Total,
		Time:          ts,
		OrderID:       fr.OrderID,
		ProfitLoss:    fr.ProfitLoss,
		ProfitLossPct: fr.ProfitLossPct,
	}, nil
}

func (j *File) Append(r TransactionRecord) error {
	j.records = append(j.records, r)
	if err := j.flush(); err != nil {
		j.records = j.records[:len(j.records)-1]
		return err
	}
	return nil
}

func (j *File) LoadAll() ([]TransactionRecord, error) {
	out := make([]TransactionRecord, len(j.records))
	copy(out, j.records)
	return out, nil
}

func (j *File) Close() error {
	return nil
}

func (j *File) flush() error {
	doc := fileDoc{
		Transactions: make([]fileRecord, 0, len(j.records)),
		LastUpdated:  time.Now().UTC().Format(time.RFC3339),
	}
	for _, r := range j.records {
		doc.Transactions = append(doc.Transactions, fileRecord{
			ID:            r.ID,
			Type:          string(r.Type),
			Symbol:        r.Symbol,
			Quantity:      r.Quantity,
			Price:         r.Price,
			Total:         r.Total,
			Timestamp:     r.Time.Format(time.RFC3339Nano),
			OrderID:       r.OrderID,
			ProfitLoss:    r.ProfitLoss,
			ProfitLossPct: r.ProfitLossPct,
		})
	}

	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(j.path, b, 0o600)
}

// writeFileAtomic writes data via a temp file, fsync and rename so the
// journal on disk is always a complete document.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".journal-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
