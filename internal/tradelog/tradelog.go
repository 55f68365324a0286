// Package tradelog journals executed trades and decisions as JSON lines in
// daily files. This is an audit trail, not a state store: the ledger never
// reads it back.
package tradelog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var mu sync.Mutex

type Entry struct {
	Time           string  `json:"time"`
	Ticker         string  `json:"ticker"`
	Action         string  `json:"action"`
	Qty            int     `json:"qty"`
	Price          float64 `json:"price"`
	ExpectedChange float64 `json:"expected_change"`
	OrderID        string  `json:"order_id,omitempty"`
}

type DecisionEntry struct {
	Time           string  `json:"time"`
	Ticker         string  `json:"ticker"`
	Action         string  `json:"action"`
	CurrentPrice   float64 `json:"current_price"`
	PredictedPrice float64 `json:"predicted_price"`
	ExpectedChange float64 `json:"expected_change"`
}

func logDir() string {
	if v := os.Getenv("TRADER_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

func dailyFilepath(t time.Time) string {
	return filepath.Join(logDir(), t.UTC().Format("2006-01-02")+".txt")
}

func decisionsFilepath(t time.Time) string {
	return filepath.Join(logDir(), "decisions", t.UTC().Format("2006-01-02")+".txt")
}

func Append(e Entry) error {
	mu.Lock()
	defer mu.Unlock()
	now := time.Now().UTC()
	e.Time = now.Format("2006-01-02 15:04:05")
	return appendLine(dailyFilepath(now), e)
}

func AppendDecision(e DecisionEntry) error {
	mu.Lock()
	defer mu.Unlock()
	now := time.Now().UTC()
	e.Time = now.Format("2006-01-02 15:04:05")
	return appendLine(decisionsFilepath(now), e)
}

func appendLine(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	b, _ := json.Marshal(v)
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// CompressOlder gzips journal files older than retentionDays.
func CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	return filepath.WalkDir(logDir(), func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(p) != ".txt" {
			return nil
		}
		info, er := os.Stat(p)
		if er != nil || !info.ModTime().Before(cutoff) {
			return nil
		}
		gz := p + ".gz"
		if _, e := os.Stat(gz); e == nil {
			return os.Remove(p)
		}
		in, e := os.Open(p)
		if e != nil {
			return nil
		}
		defer in.Close()
		out, e := os.OpenFile(gz, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if e != nil {
			return nil
		}
		gw := gzip.NewWriter(out)
		if _, e := io.Copy(gw, in); e == nil {
			_ = gw.Close()
			_ = out.Close()
			return os.Remove(p)
		}
		_ = gw.Close()
		_ = out.Close()
		return nil
	})
}
