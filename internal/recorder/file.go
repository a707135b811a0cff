package recorder

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"StockPulse/internal/model"
)

// FileRecorder writes each batch to <Dir>/top_stocks_YYYYMMDD_HHMMSS.json.
type FileRecorder struct {
	Dir string
}

func NewFileRecorder(dir string) *FileRecorder { return &FileRecorder{Dir: dir} }

// topStocksFile is the on-disk shape of one run.
type topStocksFile struct {
	Timestamp     time.Time              `json:"timestamp"`
	RunID         string                 `json:"run_id"`
	TopStocks     []model.AnalysisResult `json:"top_stocks"`
	TotalAnalyzed int                    `json:"total_analyzed"`
}

// Path returns the file a run finishing at t is written to.
func (f *FileRecorder) Path(t time.Time) string {
	return filepath.Join(f.Dir, "top_stocks_"+t.Format("20060102_150405")+".json")
}

func (f *FileRecorder) RecordBatch(_ context.Context, res *model.BatchResult) error {
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return fmt.Errorf("create results dir: %w", err)
	}
	data, err := json.MarshalIndent(topStocksFile{
		Timestamp:     res.FinishedAt,
		RunID:         res.RunID,
		TopStocks:     res.Results,
		TotalAnalyzed: res.Stats.Analyzed,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	path := f.Path(res.FinishedAt)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename results: %w", err)
	}
	log.Printf("[INFO] saved %d results to %s", len(res.Results), path)
	return nil
}

func (f *FileRecorder) Close() error { return nil }
