package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/orf53975/sslyze/internal/checker"
	consts "github.com/orf53975/sslyze/internal/shared/constants"
)

const telemetryFilename = "telemetry.jsonl"

type telemetryRecord struct {
	Timestamp           time.Time `json:"timestamp"`
	RunID               string    `json:"run_id"`
	Command             string    `json:"command"`
	TargetCount         int       `json:"target_count"`
	SuccessCount        int       `json:"success_count"`
	ErrorCount          int       `json:"error_count"`
	VulnerableCount     int       `json:"vulnerable_count"`
	SuccessRate         float64   `json:"success_rate"`
	DurationSeconds     float64   `json:"duration_seconds"`
	AvgDurationPerCheck float64   `json:"avg_duration_per_check"`
}

func recordTelemetry(appCtx *AppContext, runID string, command string, results []checker.CheckResult, duration time.Duration) error {
	okCount, errorCount := summarizeStatuses(results)
	vulnerable, _ := summarizeFindings(results)
	total := len(results)

	successRate := 0.0
	avgDuration := 0.0
	if total > 0 {
		successRate = (float64(okCount) / float64(total)) * 100
		avgDuration = duration.Seconds() / float64(total)
	}

	record := telemetryRecord{
		Timestamp:           time.Now().UTC(),
		RunID:               runID,
		Command:             command,
		TargetCount:         total,
		SuccessCount:        okCount,
		ErrorCount:          errorCount,
		VulnerableCount:     vulnerable,
		SuccessRate:         successRate,
		DurationSeconds:     duration.Seconds(),
		AvgDurationPerCheck: avgDuration,
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal telemetry: %w", err)
	}

	if err := os.MkdirAll(appCtx.ResultsDir, consts.DefaultDirPerm); err != nil {
		return fmt.Errorf("create results dir: %w", err)
	}

	telemetryPath := filepath.Join(appCtx.ResultsDir, telemetryFilename)
	f, err := os.OpenFile(telemetryPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, consts.DefaultFilePerm)
	if err != nil {
		return fmt.Errorf("open telemetry file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write telemetry: %w", err)
	}

	return nil
}

func summarizeStatuses(results []checker.CheckResult) (okCount, errorCount int) {
	for _, r := range results {
		if r.Status == checker.StatusOK {
			okCount++
		} else {
			errorCount++
		}
	}
	return okCount, errorCount
}
