package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// sessionEntry is one {date, seed, file} triple in a manifest.
type sessionEntry struct {
	Date string `json:"date"`
	Seed uint64 `json:"seed"`
	File string `json:"file"`
}

// securityEntry is one security's block in a v1.1 multi-security manifest.
type securityEntry struct {
	Symbol             string         `json:"symbol"`
	P0Ticks            int32          `json:"p0_ticks"`
	TickSize           uint32         `json:"tick_size"`
	LevelsPerSide      uint32         `json:"levels_per_side"`
	InitialSpreadTicks uint32         `json:"initial_spread_ticks"`
	InitialDepth       uint32         `json:"initial_depth"`
	Sessions           []sessionEntry `json:"sessions"`
}

// manifestV1 is the single-security (format_version "1.0") manifest shape.
type manifestV1 struct {
	FormatVersion      string         `json:"format_version"`
	RunID              string         `json:"run_id"`
	Producer           string         `json:"producer"`
	BaseSeed           uint64         `json:"base_seed"`
	SeedStrategy       string         `json:"seed_strategy"`
	SessionSeconds     uint32         `json:"session_seconds"`
	TickSize           uint32         `json:"tick_size"`
	P0Ticks            int32          `json:"p0_ticks"`
	LevelsPerSide      uint32         `json:"levels_per_side"`
	InitialSpreadTicks uint32         `json:"initial_spread_ticks"`
	InitialDepth       uint32         `json:"initial_depth"`
	Sessions           []sessionEntry `json:"sessions"`
}

// manifestV1_1 is the multi-security (format_version "1.1") manifest shape.
type manifestV1_1 struct {
	FormatVersion  string          `json:"format_version"`
	RunID          string          `json:"run_id"`
	Producer       string          `json:"producer"`
	BaseSeed       uint64          `json:"base_seed"`
	SeedStrategy   string          `json:"seed_strategy"`
	SessionSeconds uint32          `json:"session_seconds"`
	Securities     []securityEntry `json:"securities"`
}

// WriteManifest writes manifest.json into config.OutputDir, in the v1.0
// single-security or v1.1 multi-security shape depending on whether
// config.Securities is populated, grounded on
// original_source/src/producer/session_runner.cpp's writeManifest (there
// hand-rolled with fprintf; reproduced here with encoding/json).
func WriteManifest(config RunConfig, result RunResult) error {
	path := filepath.Join(config.OutputDir, "manifest.json")

	var payload interface{}
	if len(config.Securities) > 0 {
		secs := make([]securityEntry, 0, len(config.Securities))
		for _, sec := range config.Securities {
			var sessions []sessionEntry
			for _, d := range result.Days {
				if d.Symbol != sec.Symbol {
					continue
				}
				sessions = append(sessions, sessionEntry{Date: d.Date, Seed: d.Seed, File: d.Filename})
			}
			secs = append(secs, securityEntry{
				Symbol:             sec.Symbol,
				P0Ticks:            sec.P0Ticks,
				TickSize:           sec.TickSize,
				LevelsPerSide:      sec.LevelsPerSide,
				InitialSpreadTicks: sec.InitialSpreadTicks,
				InitialDepth:       sec.InitialDepth,
				Sessions:           sessions,
			})
		}
		payload = manifestV1_1{
			FormatVersion:  "1.1",
			RunID:          config.RunID,
			Producer:       "qrsdp",
			BaseSeed:       config.BaseSeed,
			SeedStrategy:   "sequential",
			SessionSeconds: config.SessionSeconds,
			Securities:     secs,
		}
	} else {
		sessions := make([]sessionEntry, 0, len(result.Days))
		for _, d := range result.Days {
			sessions = append(sessions, sessionEntry{Date: d.Date, Seed: d.Seed, File: d.Filename})
		}
		payload = manifestV1{
			FormatVersion:      "1.0",
			RunID:              config.RunID,
			Producer:           "qrsdp",
			BaseSeed:           config.BaseSeed,
			SeedStrategy:       "sequential",
			SessionSeconds:     config.SessionSeconds,
			TickSize:           config.TickSize,
			P0Ticks:            config.P0Ticks,
			LevelsPerSide:      config.LevelsPerSide,
			InitialSpreadTicks: config.InitialSpreadTicks,
			InitialDepth:       config.InitialDepth,
			Sessions:           sessions,
		}
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("session: cannot marshal manifest: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("session: cannot write manifest %s: %w", path, err)
	}
	return nil
}
