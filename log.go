/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"log"
	"time"

	"github.com/Seednode/pholight/lights"
)

const logDate string = `2006-01-02T15:04:05.000-07:00`

func logf(cfg *Config, format string, args ...any) {
	if !cfg.verbose {
		return
	}

	log.Printf("%s | "+format, append([]any{time.Now().Format(logDate)}, args...)...)
}

// noticef logs regardless of --verbose, for things the operator must see.
func noticef(format string, args ...any) {
	log.Printf("%s | "+format, append([]any{time.Now().Format(logDate)}, args...)...)
}

func relayLogger(cfg *Config) lights.Logf {
	return func(format string, args ...any) {
		logf(cfg, format, args...)
	}
}

func humanReadableSize(bytes int64) string {
	const unit int64 = 1000
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := unit, 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB",
		float64(bytes)/float64(div),
		"kMGTPE"[exp])
}
