// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"

	"github.com/nervina-labs/cota-aggregator-go/chainfacade"
	"github.com/nervina-labs/cota-aggregator-go/internal/app"
	"github.com/nervina-labs/cota-aggregator-go/smtstore"
)

// logRotator rotates the aggregator's single log file, swapped in for
// stdout-only logging once initLogRotator runs.
var logRotator *rotator.Rotator

var log = backendLog().Logger("RPCS")

func backendLog() *btclog.Backend {
	return btclog.NewBackend(logWriter{})
}

// logWriter implements io.Writer: it always writes to stdout, and also to
// the rotator once that has been initialized.
type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	os.Stdout.Write(p)
	if logRotator != nil {
		logRotator.Write(p)
	}
	return len(p), nil
}

// initLogRotator initializes the logging rotator to write logs to
// logFile and create roll files in the same directory. It must be
// called before the package-level log rotator variable is used, as it
// is initialized in this function.
func initLogRotator(logFile string) {
	logDir := filepath.Dir(logFile)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		os.Stderr.WriteString("failed to create log directory: " + err.Error() + "\n")
		os.Exit(1)
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		os.Stderr.WriteString("failed to create file rotator: " + err.Error() + "\n")
		os.Exit(1)
	}
	logRotator = r
}

// setLogLevels applies level to every subsystem logger the aggregator's
// core packages expose, mirroring the teacher's per-subsystem
// UseLogger/SetLevel wiring.
func setLogLevels(level btclog.Level) {
	backend := backendLog()

	log.SetLevel(level)

	smtstoreLog := backend.Logger("SMTS")
	smtstoreLog.SetLevel(level)
	smtstore.UseLogger(smtstoreLog)

	chainLog := backend.Logger("CHFC")
	chainLog.SetLevel(level)
	chainfacade.UseLogger(chainLog)

	appLog := backend.Logger("APP ")
	appLog.SetLevel(level)
	app.UseLogger(appLog)
}
