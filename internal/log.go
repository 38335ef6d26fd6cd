// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.


package internal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"
)

// Singleton log writer. Writes to stdout, and optionally to a file.
// Does not add prefixes, or force newlines. Safe for concurrent use,
// as pipeline operators log from several goroutines.

var logMutex  sync.Mutex

// The optional additional file to log into
var logFile   *bufio.Writer
var logFileOS *os.File

// Enables logging to file. Closes a previously opened log file, if any
func LogAlsoToFile(fileName string) (err error) {
	logMutex.Lock()
	defer logMutex.Unlock()

	if logFile!=nil {
		if err=logFile.Flush();   err!=nil { return err }
		if err=logFileOS.Close(); err!=nil { return err }
		logFile, logFileOS = nil, nil
	}
	f, err:=os.OpenFile(fileName, os.O_CREATE | os.O_TRUNC | os.O_WRONLY, 0666)
	if err!=nil { return err }
	logFileOS=f
	logFile  =bufio.NewWriter(logFileOS)
	return nil
}

// Writer which tees into stdout and the optional log file. Hand this to
// pipeline contexts, so operator output lands in the log file as well
type logWriter struct{}

func (logWriter) Write(p []byte) (n int, err error) {
	logMutex.Lock()
	defer logMutex.Unlock()

	n, err=os.Stdout.Write(p)
	if err!=nil || logFile==nil { return n, err }
	return logFile.Write(p)
}

// Returns the singleton log writer
func LogWriter() io.Writer {
	return logWriter{}
}

func LogPrint(args ...interface{}) (n int, err error) {
	return fmt.Fprint(logWriter{}, args...)
}

func LogPrintln(args ...interface{}) (n int, err error) {
	return fmt.Fprintln(logWriter{}, args...)
}

func LogPrintf(format string, args ...interface{}) (n int, err error) {
	return fmt.Fprintf(logWriter{}, format, args...)
}

func LogFatal(args ...interface{}) {
	LogPrintln(args...)
	closeLogFile()
	os.Exit(1)
}

func LogFatalf(format string, args ...interface{}) {
	LogPrintf(format, args...)
	closeLogFile()
	os.Exit(1)
}

// Flushes the log file to disk, if one is open
func LogSync() {
	logMutex.Lock()
	defer logMutex.Unlock()

	if logFile==nil { return }
	logFile.Flush()
	logFileOS.Sync()
}

func closeLogFile() {
	logMutex.Lock()
	defer logMutex.Unlock()

	if logFile==nil { return }
	logFile.Flush()
	logFileOS.Close()
	logFile, logFileOS = nil, nil
}

// Writer which serializes writes into an underlying writer, e.g. an HTTP response
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// Returns a writer safe for concurrent use which forwards to w
func NewSyncWriter(w io.Writer) io.Writer {
	return &syncWriter{w: w}
}
