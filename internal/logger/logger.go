package logger

import (
	"io"
	"log"
	"os"
	"path/filepath"
)

var (
	// Default logger writes to stderr
	std   = log.New(os.Stderr, "[scrtool] ", log.LstdFlags)
	debug bool
)

func SetOutput(output io.Writer) {
	std.SetOutput(output)
}

// SetDebug enables Debugf output.
func SetDebug(on bool) {
	debug = on
}

// UseFile redirects output to a log file under the user cache directory.
// The LSP server must keep stdout and stderr free for the protocol channel.
func UseFile() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	dir = filepath.Join(dir, "scrtool")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, "scrtool.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return "", err
	}
	std.SetOutput(f)
	return path, nil
}

func Printf(format string, v ...interface{}) {
	std.Printf(format, v...)
}

func Println(v ...interface{}) {
	std.Println(v...)
}

func Debugf(format string, v ...interface{}) {
	if debug {
		std.Printf("DEBUG "+format, v...)
	}
}

func Errorf(format string, v ...interface{}) {
	std.Printf("ERROR "+format, v...)
}

func Fatal(v ...interface{}) {
	std.Fatal(v...)
}

func Fatalf(format string, v ...interface{}) {
	std.Fatalf(format, v...)
}
