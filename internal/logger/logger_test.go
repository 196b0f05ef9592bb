package logger

import (
	"bytes"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"testing"
)

func TestLoggerPrint(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stderr) })

	Printf("Test Printf %d", 123)
	Println("Test Println")
	Info("structured", "param", "THR_MIN")

	output := buf.String()
	if !strings.Contains(output, "Test Printf 123") {
		t.Error("Printf output missing")
	}
	if !strings.Contains(output, "Test Println") {
		t.Error("Println output missing")
	}
	if !strings.Contains(output, "param=THR_MIN") {
		t.Errorf("structured attribute missing: %q", output)
	}
}

func TestLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(slog.LevelInfo)
	})

	Debug("hidden")
	if strings.Contains(buf.String(), "hidden") {
		t.Error("debug output should be filtered at info level")
	}

	SetLevel(slog.LevelDebug)
	Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Error("debug output missing at debug level")
	}
}

func TestLoggerFatal(t *testing.T) {
	if os.Getenv("TEST_LOGGER_FATAL") == "1" {
		Fatal("Test Fatal")
		return
	}
	cmd := exec.Command(os.Args[0], "-test.run=TestLoggerFatal")
	cmd.Env = append(os.Environ(), "TEST_LOGGER_FATAL=1")
	err := cmd.Run()
	if e, ok := err.(*exec.ExitError); ok && !e.Success() {
		return
	}
	t.Fatalf("process ran with err %v, want exit status 1", err)
}

func TestLoggerFatalf(t *testing.T) {
	if os.Getenv("TEST_LOGGER_FATALF") == "1" {
		Fatalf("Test Fatalf %d", 456)
		return
	}
	cmd := exec.Command(os.Args[0], "-test.run=TestLoggerFatalf")
	cmd.Env = append(os.Environ(), "TEST_LOGGER_FATALF=1")
	err := cmd.Run()
	if e, ok := err.(*exec.ExitError); ok && !e.Success() {
		return
	}
	t.Fatalf("process ran with err %v, want exit status 1", err)
}
