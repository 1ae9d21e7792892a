package ocr

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestArgs(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		e := New(Config{})
		args := e.args("in.pdf", "out.pdf")

		joined := strings.Join(args, " ")
		for _, flag := range []string{"--deskew", "--rotate-pages", "--force-ocr"} {
			if !strings.Contains(joined, flag) {
				t.Errorf("expected %s in args, got %v", flag, args)
			}
		}
		if args[len(args)-2] != "in.pdf" || args[len(args)-1] != "out.pdf" {
			t.Errorf("expected input/output as trailing args, got %v", args)
		}
	})

	t.Run("joins languages with plus", func(t *testing.T) {
		e := New(Config{Languages: []string{"eng", "deu"}})
		args := e.args("in.pdf", "out.pdf")

		found := false
		for i, a := range args {
			if a == "-l" && i+1 < len(args) && args[i+1] == "eng+deu" {
				found = true
			}
		}
		if !found {
			t.Errorf("expected -l eng+deu, got %v", args)
		}
	})
}

func TestProcessFailure(t *testing.T) {
	t.Run("missing binary is a Failure naming the input", func(t *testing.T) {
		e := New(Config{Binary: "definitely-not-ocrmypdf-12345", Timeout: 5 * time.Second})
		err := e.Process(context.Background(), "in.pdf", "out.pdf")
		if err == nil {
			t.Fatal("expected error for missing binary")
		}

		var f *Failure
		if !errors.As(err, &f) {
			t.Fatalf("expected Failure, got %T", err)
		}
		if f.Path != "in.pdf" {
			t.Errorf("expected failure to name in.pdf, got %s", f.Path)
		}
	})
}

func TestLastLine(t *testing.T) {
	got := lastLine("InputFileError\n\n  Tagged PDF\nPriorOcrFoundError: page already has text\n")
	if got != "PriorOcrFoundError: page already has text" {
		t.Errorf("unexpected last line: %q", got)
	}
}

func TestMockEngine(t *testing.T) {
	t.Run("counts invocations", func(t *testing.T) {
		e := NewMockEngine()
		e.Output = []byte("pdf bytes")

		out := t.TempDir() + "/out.pdf"
		if err := e.Process(context.Background(), "in.pdf", out); err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		if e.ProcessCount() != 1 {
			t.Errorf("expected 1 invocation, got %d", e.ProcessCount())
		}
	})

	t.Run("fails when configured", func(t *testing.T) {
		e := NewMockEngine()
		e.ShouldFail = true

		err := e.Process(context.Background(), "in.pdf", "out.pdf")
		var f *Failure
		if !errors.As(err, &f) {
			t.Fatalf("expected Failure, got %v", err)
		}
	})
}
