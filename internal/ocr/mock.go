package ocr

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
)

// MockEngine is an Engine for testing. It copies the input to the output
// path (or writes fixed content) without running any real OCR.
type MockEngine struct {
	ShouldFail bool
	Output     []byte // written to outputPDF; nil copies the input

	processCount atomic.Int64
}

// NewMockEngine creates a mock OCR engine.
func NewMockEngine() *MockEngine {
	return &MockEngine{}
}

// Name returns the engine identifier.
func (e *MockEngine) Name() string {
	return "mock-ocr"
}

// Process simulates an OCR pass.
func (e *MockEngine) Process(ctx context.Context, inputPDF, outputPDF string) error {
	e.processCount.Add(1)

	if e.ShouldFail {
		return &Failure{Path: inputPDF, Err: fmt.Errorf("mock engine configured to fail")}
	}

	data := e.Output
	if data == nil {
		var err error
		data, err = os.ReadFile(inputPDF)
		if err != nil {
			return &Failure{Path: inputPDF, Err: err}
		}
	}
	if err := os.WriteFile(outputPDF, data, 0o644); err != nil {
		return &Failure{Path: inputPDF, Err: err}
	}
	return nil
}

// ProcessCount returns how many times Process was called.
func (e *MockEngine) ProcessCount() int64 {
	return e.processCount.Load()
}

// Verify interface
var _ Engine = (*MockEngine)(nil)
