// Package enhance integrates the image-enhancement collaborator that
// pre-processes degraded page scans before OCR. The enhancement network is a
// black box: the pipeline hands it an image path and a task, and gets back
// the path of a replacement image.
package enhance

import (
	"context"
	"fmt"
)

// Task selects the enhancement applied to a page image.
type Task string

const (
	TaskDeblur      Task = "deblur"
	TaskBinarize    Task = "binarize"
	TaskUnwatermark Task = "unwatermark"
)

// Valid reports whether the task is one the collaborator understands.
func (t Task) Valid() bool {
	switch t {
	case TaskDeblur, TaskBinarize, TaskUnwatermark:
		return true
	}
	return false
}

// Enhancer turns a page image into an enhanced replacement image.
type Enhancer interface {
	// Enhance processes the image at imagePath and returns the path of the
	// enhanced image. The input image is not modified.
	Enhance(ctx context.Context, imagePath string, task Task) (string, error)

	Name() string
}

// Error reports an enhancement failure for one page image.
type Error struct {
	ImagePath string
	Task      Task
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("enhance %s (%s): %v", e.ImagePath, e.Task, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
