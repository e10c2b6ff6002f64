// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package checkpoint

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

// StepTracker records the index of the last completed pipeline step.
type StepTracker struct {
	Path string
}

// LastCompleted returns the last completed step index, or -1 when no
// progress file exists.
func (t *StepTracker) LastCompleted() (int, error) {
	data, err := os.ReadFile(t.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return -1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading step progress %s: %w", t.Path, err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parsing step progress %s: %w", t.Path, err)
	}
	return n, nil
}

// Complete records step as done.
func (t *StepTracker) Complete(step int) error {
	if err := writeFileAtomic(t.Path, []byte(strconv.Itoa(step))); err != nil {
		return fmt.Errorf("saving step progress %s: %w", t.Path, err)
	}
	return nil
}

// Clear removes the progress file once every step has run.
func (t *StepTracker) Clear() error {
	if err := os.Remove(t.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing step progress %s: %w", t.Path, err)
	}
	return nil
}
