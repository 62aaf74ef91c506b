// Package clipboard copies rendered scan output to the system clipboard.
package clipboard

import (
	"fmt"

	"github.com/atotto/clipboard"
)

const errorCopyFormat = "copy to clipboard: %w"

// Copier copies textual data to the system clipboard.
type Copier interface {
	Copy(text string) error
}

// Service implements Copier using github.com/atotto/clipboard.
type Service struct{}

// NewService constructs a Clipboard service implementation.
func NewService() *Service {
	return &Service{}
}

// Copy writes text to the system clipboard.
func (service *Service) Copy(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf(errorCopyFormat, err)
	}
	return nil
}

// Func adapts a plain function to Copier.
type Func func(text string) error

// Copy calls the function.
func (copyFunction Func) Copy(text string) error {
	return copyFunction(text)
}

var (
	_ Copier = (*Service)(nil)
	_ Copier = Func(nil)
)
