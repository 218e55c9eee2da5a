// logger.go
package asmpreprocess

import (
	"io"

	"github.com/baditaflorin/go_asm_preprocess/internal/adapters/logger"
	"github.com/baditaflorin/l"
)

// createDefaultLogger creates an l logger writing human readable records to output.
func createDefaultLogger(output io.Writer) (l.Logger, error) {
	return l.NewStandardFactory().CreateLogger(logger.DefaultConfig(output))
}
