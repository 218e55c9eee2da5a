// preprocessor.go
// Package asmpreprocess exposes the assembler text preprocessing operations as
// plain functions:
//
//	ToUpper("mov r1, r2")                          // "MOV R1, R2"
//	FindAndReplace("load $addr", "$addr", "0x10")  // "load 0x10"
//	ConvertRadix("FF", 10, 16)                     // "255", nil
//
// They are backed by a shared, lazily created preprocess.Preprocessor that
// logs nothing until EnableLogging is called. Use pkg/preprocess directly for
// custom configuration.
package asmpreprocess

import (
	"context"
	"io"
	"sync"

	"github.com/baditaflorin/go_asm_preprocess/pkg/preprocess"
)

var (
	mu         sync.Mutex
	defaultPre *preprocess.Preprocessor
)

func current() *preprocess.Preprocessor {
	mu.Lock()
	defer mu.Unlock()

	if defaultPre == nil {
		p, err := preprocess.New(preprocess.WithQuietLogger())
		if err != nil {
			// Only a bad option can fail, and none are passed here.
			panic(err)
		}
		defaultPre = p
	}
	return defaultPre
}

// EnableLogging replaces the shared preprocessor with one that logs to output.
// The previous one is not closed, so calls already running on it can keep
// logging; call EnableLogging once at startup rather than repeatedly.
func EnableLogging(output io.Writer) error {
	lg, err := createDefaultLogger(output)
	if err != nil {
		return err
	}
	p, err := preprocess.New(preprocess.WithLogger(lg))
	if err != nil {
		return err
	}

	mu.Lock()
	defaultPre = p
	mu.Unlock()
	return nil
}

// ToUpper converts every letter of text to upper case.
func ToUpper(text string) string {
	return current().ToUpper(text)
}

// StripInfo reads r to EOF and returns it without comments, padding and
// blank lines. r is not closed.
func StripInfo(ctx context.Context, r io.Reader) (string, error) {
	return current().StripInfo(ctx, r)
}

// FindAndReplace substitutes every non-overlapping occurrence of find.
func FindAndReplace(text, find, replacement string) string {
	return current().FindAndReplace(text, find, replacement)
}

// ConvertRadix re-renders text, a literal in srcRadix, in destRadix.
func ConvertRadix(text string, destRadix, srcRadix uint8) (string, error) {
	return current().ConvertRadix(text, destRadix, srcRadix)
}
