package replace

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/baditaflorin/go_asm_preprocess/internal/core/domain"
	"github.com/baditaflorin/go_asm_preprocess/internal/ports"
)

// FindAndReplace substitutes every non-overlapping occurrence of find in
// text, left to right. Replacement text is never rescanned. An empty find
// leaves text unchanged.
func FindAndReplace(text, find, replace string) string {
	if find == "" {
		return text
	}
	return strings.ReplaceAll(text, find, replace)
}

// Table is an ordered list of substitutions. Each entry sees the output of
// the entries before it.
type Table []domain.Substitution

// Apply runs every substitution of the table over text in order.
func (t Table) Apply(text string) string {
	for _, s := range t {
		text = FindAndReplace(text, s.Find, s.Replace)
	}
	return text
}

// ParseTable reads FIND=REPLACE lines. Blank lines and lines starting with
// ';' are ignored; the first '=' separates the two sides, so a replacement
// may itself contain '='.
func ParseTable(r io.Reader) (Table, error) {
	var table Table
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}

		find, repl, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("substitution on line %d: missing '='", lineNo)
		}
		find = strings.TrimSpace(find)
		if find == "" {
			return nil, fmt.Errorf("substitution on line %d: empty pattern", lineNo)
		}
		table = append(table, domain.Substitution{Find: find, Replace: strings.TrimSpace(repl)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read substitutions: %w", err)
	}
	return table, nil
}

// Replacer applies a substitution table and logs what it changed.
type Replacer struct {
	table  Table
	logger ports.Logger
}

// NewReplacer creates a replacer for the given table. The table is copied.
func NewReplacer(table Table, logger ports.Logger) *Replacer {
	t := make(Table, len(table))
	copy(t, table)
	return &Replacer{table: t, logger: logger}
}

// Replace applies the table to text.
func (r *Replacer) Replace(text string) string {
	if len(r.table) == 0 {
		return text
	}
	out := r.table.Apply(text)
	if out != text {
		r.logger.Debug("Applied substitutions",
			"input", text,
			"output", out,
			"entries", len(r.table),
		)
	}
	return out
}
