// Package analyze answers natural-language questions about a user's
// records. The text-completion service is an opaque collaborator behind the
// Completer interface; records reach it only as a read snapshot.
package analyze

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tallybook-dev/tallybook/internal/ledger"
	"github.com/tallybook-dev/tallybook/internal/model"
)

// Completer is an opaque request/response text-completion service.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Reader is the slice of the record service the analyzer consumes.
type Reader interface {
	GetAll() ([]model.Record, error)
}

// Analyzer builds a prompt from a record snapshot and asks the Completer.
type Analyzer struct {
	reader    Reader
	completer Completer
	timeout   time.Duration
}

// New creates an Analyzer. timeout bounds the completion call; it is the
// one operation in the system with an externally imposed deadline.
func New(reader Reader, completer Completer, timeout time.Duration) *Analyzer {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Analyzer{reader: reader, completer: completer, timeout: timeout}
}

// Ask answers question against the current (cache-served) snapshot.
func (a *Analyzer) Ask(ctx context.Context, question string) (string, error) {
	records, err := a.reader.GetAll()
	if err != nil {
		return "", fmt.Errorf("loading records for analysis: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	answer, err := a.completer.Complete(ctx, BuildPrompt(records, question))
	if err != nil {
		return "", fmt.Errorf("completing analysis: %w", err)
	}
	return answer, nil
}

// BuildPrompt renders records as a compact pipe-separated table followed by
// the user's question.
func BuildPrompt(records []model.Record, question string) string {
	var b strings.Builder
	b.WriteString("You are a personal finance assistant. Below is a table of the user's transactions,\n")
	b.WriteString("one per line, fields separated by | in this order:\n")
	b.WriteString(ledger.Header + "\n\n")

	for _, rec := range records {
		b.WriteString(strings.Join(ledger.MarshalRecord(rec), "|"))
		b.WriteByte('\n')
	}

	b.WriteString("\nAnswer the following question about these transactions. Be concise and\n")
	b.WriteString("use the stored currency for amounts.\n\n")
	b.WriteString("Question: " + question + "\n")
	return b.String()
}
