package resolver

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
)

// audit is an append-only sink recording one line per dependency query:
// client id, timestamp, the atom queried, and the outcome. All methods
// are nil-safe so call sites need no guards.
type audit struct {
	w  io.Writer
	id uuid.UUID
}

func newAudit(w io.Writer, id uuid.UUID) *audit {
	return &audit{w: w, id: id}
}

func (a *audit) record(atom, outcome string) {
	if a == nil {
		return
	}
	fmt.Fprintf(a.w, "%s\t%s\t%s\t%s\n",
		a.id, time.Now().UTC().Format(time.RFC3339), atom, outcome)
}

// OpenAuditLog opens (creating or appending) the audit log file used
// for --log-file and PKG_CONFIG_LOG_FILE. The caller owns the returned
// handle.
func OpenAuditLog(path string) (io.WriteCloser, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	return f, nil
}
