package sheets

import (
	"context"
	"time"

	"pondo/internal/core"
)

// ActivityRow is one exported line of the activity log: what happened, to
// which entry, and the entry's state at export time. Deleted entries carry
// identifiers only.
type ActivityRow struct {
	Timestamp time.Time
	Op        string
	Kind      core.EntryKind
	ID        int64
	Username  string
	Name      string
	Category  string
	Date      core.Date
	Amount    core.Money
}

// Ports for outbound adapters.
type (
	ActivityWriter interface {
		Append(ctx context.Context, row ActivityRow) (rowRef string, err error)
	}
)
