package ports

import (
	"context"

	"github.com/jeffreymorganio/songza-commands-for-enso/internal/domain"
)

// Host is the callback surface of the host application. The host must
// tolerate concurrent, unordered calls from independent workers.
type Host interface {
	// DisplayMessage shows an HTML status fragment to the user.
	DisplayMessage(ctx context.Context, html string) error

	// InsertAtCursor inserts markup at the user's cursor on behalf of the
	// named command.
	InsertAtCursor(ctx context.Context, markup, commandName string) error

	// Selection returns the user's current text selection.
	Selection(ctx context.Context) (string, error)
}

// Registrar announces and retracts commands on the host endpoint.
type Registrar interface {
	RegisterCommand(ctx context.Context, endpointURL string, cmd domain.RegisteredCommand) error

	// SetValidArguments replaces the postfix set of a bounded command.
	SetValidArguments(ctx context.Context, endpointURL, name string, values []string) error

	UnregisterCommand(ctx context.Context, endpointURL, name string) error
}
