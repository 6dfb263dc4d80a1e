// Package xmlrpc adapts the host application's XML-RPC endpoint to the
// ports.Host and ports.Registrar interfaces.
package xmlrpc

import (
	"context"
	"fmt"
	"net/http"
	"net/rpc"
	"time"

	"github.com/kolo/xmlrpc"

	"github.com/jeffreymorganio/songza-commands-for-enso/internal/domain"
	"github.com/jeffreymorganio/songza-commands-for-enso/internal/ports"
	"github.com/jeffreymorganio/songza-commands-for-enso/pkg/log"
)

// Host method names.
const (
	methodDisplayMessage  = "displayMessage"
	methodInsertAtCursor  = "insertUnicodeAtCursor"
	methodGetSelection    = "getUnicodeSelection"
	methodRegisterCommand = "registerCommand"
	methodSetPostfixes    = "setCommandValidPostfixes"
	methodUnregister      = "unregisterCommand"
)

// DefaultTimeout bounds a single host call when none is configured.
const DefaultTimeout = 10 * time.Second

// HostClient calls the host endpoint. Each call opens its own client over a
// shared transport, so concurrent workers never queue behind one another.
type HostClient struct {
	url       string
	transport http.RoundTripper
	timeout   time.Duration
	logger    log.Logger
}

// NewHostClient creates a client for the host endpoint at url. A nil
// transport selects http.DefaultTransport.
func NewHostClient(url string, transport http.RoundTripper, timeout time.Duration, logger log.Logger) *HostClient {
	if transport == nil {
		transport = http.DefaultTransport
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &HostClient{
		url:       url,
		transport: transport,
		timeout:   timeout,
		logger:    logger,
	}
}

// DisplayMessage implements ports.Host.
func (c *HostClient) DisplayMessage(ctx context.Context, html string) error {
	return c.call(ctx, methodDisplayMessage, []interface{}{html}, nil)
}

// InsertAtCursor implements ports.Host.
func (c *HostClient) InsertAtCursor(ctx context.Context, markup, commandName string) error {
	return c.call(ctx, methodInsertAtCursor, []interface{}{markup, commandName}, nil)
}

// Selection implements ports.Host. A nil selection is reported as "".
func (c *HostClient) Selection(ctx context.Context) (string, error) {
	var reply interface{}
	if err := c.call(ctx, methodGetSelection, []interface{}{}, &reply); err != nil {
		return "", err
	}
	switch v := reply.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return "", fmt.Errorf("%s: unexpected reply type %T", methodGetSelection, reply)
	}
}

// RegisterCommand implements ports.Registrar.
func (c *HostClient) RegisterCommand(ctx context.Context, endpointURL string, cmd domain.RegisteredCommand) error {
	return c.call(ctx, methodRegisterCommand, []interface{}{
		endpointURL,
		cmd.Name,
		cmd.Description,
		cmd.HelpMarkup,
		cmd.Policy.Tag(),
	}, nil)
}

// SetValidArguments implements ports.Registrar.
func (c *HostClient) SetValidArguments(ctx context.Context, endpointURL, name string, values []string) error {
	if values == nil {
		values = []string{}
	}
	return c.call(ctx, methodSetPostfixes, []interface{}{endpointURL, name, values}, nil)
}

// UnregisterCommand implements ports.Registrar.
func (c *HostClient) UnregisterCommand(ctx context.Context, endpointURL, name string) error {
	return c.call(ctx, methodUnregister, []interface{}{endpointURL, name}, nil)
}

func (c *HostClient) call(ctx context.Context, method string, args []interface{}, reply interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	client, err := xmlrpc.NewClient(c.url, contextTransport{ctx: ctx, base: c.transport})
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer client.Close()

	start := time.Now()
	call := client.Go(method, args, reply, make(chan *rpc.Call, 1))

	select {
	case <-call.Done:
		if call.Error != nil {
			c.logger.Debug("host call failed",
				log.String("method", method),
				log.Duration("took", time.Since(start)),
				log.Err(call.Error),
			)
			return fmt.Errorf("%s: %w", method, call.Error)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", method, ctx.Err())
	}
}

// contextTransport binds every request made by a per-call client to the
// call's context, so cancellation aborts the HTTP exchange.
type contextTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.ctx))
}

var (
	_ ports.Host      = (*HostClient)(nil)
	_ ports.Registrar = (*HostClient)(nil)
)
