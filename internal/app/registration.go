package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jeffreymorganio/songza-commands-for-enso/internal/domain"
	"github.com/jeffreymorganio/songza-commands-for-enso/internal/ports"
	"github.com/jeffreymorganio/songza-commands-for-enso/pkg/log"
)

// ErrNotRegistered is returned when updating a command that is not currently
// registered with the host.
var ErrNotRegistered = errors.New("command not registered")

// Registration tracks which commands the host currently knows about so they
// can be retracted exactly once.
type Registration struct {
	registrar   ports.Registrar
	endpointURL string
	logger      log.Logger

	mu         sync.Mutex
	registered []domain.RegisteredCommand
}

// NewRegistration creates a registration for the endpoint at endpointURL.
func NewRegistration(registrar ports.Registrar, endpointURL string, logger log.Logger) *Registration {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Registration{
		registrar:   registrar,
		endpointURL: endpointURL,
		logger:      logger,
	}
}

// Register announces cmds in order, pushing the valid arguments of bounded
// commands. On failure every command registered by this call is retracted
// before the error is returned.
func (r *Registration) Register(ctx context.Context, cmds []domain.RegisteredCommand) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var done []domain.RegisteredCommand
	for _, cmd := range cmds {
		if err := r.registrar.RegisterCommand(ctx, r.endpointURL, cmd); err != nil {
			r.retract(ctx, done)
			return fmt.Errorf("register %q: %w", cmd.Name, err)
		}
		done = append(done, cmd)

		if cmd.Policy == domain.PolicyBounded {
			if err := r.registrar.SetValidArguments(ctx, r.endpointURL, cmd.Name, cmd.ValidArguments); err != nil {
				r.retract(ctx, done)
				return fmt.Errorf("set valid arguments for %q: %w", cmd.Name, err)
			}
		}

		r.logger.Info("command registered",
			log.String("name", cmd.Name),
			log.String("policy", cmd.Policy.Tag()),
		)
	}

	r.registered = append(r.registered, done...)
	return nil
}

// UpdateValidArguments replaces the valid arguments of a registered bounded
// command.
func (r *Registration) UpdateValidArguments(ctx context.Context, name string, values []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, cmd := range r.registered {
		if cmd.Name != name || cmd.Policy != domain.PolicyBounded {
			continue
		}
		if err := r.registrar.SetValidArguments(ctx, r.endpointURL, name, values); err != nil {
			return fmt.Errorf("set valid arguments for %q: %w", name, err)
		}
		lists := make([]string, len(values))
		copy(lists, values)
		r.registered[i].ValidArguments = lists
		r.logger.Info("valid arguments updated", log.String("name", name), log.Strings("values", values))
		return nil
	}
	return fmt.Errorf("%w: %q", ErrNotRegistered, name)
}

// Registered returns the names currently registered.
func (r *Registration) Registered() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.registered))
	for _, cmd := range r.registered {
		names = append(names, cmd.Name)
	}
	return names
}

// Unregister retracts every registered command. It attempts all of them even
// when some fail, and later calls are no-ops.
func (r *Registration) Unregister(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cmds := r.registered
	r.registered = nil
	return r.retract(ctx, cmds)
}

// retract unregisters cmds in reverse order. Caller holds r.mu.
func (r *Registration) retract(ctx context.Context, cmds []domain.RegisteredCommand) error {
	var errs []error
	for i := len(cmds) - 1; i >= 0; i-- {
		name := cmds[i].Name
		if err := r.registrar.UnregisterCommand(ctx, r.endpointURL, name); err != nil {
			r.logger.Error("unregister failed", log.String("name", name), log.Err(err))
			errs = append(errs, fmt.Errorf("unregister %q: %w", name, err))
			continue
		}
		r.logger.Info("command unregistered", log.String("name", name))
	}
	return errors.Join(errs...)
}
