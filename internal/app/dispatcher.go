package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jeffreymorganio/songza-commands-for-enso/internal/domain"
	"github.com/jeffreymorganio/songza-commands-for-enso/internal/metrics"
	"github.com/jeffreymorganio/songza-commands-for-enso/internal/xmlrpc"
	"github.com/jeffreymorganio/songza-commands-for-enso/pkg/log"
)

// CallCommandMethod is the only inbound method.
const CallCommandMethod = "callCommand"

// Application fault codes returned by callCommand.
const (
	FaultUnknownCommand = xmlrpc.FaultApplication
	FaultBusy           = xmlrpc.FaultApplication - 1
)

// Dispatcher routes host invocations to pooled workers.
type Dispatcher struct {
	pool    *Pool
	worker  *Worker
	metrics *metrics.Metrics
	logger  log.Logger
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(pool *Pool, worker *Worker, m *metrics.Metrics, logger log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Dispatcher{
		pool:    pool,
		worker:  worker,
		metrics: m,
		logger:  logger,
	}
}

// CallCommand starts the worker for name and acknowledges immediately; true
// means the worker was started, not that it finished. Unknown names fail with
// domain.ErrUnknownCommand and a full pool with domain.ErrWorkerPoolFull.
func (d *Dispatcher) CallCommand(name, postfix string) (bool, error) {
	cmd, err := domain.ParseCommand(name)
	if err != nil {
		d.metrics.CommandDispatched(cmd.String(), metrics.ResultUnknown)
		d.logger.Warn("unknown command", log.String("name", name))
		return false, err
	}

	inv := domain.Invocation{Command: cmd, Postfix: postfix}
	runID, err := d.pool.Submit(cmd.String(), func(ctx context.Context, logger log.Logger) {
		d.worker.Run(ctx, logger, inv)
	})
	if err != nil {
		d.metrics.CommandDispatched(cmd.String(), metrics.ResultRejected)
		d.logger.Warn("command rejected", log.String("command", cmd.String()), log.Err(err))
		return false, fmt.Errorf("%s: %w", name, err)
	}

	d.metrics.CommandDispatched(cmd.String(), metrics.ResultAccepted)
	d.logger.Info("command accepted",
		log.String("command", cmd.String()),
		log.String("postfix", postfix),
		log.String("run_id", runID),
	)
	return true, nil
}

// Handler adapts CallCommand to the XML-RPC server. The postfix parameter may
// be omitted.
func (d *Dispatcher) Handler() xmlrpc.HandlerFunc {
	return func(ctx context.Context, params []interface{}) (interface{}, error) {
		name, err := xmlrpc.StringParam(params, 0)
		if err != nil {
			return nil, err
		}
		var postfix string
		if len(params) > 1 {
			if postfix, err = xmlrpc.StringParam(params, 1); err != nil {
				return nil, err
			}
		}

		ok, err := d.CallCommand(name, postfix)
		if err != nil {
			return nil, commandFault(err)
		}
		return ok, nil
	}
}

func commandFault(err error) *xmlrpc.Fault {
	switch {
	case errors.Is(err, domain.ErrUnknownCommand):
		return &xmlrpc.Fault{Code: FaultUnknownCommand, Message: err.Error()}
	case errors.Is(err, domain.ErrWorkerPoolFull), errors.Is(err, domain.ErrNotRunning):
		return &xmlrpc.Fault{Code: FaultBusy, Message: err.Error()}
	default:
		return &xmlrpc.Fault{Code: xmlrpc.FaultInternal, Message: err.Error()}
	}
}
