// Package execution runs the operations of the contracts as atomic units.
//
// Every operation executes inside one store update: the snapshot it writes to
// is committed when the operation succeeds and discarded as a whole when it
// fails. The result of each operation is logged with a correlation id and
// counted in the Prometheus collectors.
package execution

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"go.dedis.ch/zktally"
	"go.dedis.ch/zktally/core/store"
)

var (
	promAccepted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "zktally_operations_accepted_total",
		Help: "total number of operations committed",
	}, []string{"contract", "operation"})

	promRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "zktally_operations_rejected_total",
		Help: "total number of operations rolled back",
	}, []string{"contract", "operation"})
)

func init() {
	zktally.PromCollectors = append(zktally.PromCollectors, promAccepted, promRejected)
}

// Result is the result of an operation execution.
type Result struct {
	// Accepted is the success state of the operation.
	Accepted bool

	// Message gives a chance to the execution to explain why an operation has
	// failed.
	Message string
}

// Executor applies the operations of a contract to the store.
type Executor struct {
	db       store.DB
	contract string
	logger   zerolog.Logger
}

// NewExecutor returns an executor for the contract.
func NewExecutor(db store.DB, contract string) Executor {
	return Executor{
		db:       db,
		contract: contract,
		logger:   zktally.Logger.With().Str("contract", contract).Logger(),
	}
}

// Logger returns the logger of the contract.
func (e Executor) Logger() *zerolog.Logger {
	return &e.logger
}

// Update runs the operation as one atomic unit and returns its error.
func (e Executor) Update(operation string, fn func(store.Snapshot) error) error {
	res, err := e.Execute(operation, fn)
	if err != nil {
		return err
	}

	e.logger.Trace().Str("operation", operation).Bool("accepted", res.Accepted).Send()

	return nil
}

// Execute runs the operation as one atomic unit. The result is returned along
// the error of the operation.
func (e Executor) Execute(operation string, fn func(store.Snapshot) error) (Result, error) {
	logger := e.logger.With().
		Str("operation", operation).
		Stringer("op", xid.New()).
		Logger()

	err := e.db.Update(fn)
	if err != nil {
		promRejected.WithLabelValues(e.contract, operation).Inc()

		logger.Debug().Err(err).Msg("operation rolled back")

		return Result{Message: err.Error()}, err
	}

	promAccepted.WithLabelValues(e.contract, operation).Inc()

	logger.Debug().Msg("operation committed")

	return Result{Accepted: true}, nil
}

// View runs a read-only function on the store. Errors are logged and
// reported as false.
func (e Executor) View(fn func(store.Readable) error) bool {
	err := e.db.View(fn)
	if err != nil {
		e.logger.Warn().Err(err).Msg("failed to read the store")
		return false
	}

	return true
}

// Query runs a read-only function on the store and returns its error.
func (e Executor) Query(fn func(store.Readable) error) error {
	return e.db.View(fn)
}
