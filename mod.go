// Package zktally implements the ballot verification, tally aggregation and
// audit core of a privacy-preserving voting protocol.
//
// The core is made of three contracts that operate on a shared key/value
// store: proofs admits zero-knowledge vote proofs, tally folds verified counts
// into homomorphic accumulators and publishes a combined tally, and audit
// replays verification before it records results and handles disputes.
package zktally

import (
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

var logout = zerolog.ConsoleWriter{
	Out:        os.Stdout,
	TimeFormat: time.RFC3339,
}

// Logger is a globally available logger instance.
var Logger = zerolog.New(logout).
	With().Timestamp().Logger().
	With().Caller().Logger().
	Level(zerolog.InfoLevel)

// PromCollectors exposes Prometheus collectors created in packages. The
// collectors are registered by whoever exposes the metrics.
var PromCollectors []prometheus.Collector
