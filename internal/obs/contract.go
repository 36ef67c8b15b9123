// Copyright 2026 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package obs

import (
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kraklabs/isg/internal/isgerrors"
)

// StrictEnv is the environment variable that upgrades a contract
// violation from a warning to a returned error.
const StrictEnv = "ISG_STRICT_PERF"

// Strict reports whether ISG_STRICT_PERF is set to a truthy value.
func Strict() bool {
	v := os.Getenv(StrictEnv)
	return v != "" && v != "0" && v != "false"
}

var (
	violationsOnce sync.Once
	violations     *prometheus.CounterVec
)

func violationsCounter() *prometheus.CounterVec {
	violationsOnce.Do(func() {
		violations = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "isg_performance_contract_violations_total",
			Help: "Count of operations that exceeded their documented performance contract, by operation name.",
		}, []string{"operation"})
		prometheus.MustRegister(violations)
	})
	return violations
}

// Timer measures elapsed wall time for a single operation.
type Timer struct {
	op    string
	start time.Time
}

// StartTimer begins timing op.
func StartTimer(op string) Timer {
	return Timer{op: op, start: time.Now()}
}

// Check compares the timer's elapsed duration against limit. In
// non-strict mode (the default) a violation is logged and counted and
// Check returns nil; in strict mode (ISG_STRICT_PERF set) it returns
// isgerrors.NewPerformanceViolation instead.
func (t Timer) Check(limit time.Duration) error {
	elapsed := time.Since(t.start)
	if elapsed <= limit {
		return nil
	}

	violationsCounter().WithLabelValues(t.op).Inc()
	slog.Warn("obs.performance_contract_violation",
		"operation", t.op,
		"limit_ms", limit.Milliseconds(),
		"actual_ms", elapsed.Milliseconds(),
	)

	if Strict() {
		return isgerrors.NewPerformanceViolation(t.op, limit.Milliseconds(), elapsed.Milliseconds())
	}
	return nil
}
