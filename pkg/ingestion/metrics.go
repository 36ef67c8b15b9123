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

package ingestion

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ingestMetrics holds Prometheus metrics for the ingestion subsystem.
type ingestMetrics struct {
	once sync.Once

	filesTotal  *prometheus.CounterVec
	nodesTotal  prometheus.Counter
	edgesTotal  prometheus.Counter
	parseSecond prometheus.Histogram
}

var globalIngestMetrics ingestMetrics

func (m *ingestMetrics) init() {
	m.once.Do(func() {
		m.filesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "isg_ingest_files_total",
			Help: "Files processed during ingestion, by outcome",
		}, []string{"outcome"})
		m.nodesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "isg_ingest_nodes_total",
			Help: "Nodes created during ingestion",
		})
		m.edgesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "isg_ingest_edges_total",
			Help: "Edges created during ingestion",
		})
		buckets := []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}
		m.parseSecond = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "isg_ingest_parse_seconds",
			Help:    "Per-file parse duration",
			Buckets: buckets,
		})

		prometheus.MustRegister(m.filesTotal, m.nodesTotal, m.edgesTotal, m.parseSecond)
	})
}

// defaultIngestMetrics returns the process-wide ingestion metrics,
// registering them with the default Prometheus registry on first use.
func defaultIngestMetrics() *ingestMetrics {
	globalIngestMetrics.init()
	return &globalIngestMetrics
}

func (m *ingestMetrics) observeFile(ok bool, d time.Duration) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.filesTotal.WithLabelValues(outcome).Inc()
	m.parseSecond.Observe(d.Seconds())
}

func (m *ingestMetrics) observeBatch(stats IngestStats) {
	m.nodesTotal.Add(float64(stats.NodesCreated))
	m.edgesTotal.Add(float64(stats.EdgesCreated))
}
