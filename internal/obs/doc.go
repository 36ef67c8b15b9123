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

// Package obs checks operations against the performance contracts
// spec.md documents (ingestion throughput, query latency, update
// turnaround) and reports violations.
//
// By default a slow operation is only logged and counted: call Check
// after timing an operation, and a contract violation becomes a
// slog.Warn plus a Prometheus counter increment. Setting
// ISG_STRICT_PERF=1 upgrades a violation to a returned
// isgerrors.PerformanceViolation, for CI runs that want to fail fast
// instead of merely observe drift.
package obs
