// SAGE - Secure Agent Guarantee Engine
// Copyright (C) 2025 SAGE-X-project
//
// This file is part of SAGE.
//
// SAGE is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SAGE is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with SAGE. If not, see <https://www.gnu.org/licenses/>.

// Package metrics instruments the crypto core's operations for an
// embedding application to export via Prometheus. The core itself never
// reads these counters; they exist purely for operational visibility.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "synccrypto"

// Registry is the Prometheus registry all of this package's collectors are
// registered against. An embedding application serves it at /metrics via
// Handler(); a CLI invocation that never calls Handler pays no cost beyond
// the counters themselves.
var Registry = prometheus.NewRegistry()
