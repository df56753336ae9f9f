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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CryptoOperations tracks crypto operations by name and algorithm:
	// encrypt, decrypt, encrypt_detached, decrypt_detached, sign, verify,
	// encrypt_sign, decrypt_verify.
	CryptoOperations = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crypto",
			Name:      "operations_total",
			Help:      "Total number of cryptographic operations",
		},
		[]string{"operation", "algorithm"},
	)

	// CryptoErrors tracks crypto operations that returned an error.
	CryptoErrors = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crypto",
			Name:      "errors_total",
			Help:      "Total number of cryptographic operation failures",
		},
		[]string{"operation"},
	)
)

// ObserveCrypto increments CryptoOperations for (operation, algorithm), and
// CryptoErrors for operation if err is non-nil. Callers pass the error
// returned by the primitive call directly; nil means success.
func ObserveCrypto(operation, algorithm string, err error) {
	CryptoOperations.WithLabelValues(operation, algorithm).Inc()
	if err != nil {
		CryptoErrors.WithLabelValues(operation).Inc()
	}
}
