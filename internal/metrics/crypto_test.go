package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveCryptoSuccess(t *testing.T) {
	before := testutil.ToFloat64(CryptoOperations.WithLabelValues("encrypt", "xchacha20poly1305"))
	ObserveCrypto("encrypt", "xchacha20poly1305", nil)
	after := testutil.ToFloat64(CryptoOperations.WithLabelValues("encrypt", "xchacha20poly1305"))
	if after != before+1 {
		t.Fatalf("expected operations counter to increment by 1, got %v -> %v", before, after)
	}
}

func TestObserveCryptoFailure(t *testing.T) {
	before := testutil.ToFloat64(CryptoErrors.WithLabelValues("decrypt"))
	ObserveCrypto("decrypt", "xchacha20poly1305", errors.New("bad tag"))
	after := testutil.ToFloat64(CryptoErrors.WithLabelValues("decrypt"))
	if after != before+1 {
		t.Fatalf("expected errors counter to increment by 1, got %v -> %v", before, after)
	}
}
