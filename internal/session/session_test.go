package session

import (
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	before := time.Now().UnixMilli()
	id := New()
	after := time.Now().UnixMilli()

	if !strings.HasPrefix(id, Prefix) {
		t.Fatalf("New() = %q, want prefix %q", id, Prefix)
	}

	ms, err := strconv.ParseInt(strings.TrimPrefix(id, Prefix), 10, 64)
	if err != nil {
		t.Fatalf("suffix of %q is not numeric: %v", id, err)
	}
	if ms < before || ms > after {
		t.Errorf("timestamp %d outside [%d, %d]", ms, before, after)
	}
}
