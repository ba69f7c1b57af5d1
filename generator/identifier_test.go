package generator

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var identifierShape = regexp.MustCompile(`^cw-[0-9a-f]{32}$`)

func TestNewIdentifier_Deterministic(t *testing.T) {
	keys := []string{"A1", "ORD-2024-000017", "order with spaces", "ünïcödé", "../../etc/passwd"}
	for _, key := range keys {
		first := NewIdentifier(key)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, NewIdentifier(key), "key %q", key)
		}
	}
}

func TestNewIdentifier_SafeAndBounded(t *testing.T) {
	keys := []string{
		"A1",
		"<script>alert(1)</script>",
		"../../etc/passwd",
		"a/b\\c:d*e?f\"g<h>i|j",
		string(make([]byte, 4096)),
		"x",
	}
	for _, key := range keys {
		id := NewIdentifier(key)
		assert.Regexp(t, identifierShape, id, "key %q", key)
		assert.NotContains(t, id, key)
	}
}

func TestNewIdentifier_DistinctOrders(t *testing.T) {
	assert.NotEqual(t, NewIdentifier("A1"), NewIdentifier("A2"))
	assert.NotEqual(t, NewIdentifier("a1"), NewIdentifier("A1"), "order keys are case sensitive")
	assert.NotEqual(t, NewIdentifier("A1"), NewIdentifier(" A1"))
}

func TestNewIdentifier_NoCollisionsOverLargeSample(t *testing.T) {
	const sample = 20000
	seen := make(map[string]string, sample)
	for i := 0; i < sample; i++ {
		key := fmt.Sprintf("ORD-%06d", i)
		id := NewIdentifier(key)
		if other, dup := seen[id]; dup {
			t.Fatalf("identifier collision between %q and %q", other, key)
		}
		seen[id] = key
	}
	assert.Len(t, seen, sample)
}
