package id

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_Sortable(t *testing.T) {
	a := New()
	time.Sleep(2 * time.Millisecond)
	b := New()
	assert.Less(t, a, b, "later ULID must sort after earlier one")
}

func TestLowerBound_SplitsByCreationTime(t *testing.T) {
	before := New()
	time.Sleep(2 * time.Millisecond)
	cutoff := time.Now()
	time.Sleep(2 * time.Millisecond)
	after := New()

	bound := LowerBound(cutoff)
	assert.Less(t, before, bound)
	assert.GreaterOrEqual(t, after, bound)
}
