package logging

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testTimeout = time.Second
	testTick    = 10 * time.Millisecond
)

func TestMockLogger_DerivedLoggersShareEntries(t *testing.T) {
	m := NewMockLogger()
	child := m.WithField(FieldBank, "itau")
	child.WithError(errors.New("boom")).Warn("detection miss")
	m.Info("done", F(FieldCount, 2))

	entries := m.Entries()
	require.Len(t, entries, 2)

	assert.Equal(t, "WARN", entries[0].Level)
	v, ok := entries[0].FieldValue(FieldBank)
	assert.True(t, ok)
	assert.Equal(t, "itau", v)
	assert.EqualError(t, entries[0].Error, "boom")

	_, ok = entries[1].FieldValue(FieldBank)
	assert.False(t, ok, "parent must not inherit child fields")
	assert.True(t, m.HasEntry("INFO", "done"))
	assert.Len(t, m.EntriesByLevel("WARN"), 1)
}

func TestMockLogger_FatalDoesNotExit(t *testing.T) {
	m := &MockLogger{}
	m.Fatalf("cannot open %s", "x.pdf")
	m.Fatal("bye")

	assert.True(t, m.HasEntry("FATAL", "cannot open x.pdf"))
	assert.Len(t, m.EntriesByLevel("FATAL"), 2)

	m.Clear()
	assert.Empty(t, m.Entries())
}

func TestMockLogger_Concurrent(t *testing.T) {
	m := NewMockLogger()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.WithField("worker", i).Debug("tick")
		}(i)
	}
	wg.Wait()
	assert.Len(t, m.Entries(), 20)
}
