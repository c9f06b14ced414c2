package logging

import (
	"fmt"
	"sync"
)

// MockLogger records log entries for assertions in tests. Loggers derived
// with WithError or WithFields share the parent's entry store, so entries
// written through a child are visible on the parent. It is safe for
// concurrent use.
type MockLogger struct {
	store  *entryStore
	err    error
	fields []Field
}

// LogEntry is one captured log call.
type LogEntry struct {
	Level   string
	Message string
	Fields  []Field
	Error   error
}

type entryStore struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewMockLogger returns an empty MockLogger.
func NewMockLogger() *MockLogger {
	return &MockLogger{store: &entryStore{}}
}

func (m *MockLogger) record(level, msg string, fields []Field) {
	if m.store == nil {
		m.store = &entryStore{}
	}
	all := make([]Field, 0, len(m.fields)+len(fields))
	all = append(all, m.fields...)
	all = append(all, fields...)

	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.entries = append(m.store.entries, LogEntry{Level: level, Message: msg, Fields: all, Error: m.err})
}

func (m *MockLogger) Debug(msg string, fields ...Field) { m.record("DEBUG", msg, fields) }
func (m *MockLogger) Info(msg string, fields ...Field)  { m.record("INFO", msg, fields) }
func (m *MockLogger) Warn(msg string, fields ...Field)  { m.record("WARN", msg, fields) }
func (m *MockLogger) Error(msg string, fields ...Field) { m.record("ERROR", msg, fields) }

// Fatal records a FATAL entry without exiting.
func (m *MockLogger) Fatal(msg string, fields ...Field) { m.record("FATAL", msg, fields) }

// Fatalf records a formatted FATAL entry without exiting.
func (m *MockLogger) Fatalf(msg string, args ...interface{}) {
	m.record("FATAL", fmt.Sprintf(msg, args...), nil)
}

func (m *MockLogger) WithError(err error) Logger {
	if m.store == nil {
		m.store = &entryStore{}
	}
	return &MockLogger{store: m.store, err: err, fields: m.fields}
}

func (m *MockLogger) WithField(key string, value interface{}) Logger {
	return m.WithFields(Field{Key: key, Value: value})
}

func (m *MockLogger) WithFields(fields ...Field) Logger {
	if m.store == nil {
		m.store = &entryStore{}
	}
	all := make([]Field, 0, len(m.fields)+len(fields))
	all = append(all, m.fields...)
	all = append(all, fields...)
	return &MockLogger{store: m.store, err: m.err, fields: all}
}

// Entries returns a copy of all captured entries.
func (m *MockLogger) Entries() []LogEntry {
	if m.store == nil {
		return nil
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	return append([]LogEntry(nil), m.store.entries...)
}

// EntriesByLevel returns the captured entries of one level.
func (m *MockLogger) EntriesByLevel(level string) []LogEntry {
	var out []LogEntry
	for _, e := range m.Entries() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// HasEntry reports whether an entry with this level and message was captured.
func (m *MockLogger) HasEntry(level, message string) bool {
	for _, e := range m.Entries() {
		if e.Level == level && e.Message == message {
			return true
		}
	}
	return false
}

// FieldValue returns the value of key on entry e.
func (e LogEntry) FieldValue(key string) (interface{}, bool) {
	for _, f := range e.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Clear drops all captured entries.
func (m *MockLogger) Clear() {
	if m.store == nil {
		return
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.entries = nil
}
