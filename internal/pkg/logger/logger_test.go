package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithDefaults(t *testing.T) {
	log, err := New(LogConfig{})
	require.NoError(t, err)
	assert.NotNil(t, log)
}

func TestNewToleratesUnknownLevel(t *testing.T) {
	log, err := New(LogConfig{Level: "chatty", Format: "text", Output: "stderr"})
	require.NoError(t, err)
	assert.NotNil(t, log)
}

func TestToFields(t *testing.T) {
	fields := toFields([]interface{}{"query", "primes", "items", 6})

	assert.Equal(t, "primes", fields["query"])
	assert.Equal(t, 6, fields["items"])
}

func TestToFieldsIgnoresDanglingKey(t *testing.T) {
	fields := toFields([]interface{}{"query", "primes", "dangling"})

	assert.Len(t, fields, 1)
	assert.Equal(t, "primes", fields["query"])
}

func TestToFieldsStringifiesNonStringKeys(t *testing.T) {
	fields := toFields([]interface{}{42, "answer"})

	assert.Equal(t, "answer", fields["42"])
}
