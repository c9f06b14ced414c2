package serve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListenAddr(t *testing.T) {
	t.Setenv("PORT", "")
	assert.Equal(t, ":9000", ListenAddr(":9000", ":8000"))
	assert.Equal(t, ":8000", ListenAddr("", ":8000"))

	t.Setenv("PORT", "8080")
	assert.Equal(t, ":8080", ListenAddr("", ":8000"))
	assert.Equal(t, ":9000", ListenAddr(":9000", ":8000"))
}

func TestCommandMetadata(t *testing.T) {
	assert.Equal(t, "serve", Cmd.Use)
	assert.NotNil(t, Cmd.Flags().Lookup("addr"))
}
