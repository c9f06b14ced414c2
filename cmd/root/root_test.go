package root_test

import (
	"testing"

	"fjacquet/fatura-extractor/cmd/root"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "fatura-extractor", root.Cmd.Use)
	assert.Contains(t, root.Cmd.Short, "credit-card invoices")
	assert.Equal(t, root.Version, root.Cmd.Version)
	assert.NotNil(t, root.Cmd.PersistentPreRunE)
	assert.NotNil(t, root.Cmd.PersistentPostRun)
}

func TestRootCommand_Flags(t *testing.T) {
	if root.Cmd.PersistentFlags().Lookup("config") == nil {
		root.Init()
	}
	assert.NotNil(t, root.Cmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, root.Cmd.PersistentFlags().Lookup("log-level"))
}

func TestGetContainerBeforeSetup(t *testing.T) {
	root.AppContainer = nil
	_, err := root.GetContainer()
	require.Error(t, err)
}
