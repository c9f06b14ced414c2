// Package patterns prints the pattern registry.
package patterns

import (
	"fmt"
	"io"

	"fjacquet/fatura-extractor/cmd/root"
	"fjacquet/fatura-extractor/internal/bank"
	"fjacquet/fatura-extractor/internal/container"
	"fjacquet/fatura-extractor/internal/parsererror"
	"fjacquet/fatura-extractor/internal/patterns"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Cmd represents the patterns command
var Cmd = &cobra.Command{
	Use:   "patterns [bank]",
	Short: "Show the patterns used for a bank",
	Long: `Print, as YAML, the registry version, the detection signatures and the
field and transaction patterns applied to a bank, plus the description
overrides. Without an argument the generic patterns are shown.

Example:
  fatura-extractor patterns banco_do_brasil`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		name := string(bank.Generic)
		if len(args) == 1 {
			name = args[0]
		}
		return Run(c, name, cmd.OutOrStdout())
	},
}

type dump struct {
	Version    string                 `yaml:"registry_version"`
	Signatures []string               `yaml:"signatures,omitempty"`
	Patterns   patterns.RawPatternSet `yaml:"patterns"`
	Overrides  []patterns.Override    `yaml:"overrides"`
}

// Run writes the pattern dump for the named bank.
func Run(c *container.Container, name string, out io.Writer) error {
	id, ok := bank.Parse(name)
	if !ok {
		return &parsererror.ValidationError{Reason: fmt.Sprintf("unknown bank %q", name)}
	}
	reg := c.GetRegistry()

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(dump{
		Version:    reg.Version(),
		Signatures: reg.SignatureSources(id),
		Patterns:   reg.Raw(id),
		Overrides:  reg.Overrides(),
	}); err != nil {
		return fmt.Errorf("failed to encode patterns: %w", err)
	}
	return enc.Close()
}
