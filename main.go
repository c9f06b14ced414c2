package main

import (
	"fmt"
	"os"

	"fjacquet/fatura-extractor/cmd/banks"
	"fjacquet/fatura-extractor/cmd/batch"
	"fjacquet/fatura-extractor/cmd/extract"
	"fjacquet/fatura-extractor/cmd/patterns"
	"fjacquet/fatura-extractor/cmd/root"
	"fjacquet/fatura-extractor/cmd/serve"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(extract.Cmd)
	root.Cmd.AddCommand(banks.Cmd)
	root.Cmd.AddCommand(patterns.Cmd)
	root.Cmd.AddCommand(batch.Cmd)
	root.Cmd.AddCommand(serve.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
