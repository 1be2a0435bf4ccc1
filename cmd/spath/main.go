// Command spath runs a query expression against a JSON or YAML document
// and prints the selected values.
//
// Usage:
//
//	spath '$.store.book[?@.price < 10].title' data.json
//	cat data.json | spath '$..author'
//	spath --yaml '$.services.*.image' compose.yaml
//	spath --paths '$..price' data.json
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jacoelho/spath"
	"github.com/jacoelho/spath/json"
	"github.com/jacoelho/spath/yaml"
)

func main() {
	if err := newCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	yaml  bool
	paths bool
	one   bool
}

func newCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "spath <expression> [file]",
		Short: "Query JSON or YAML documents with path expressions",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, opts)
		},
		SilenceUsage: true,
	}

	cmd.Flags().BoolVar(&opts.yaml, "yaml", false, "read the document as YAML")
	cmd.Flags().BoolVar(&opts.paths, "paths", false, "print normalized paths instead of values")
	cmd.Flags().BoolVar(&opts.one, "one", false, "require exactly one result")
	return cmd
}

func run(cmd *cobra.Command, args []string, opts options) error {
	query, err := spath.Parse(args[0])
	if err != nil {
		var perr *spath.ParseError
		if errors.As(err, &perr) {
			fmt.Fprintln(cmd.ErrOrStderr(), perr.Annotate())
			cmd.SilenceErrors = true
		}
		return err
	}

	input, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	doc, err := decode(input, opts.yaml)
	if err != nil {
		return err
	}

	nodes, err := query.Select(doc)
	if err != nil {
		var everr *spath.EvalError
		if errors.As(err, &everr) {
			fmt.Fprintln(cmd.ErrOrStderr(), everr.Annotate())
			cmd.SilenceErrors = true
		}
		return err
	}

	if opts.one {
		node, err := nodes.ExactlyOne()
		if err != nil {
			return err
		}
		nodes = spath.NodeList{node}
	}

	return writeResults(cmd.OutOrStdout(), nodes, opts.paths)
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 2 {
		return os.ReadFile(args[1])
	}
	return io.ReadAll(cmd.InOrStdin())
}

func decode(input []byte, asYAML bool) (spath.Value, error) {
	if asYAML {
		return yaml.Parse(input)
	}
	return json.Parse(input)
}

func writeResults(w io.Writer, nodes spath.NodeList, paths bool) error {
	for _, node := range nodes {
		if paths {
			fmt.Fprintln(w, node.Path)
			continue
		}
		doc, err := json.From(node.Value)
		if err != nil {
			return err
		}
		out, err := doc.MarshalJSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(out))
	}
	return nil
}
