package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var callNamed []string

var callCmd = &cobra.Command{
	Use:   "call <namespace> <method> [argument...]",
	Short: "Invoke an iControl method",
	Long: `Invoke a method on an interface. Each argument is parsed as JSON;
anything that is not valid JSON is passed through as a string, so plain
names need no extra quoting. To force a number to travel as a string,
quote it as JSON: '"10"'.

Arguments bind to the declared parameters in order. Named arguments can
be given with --param instead of, or mixed with, positional ones. The
result is printed as JSON; void methods print nothing.

Examples:
  icontrolctl --host bigip1 call LocalLB.Pool get_list
  icontrolctl --host bigip1 call LocalLB.Pool get_member '["web_pool"]'
  icontrolctl --host bigip1 call LocalLB.Pool add_member \
      '["web_pool"]' '[[{"address":"10.0.0.1","port":80}]]'
  icontrolctl --host bigip1 call LocalLB.Pool set_description \
      --param pool_name=web_pool --param 'description="spare capacity"'`,
	Args: cobra.MinimumNArgs(2),
	RunE: runCall,
}

func init() {
	rootCmd.AddCommand(callCmd)
	callCmd.Flags().StringArrayVar(&callNamed, "param", nil,
		"Named argument as name=value (repeatable; value parsed as JSON)")
}

func runCall(cmd *cobra.Command, args []string) error {
	named, err := decodeNamedArgs(callNamed)
	if err != nil {
		return err
	}
	pos := make([]any, 0, len(args)-2)
	for _, raw := range args[2:] {
		pos = append(pos, decodeArg(raw))
	}

	c, done, err := newClient(cmd)
	if err != nil {
		return err
	}
	defer done()

	svc, err := c.Resolve(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	m, err := svc.Method(args[1])
	if err != nil {
		return err
	}

	res, err := m.InvokeArgs(cmd.Context(), pos, named)
	if err != nil {
		return err
	}
	if res == nil {
		return nil
	}
	return printJSON(cmd, res)
}

// decodeArg interprets one command line argument. Valid JSON is decoded,
// with numbers kept integral where possible so schema longs stay longs;
// anything else is taken as a bare string.
func decodeArg(raw string) any {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return raw
	}
	// Trailing input means it was not really JSON ("10.0.0.1" would
	// otherwise decode as the number 10).
	if dec.More() {
		return raw
	}
	return coerceNumbers(v)
}

// coerceNumbers rewrites json.Number leaves into int64 or float64 so the
// wire encoder derives the right xsd type.
func coerceNumbers(v any) any {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n.String()
	case []any:
		for i, e := range n {
			n[i] = coerceNumbers(e)
		}
		return n
	case map[string]any:
		for k, e := range n {
			n[k] = coerceNumbers(e)
		}
		return n
	default:
		return v
	}
}

// decodeNamedArgs parses repeated --param name=value pairs.
func decodeNamedArgs(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	named := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --param %q, expected name=value", pair)
		}
		if _, dup := named[name]; dup {
			return nil, fmt.Errorf("duplicate --param %q", name)
		}
		named[name] = decodeArg(value)
	}
	return named, nil
}
