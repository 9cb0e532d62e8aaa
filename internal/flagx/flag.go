// Package flagx lets a component parse its own flags out of os.Args without
// tripping over flags that belong to someone else, such as the go test
// runner's -test.* flags.
package flagx

import (
	"io"
	"strings"

	"github.com/spf13/pflag"
)

// FilterArgs keeps only the arguments that name a flag defined on fs, with
// their values. Long (--name or -name) and shorthand (-n) forms are
// recognised, and -name is rewritten to --name. Values are taken from
// either "=value" or the value as the next argument. A separate value is
// consumed only for non-boolean flags and only when it does not itself start
// with "-". Positional arguments are dropped.
func FilterArgs(args []string, fs *pflag.FlagSet) []string {
	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") || arg == "-" || arg == "--" {
			continue
		}

		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		f := lookup(fs, arg, name)
		if f == nil {
			continue
		}

		// pflag reads "-name" as a cluster of shorthands, so single-dash
		// long names are passed on in their "--name" form.
		if !strings.HasPrefix(arg, "--") && len(name) > 1 {
			arg = "--" + name
			if hasValue {
				arg += "=" + value
			}
		}

		filtered = append(filtered, arg)
		if hasValue || f.Value.Type() == "bool" {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

func lookup(fs *pflag.FlagSet, arg, name string) *pflag.Flag {
	if strings.HasPrefix(arg, "--") {
		return fs.Lookup(name)
	}
	if len(name) == 1 {
		return fs.ShorthandLookup(name)
	}
	// Single-dash long names, as the standard flag package accepts.
	return fs.Lookup(name)
}

// ConfigFileFlag returns the path given with -c or --config in args, or ""
// when neither is present. The file may be JSON or YAML; the caller picks
// the decoder by extension.
func ConfigFileFlag(args []string) string {
	fs := pflag.NewFlagSet("config", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	path := fs.StringP("config", "c", "", "path to config file (JSON or YAML)")
	_ = fs.Parse(FilterArgs(args, fs))
	return *path
}
