// Package flagx lets several loaders share os.Args, each parsing only the
// flags it owns.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// Spec names the flags one FlagSet owns, with or without leading dashes.
// Value flags take the next argument as their value unless it looks like
// a flag; bool flags never consume the next argument.
type Spec struct {
	Value []string
	Bool  []string
}

func flagName(s string) string {
	return strings.TrimLeft(s, "-")
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[flagName(n)] = struct{}{}
	}
	return set
}

// Filter returns the arguments belonging to s, in order. Both "-f v" and
// "-f=v" forms are kept; "-" and "--" prefixes are treated alike.
func (s Spec) Filter(args []string) []string {
	values := toSet(s.Value)
	bools := toSet(s.Bool)

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		name, _, hasValue := strings.Cut(flagName(arg), "=")
		if _, ok := bools[name]; ok {
			filtered = append(filtered, arg)
			continue
		}
		if _, ok := values[name]; !ok {
			continue
		}

		filtered = append(filtered, arg)
		if !hasValue && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}
	return filtered
}

// FilterArgs keeps only the value flags in allowed and their values.
func FilterArgs(args []string, allowed []string) []string {
	return Spec{Value: allowed}.Filter(args)
}

// ConfigPath extracts the JSON config file named by -c or -config. The last
// occurrence wins; an empty string means none was given.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to JSON config file")
	fs.StringVar(&path, "c", "", "path to JSON config file (short)")
	_ = fs.Parse(Spec{Value: []string{"c", "config"}}.Filter(args))

	return path
}
