// Package flagx contains command-line helpers that the standard flag package
// lacks: pre-filtering os.Args for a subset of flags and minute-valued
// durations.
package flagx

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FilterArgs returns only the arguments in args that belong to allowedFlags,
// together with their values.
//
// Both "-c conf.json" and "--config=conf.json" forms are recognised. A value
// is only taken from the next argument when it does not start with '-'.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// ConfigPath extracts the JSON config file path given with -c or -config.
// Other arguments are ignored so the caller can parse its own flag set later.
// It returns "" when neither flag is present.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "Path to config file")
	fs.StringVar(&path, "c", "", "Path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config", "--config"}))

	return path
}

// Minutes is a flag.Value that reads a whole number of minutes into a
// time.Duration.
type Minutes struct {
	D *time.Duration
}

func (m Minutes) String() string {
	if m.D == nil {
		return "0"
	}
	return strconv.FormatInt(int64(*m.D/time.Minute), 10)
}

func (m Minutes) Set(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid minutes %q: %w", s, err)
	}
	if n < 0 {
		return fmt.Errorf("invalid minutes %q: must not be negative", s)
	}
	*m.D = time.Duration(n) * time.Minute
	return nil
}
