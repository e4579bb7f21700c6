// Command calc is a terminal front-end for the scientific calculator. Each
// input line holds one or more keys separated by spaces; the display is
// printed after every line.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/couchcryptid/jma-forecast/internal/calculator"
	"github.com/couchcryptid/jma-forecast/internal/observability"
)

// aliases lets keys that are awkward to type be entered in ASCII.
var aliases = map[string]string{
	"c":    calculator.KeyClear,
	"ac":   calculator.KeyClear,
	"sqrt": calculator.KeySqrt,
	"x2":   calculator.KeySquare,
	"sq":   calculator.KeySquare,
}

func main() {
	logger := observability.NewLogger(os.Getenv("LOG_LEVEL"), "text")
	if err := run(os.Stdin, os.Stdout); err != nil {
		logger.Error("calculator stopped", "error", err)
		os.Exit(1)
	}
}

func run(in io.Reader, out io.Writer) error {
	calc := calculator.New()
	fmt.Fprintln(out, calc.Display())

	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "q" || line == "quit" {
			return nil
		}
		for _, key := range strings.Fields(line) {
			if k, ok := aliases[strings.ToLower(key)]; ok {
				key = k
			}
			for _, k := range splitNumber(key) {
				calc.Press(k)
			}
		}
		fmt.Fprintln(out, calc.Display())
	}
	return sc.Err()
}

// splitNumber breaks a typed number such as "12.5" into single digit keys.
// Anything else is returned as one key.
func splitNumber(key string) []string {
	if key == "" || strings.Trim(key, "0123456789.") != "" {
		return []string{key}
	}
	keys := make([]string, 0, len(key))
	for _, r := range key {
		keys = append(keys, string(r))
	}
	return keys
}
