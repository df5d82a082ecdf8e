package main

import (
	"os"

	"resource-cards/internal/cli"
	"resource-cards/internal/store"
)

// rewriteDirectCardLookupArgs makes `cards <cardid>` work like
// `cards card show <cardid>`.
//
// Cobra treats the first non-flag token as a subcommand, so argv is rewritten
// before parsing. Persistent flags may come first (`cards --dir ... <cardid>`),
// so the first positional token is searched for, not just argv[1].
func rewriteDirectCardLookupArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	// Unknown flags are skipped without consuming a value, so a card id is
	// never swallowed.
	valueFlags := map[string]bool{
		"--dir":    true,
		"--server": true,
		"--format": true,
	}

	for i := 1; i < len(argv); i++ {
		a := argv[i]
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && store.IsID(argv[i+1]) {
				out := make([]string, 0, len(argv)+2)
				out = append(out, argv[:i]...)
				out = append(out, "card", "show")
				out = append(out, argv[i:]...)
				return out
			}
			return argv
		}
		if len(a) > 1 && a[0] == '-' {
			if valueFlags[a] {
				i++
			}
			continue
		}
		if store.IsID(a) {
			out := make([]string, 0, len(argv)+2)
			out = append(out, argv[:i]...)
			out = append(out, "card", "show")
			out = append(out, argv[i:]...)
			return out
		}
		return argv
	}
	return argv
}

func main() {
	os.Args = rewriteDirectCardLookupArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
