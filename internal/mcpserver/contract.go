package mcpserver

import (
	"fmt"
	"strings"

	"github.com/starford/ansuz/internal/command"
)

const contractRules = `## Rules

1. **Paths** are passed to the operating system as given. Relative paths
   resolve against the backend's working directory unless the backend runs
   confined to its data directory. Call ` + "`get_data_dir`" + ` first and build
   absolute paths from it.
2. **Text only.** ` + "`read_file`" + ` fails with ` + "`invalid_encoding`" + ` for
   files that are not valid UTF-8.
3. **Writes replace** the whole file and create missing parent directories.
   They are not atomic.
4. **Idempotent cleanup.** ` + "`delete_file`" + ` on a missing path succeeds;
   on a directory it fails. ` + "`list_dir`" + ` on a missing directory returns ` + "`[]`" + `.
5. **Errors** carry the operating system's message text.
`

// Contract renders the Markdown command contract for cmds.
func Contract(cmds []command.Command) string {
	var b strings.Builder
	b.WriteString("# Filesystem Command Contract\n\n")
	b.WriteString("Every command below is synchronous and stateless.\n\n")
	b.WriteString("## Commands\n\n")
	for _, c := range cmds {
		params := make([]string, 0, len(c.Params))
		for _, p := range c.Params {
			params = append(params, p.Name)
		}
		fmt.Fprintf(&b, "### `%s(%s)`\n\n%s\n", c.Name, strings.Join(params, ", "), c.Description)
		if c.Mutating {
			b.WriteString("\nModifies the filesystem.\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(contractRules)
	return b.String()
}
