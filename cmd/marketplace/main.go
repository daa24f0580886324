// Command marketplace is the terminal client of the marketplace API: it signs
// accounts in and out and opens the role dashboards.
package main

import (
	"fmt"
	"io"
	"os"
)

const usage = `Usage: marketplace <command> [flags]

Commands:
  register          Create an account and its profile
  login             Sign in
  logout            Sign out and revoke the session
  whoami            Show the signed-in account
  dashboard         Open the dashboard of the signed-in role
  products create   Create a product (vendors)
  products list     List your products (vendors)
  catalog search    Search the catalog (buyers, riders)

Run "marketplace <command> -h" for the flags of a command.
`

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run dispatches args to a command and returns the process exit code.
func run(args []string, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	name, rest := args[0], args[1:]
	if (name == "products" || name == "catalog") && len(rest) > 0 {
		name, rest = name+" "+rest[0], rest[1:]
	}

	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", name, usage)
		return 2
	}
	return cmd(rest)
}
