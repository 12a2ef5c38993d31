// Command semidx is a thin CLI entry point over the semi-index packages:
// one-shot field lookups, and a daemon mode that keeps built indices warm
// across requests.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	flag "github.com/spf13/pflag"

	"github.com/succinctly/semidx/internal/cursor"
	"github.com/succinctly/semidx/internal/dsv"
	"github.com/succinctly/semidx/internal/jsonidx"
	"github.com/succinctly/semidx/internal/server"
	"github.com/succinctly/semidx/internal/srcfile"
	"github.com/succinctly/semidx/internal/yamlidx"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "get":
		runGet(args)
	case "daemon":
		runDaemon(args)
	case "version":
		fmt.Printf("semidx v%s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`semidx - succinct semi-index over JSON/YAML/CSV

Usage:
    semidx <command> [arguments]

Commands:
    get      Print the value at a field path within a document
    daemon   Start a Unix/TCP socket server that keeps indices warm
    version  Show version
    help     Show this help

Use "semidx <command> --help" for command-specific options.`)
}

func runGet(args []string) {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	path := fs.String("path", "", "Document path")
	format := fs.String("format", "", "json, yaml, or dsv (default: inferred from extension)")
	field := fs.String("field", "", "Dotted field path, e.g. a.b.0.c")
	_ = fs.Parse(args)

	if *path == "" {
		fmt.Fprintln(os.Stderr, "error: --path is required")
		fs.PrintDefaults()
		os.Exit(1)
	}

	src, err := srcfile.Open(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: opening %s: %v\n", *path, err)
		os.Exit(1)
	}
	defer func() { _ = src.Close() }()

	root, err := buildRoot(src.Bytes, resolveFormat(*format, *path))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: building index: %v\n", err)
		os.Exit(1)
	}

	c, ok := navigate(root, *field)
	if !ok {
		fmt.Fprintf(os.Stderr, "error: no such field: %q\n", *field)
		os.Exit(1)
	}

	printResult(c)
}

func resolveFormat(explicit, path string) string {
	if explicit != "" {
		return explicit
	}
	switch {
	case hasSuffix(path, ".yaml"), hasSuffix(path, ".yml"):
		return "yaml"
	case hasSuffix(path, ".csv"), hasSuffix(path, ".tsv"), hasSuffix(path, ".dsv"):
		return "dsv"
	default:
		return "json"
	}
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}

func buildRoot(src []byte, format string) (cursor.Cursor, error) {
	switch format {
	case "yaml":
		idx, err := yamlidx.Build(src)
		if err != nil {
			return nil, err
		}
		return idx.Root(), nil
	case "dsv":
		return dsv.Build(src, dsv.Default()).Root(), nil
	default:
		return jsonidx.Build(src).Root(), nil
	}
}

// navigate walks a dotted field/index path ("users.0.name") down from
// root. Not a query language; just enough to make `get` useful from a
// shell.
func navigate(root cursor.Cursor, path string) (cursor.Cursor, bool) {
	c := root
	if path == "" {
		return c, true
	}
	start := 0
	for i := 0; i <= len(path); i++ {
		if i < len(path) && path[i] != '.' {
			continue
		}
		seg := path[start:i]
		start = i + 1
		if seg == "" {
			continue
		}
		if idx, ok := parseIndex(seg); ok {
			next, ok := c.Index(idx)
			if !ok {
				return nil, false
			}
			c = next
			continue
		}
		next, ok := c.Field(seg)
		if !ok {
			return nil, false
		}
		c = next
	}
	return c, true
}

func parseIndex(seg string) (int, bool) {
	if seg == "" {
		return 0, false
	}
	n := 0
	for _, b := range []byte(seg) {
		if b < '0' || b > '9' {
			return 0, false
		}
		n = n*10 + int(b-'0')
	}
	return n, true
}

func printResult(c cursor.Cursor) {
	if isatty.IsTerminal(os.Stdout.Fd()) {
		fmt.Printf("%s: %s\n", c.Kind(), string(c.RawBytes()))
		return
	}
	out, _ := json.Marshal(map[string]string{
		"kind": c.Kind().String(),
		"raw":  string(c.RawBytes()),
	})
	fmt.Println(string(out))
}

func runDaemon(args []string) {
	fs := flag.NewFlagSet("daemon", flag.ExitOnError)
	network := fs.String("network", "unix", "unix or tcp")
	address := fs.String("address", "", "socket path or host:port")
	cacheSize := fs.Int("cache-size", 32, "max warm indices kept in memory")
	_ = fs.Parse(args)

	d, err := server.New(server.Config{
		Network:   *network,
		Address:   *address,
		CacheSize: *cacheSize,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Start installs its own SIGINT/SIGTERM handler that calls d.Shutdown,
	// so there is nothing left for runDaemon to wire up here.
	if err := d.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "daemon error: %v\n", err)
		os.Exit(1)
	}
}
