// Command xmlcheck is a thin filesystem/stdin entry point over the
// xmlcore parsing and serialization packages: it is the CLI
// "collaborator" spec §8 describes as external to the core itself.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	xmlcore "github.com/arturoeanton/xmlcore/xml"
)

func main() {
	if len(os.Args) < 2 {
		printHelp()
		os.Exit(0)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "check":
		cmdCheck(args)
	case "fmt":
		cmdFormat(args)
	default:
		fmt.Fprintf(os.Stderr, "xmlcheck: unknown command %q\n", command)
		printHelp()
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("xmlcheck - streaming XML well-formedness/validity checker")
	fmt.Println("usage: xmlcheck <command> [file]")
	fmt.Println()
	fmt.Println("commands:")
	fmt.Println("  check [--validate] [file]  report well-formedness/validity, read from file or stdin")
	fmt.Println("  fmt   [file]                re-serialize the document, pretty-printed")
}

// getInputReader opens the last argument that is not a flag as a file,
// falling back to stdin when piped; flag arguments are returned
// separately.
func getInputReader(args []string) (io.Reader, []string, error) {
	var flags []string
	var path string
	for _, a := range args {
		if strings.HasPrefix(a, "-") {
			flags = append(flags, a)
			continue
		}
		path = a
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, flags, err
		}
		return f, flags, nil
	}
	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) == 0 {
		return os.Stdin, flags, nil
	}
	return nil, flags, fmt.Errorf("no input provided (pipe or file)")
}

func hasFlag(flags []string, name string) bool {
	for _, f := range flags {
		if f == name {
			return true
		}
	}
	return false
}

func cmdCheck(args []string) {
	r, flags, err := getInputReader(args)
	if err != nil {
		die(err)
	}

	sink := &xmlcore.DiagnosticSink{}
	opts := []xmlcore.Option{}
	if hasFlag(flags, "--validate") {
		opts = append(opts, xmlcore.WithValidation(true))
	}
	p := xmlcore.NewParser(sink, opts...)
	parseErr := p.ParseReader(r, "<stdin>")

	result := sink.Result()
	fmt.Println(result)
	for _, w := range result.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}
	for _, e := range result.Errors {
		fmt.Fprintln(os.Stderr, "error:", e)
	}
	if parseErr != nil && result.Fatal == nil {
		die(parseErr)
	}
	if !result.OK() {
		os.Exit(1)
	}
}

func cmdFormat(args []string) {
	r, _, err := getInputReader(args)
	if err != nil {
		die(err)
	}

	w := xmlcore.NewWriter(os.Stdout, xmlcore.WithPrettyPrint())
	p := xmlcore.NewParser(w)
	if err := p.ParseReader(r, "<stdin>"); err != nil {
		die(err)
	}
}

func die(err error) {
	fmt.Fprintln(os.Stderr, "xmlcheck:", err)
	os.Exit(1)
}
