package main

import (
	"flag"
	"fmt"
	"strings"
)

// CompilerOptions carries every command-line flag through to the
// pipeline, mirroring the teacher's flags.go CompilerOptions/ParseFlags
// split.
type CompilerOptions struct {
	Output    string
	Verbose   bool
	EmitAsm   bool // -S: print the byte listing instead of writing an artifact
	TokenDump bool
	Version   bool
	Includes  []string
}

const rccVersion = "0.1.0"

// ParseFlags parses args (os.Args[1:]) into a CompilerOptions and the
// remaining positional arguments (the input file).
func ParseFlags(args []string) (*CompilerOptions, []string, error) {
	opts := &CompilerOptions{}
	fs := flag.NewFlagSet("rcc", flag.ContinueOnError)
	fs.StringVar(&opts.Output, "o", "a.out", "output file")
	fs.BoolVar(&opts.Verbose, "v", false, "verbose logging")
	fs.BoolVar(&opts.EmitAsm, "S", false, "print the generated byte listing instead of writing an artifact")
	fs.BoolVar(&opts.TokenDump, "token-dump", false, "dump the token stream and exit")
	fs.BoolVar(&opts.Version, "version", false, "print the version and exit")
	fs.Func("I", "add a search path (repeatable)", func(v string) error {
		opts.Includes = append(opts.Includes, v)
		return nil
	})

	if err := fs.Parse(normalizeArgs(args)); err != nil {
		return nil, nil, err
	}
	return opts, fs.Args(), nil
}

// normalizeArgs rewrites the double-dash spellings accepted alongside the
// canonical single-dash ones flag.FlagSet expects — "--token-dump"
// becomes "-token-dump", and so on.
func normalizeArgs(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if strings.HasPrefix(a, "--") {
			out[i] = a[1:]
		} else {
			out[i] = a
		}
	}
	return out
}

func printVersion() {
	fmt.Printf("rcc %s\n", rccVersion)
}
