// Command rcc compiles a single C-subset source file directly to raw
// x86-32 machine code bytes. There is no preprocessor, no optimizer
// beyond the generator's own register-shadow elision, and no linker: the
// output file is the compiled instruction buffer followed by the data
// buffer, with relocations left unapplied. The relocation table is not
// written to the file; -S prints it together with the byte listing.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/riicchhaarrd/rcc/codegen"
	"github.com/riicchhaarrd/rcc/lexer"
	"github.com/riicchhaarrd/rcc/parser"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "rcc:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	opts, rest, err := ParseFlags(args)
	if err != nil {
		return err
	}
	if opts.Version {
		printVersion()
		return nil
	}
	if len(rest) != 1 {
		return fmt.Errorf("usage: rcc [flags] file.c")
	}
	inputPath := rest[0]

	if opts.Verbose {
		log.Printf("input=%s out=%s", inputPath, opts.Output)
	}

	src, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inputPath, err)
	}

	tokens, err := lexer.Lex(src, 0)
	if err != nil {
		return fmt.Errorf("lexing %s: %w", inputPath, err)
	}
	if opts.TokenDump {
		for _, t := range tokens {
			fmt.Println(t.String())
		}
		return nil
	}

	prog, err := parser.Parse(tokens)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", inputPath, err)
	}

	ctx, err := codegen.Generate(prog)
	if err != nil {
		return fmt.Errorf("compiling %s: %w", inputPath, err)
	}
	for _, w := range ctx.Warnings {
		log.Printf("warning: %s", w.Message)
	}

	if opts.EmitAsm {
		printListing(ctx)
		return nil
	}

	out := append(append([]byte{}, ctx.Instr...), ctx.Data...)
	if err := os.WriteFile(opts.Output, out, 0o755); err != nil {
		return fmt.Errorf("writing %s: %w", opts.Output, err)
	}
	if opts.Verbose {
		log.Printf("wrote %d bytes (%d instr, %d data, entry=%#x)",
			len(out), len(ctx.Instr), len(ctx.Data), ctx.Entry)
	}
	return nil
}

func printListing(ctx *codegen.Context) {
	for i, b := range ctx.Instr {
		fmt.Printf("%04x: %02x\n", i, b)
	}
	for _, r := range ctx.Relocations {
		fmt.Printf("reloc from=%#x to=%#x size=%d kind=%d\n", r.From, r.To, r.Size, r.Kind)
	}
}
