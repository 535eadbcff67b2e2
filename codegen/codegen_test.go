package codegen_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riicchhaarrd/rcc/codegen"
	"github.com/riicchhaarrd/rcc/lexer"
	"github.com/riicchhaarrd/rcc/parser"
)

func compile(t *testing.T, src string) *codegen.Context {
	t.Helper()
	tokens, err := lexer.Lex([]byte(src), 0)
	require.NoError(t, err)
	prog, err := parser.Parse(tokens)
	require.NoError(t, err)
	ctx, err := codegen.Generate(prog)
	require.NoError(t, err)
	return ctx
}

func TestCompileMinimalMain(t *testing.T) {
	ctx := compile(t, "int main() { return 0; }")
	require.NotEmpty(t, ctx.Instr)
	require.NotEqual(t, codegen.UnresolvedEntry, ctx.Entry)
}

func TestCompileFunctionCallAndArithmetic(t *testing.T) {
	ctx := compile(t, `
		int add(int a, int b) { return a + b; }
		int main() { return add(2, 3); }
	`)
	require.Len(t, ctx.Functions, 2)
	require.Equal(t, "add", ctx.Functions[0].Name)
	require.Equal(t, "main", ctx.Functions[1].Name)
}

func TestCompileIfElse(t *testing.T) {
	ctx := compile(t, `
		int main() {
			int x = 1;
			if (x) {
				x = 2;
			} else {
				x = 3;
			}
			return x;
		}
	`)
	require.NotEmpty(t, ctx.Instr)
}

func TestCompileLoopsAndBreak(t *testing.T) {
	ctx := compile(t, `
		int main() {
			int i = 0;
			while (i < 10) {
				i = i + 1;
				if (i == 5) {
					break;
				}
			}
			int j = 0;
			do {
				j = j + 1;
			} while (j < 3);
			for (int k = 0; k < 3; k = k + 1) {
				if (k == 1) {
					break;
				}
			}
			return i;
		}
	`)
	require.NotEmpty(t, ctx.Instr)
}

func TestCompileUnknownCalleeProducesWarningNotError(t *testing.T) {
	ctx := compile(t, `
		int main() {
			mystery();
			return 0;
		}
	`)
	require.Len(t, ctx.Warnings, 1)
}

func TestCompileTernaryAndSeqExpr(t *testing.T) {
	ctx := compile(t, `
		int main() {
			int x = 1 > 0 ? 1 : 2;
			int y = (x = x + 1, x);
			return y;
		}
	`)
	require.NotEmpty(t, ctx.Instr)
}
