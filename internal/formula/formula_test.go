package formula

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCompile(t *testing.T, src string) *Formula {
	t.Helper()
	f, err := Compile(src)
	require.NoError(t, err, "formula %q should compile", src)
	return f
}

func TestCompileAndEval(t *testing.T) {
	vars := map[string]float64{"volume": 100, "recurring_rate": 10}

	tests := []struct {
		name string
		src  string
		want float64
	}{
		{"plain product", "volume * recurring_rate", 1000},
		{"short names", "v * r", 70, /* overridden below */},
		{"precedence", "2 + 3 * 4", 14},
		{"parentheses", "(2 + 3) * 4", 20},
		{"power right assoc", "2 ** 3 ** 2", 512},
		{"unary before power", "-2 ** 2", -4},
		{"floor division", "7 // 2", 3},
		{"modulo", "7 % 3", 1},
		{"negative modulo", "-7 % 3", 2},
		{"min max", "min(volume, 50) + max(1, 2, 3)", 53},
		{"round two args", "round(volume * 1.2345, 2)", 123.45},
		{"nested calls", "max(sqrt(volume), floor(9.9))", 10},
		{"log10", "log10(volume)", 2},
		{"discounted", "volume * recurring_rate * (1 - 0.1)", 900},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := mustCompile(t, tc.src)
			v := vars
			if tc.name == "short names" {
				v = map[string]float64{"v": 7, "r": 10}
			}
			got, err := f.Eval(v)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestCompileSyntaxErrors(t *testing.T) {
	for _, src := range []string{
		"",
		"volume *",
		"(volume * recurring_rate",
		"volume @ 2",
		"min(volume,",
		"1..2 + 3..4",
	} {
		_, err := Compile(src)
		require.Error(t, err, "formula %q should not compile", src)
		var ferr *Error
		require.True(t, errors.As(err, &ferr))
		assert.Equal(t, KindSyntax, ferr.Kind, "formula %q", src)
	}
}

func TestCompileSecurityErrors(t *testing.T) {
	for _, src := range []string{
		"__import__('os')",
		"open('x')",
		"volume + secret",
		"eval(volume)",
		"getattr(volume, 'x')",
	} {
		_, err := Compile(src)
		require.Error(t, err, "formula %q must be rejected, not executed", src)
		var ferr *Error
		require.True(t, errors.As(err, &ferr))
		assert.Equal(t, KindSecurity, ferr.Kind, "formula %q", src)
	}
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		vars map[string]float64
	}{
		{"division by zero", "volume / 0", map[string]float64{"volume": 1}},
		{"sqrt domain", "sqrt(0 - volume)", map[string]float64{"volume": 4}},
		{"log domain", "log(volume - 10)", map[string]float64{"volume": 5}},
		{"undefined variable", "volume * r", map[string]float64{"volume": 5}},
		{"function as value", "sqrt + 1", nil},
		{"string result", "'os'", nil},
		{"wrong arity", "pow(2)", nil},
		{"bitwise on fraction", "volume & 3", map[string]float64{"volume": 1.5}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := mustCompile(t, tc.src)
			_, err := f.Eval(tc.vars)
			require.Error(t, err)
			var ferr *Error
			require.True(t, errors.As(err, &ferr))
			assert.Equal(t, KindEval, ferr.Kind)
		})
	}
}

func TestBitwiseOperatorsRetained(t *testing.T) {
	// Practically unused but kept in the grammar.
	f := mustCompile(t, "(6 & 3) + (1 << 4) + (5 | 2)")
	got, err := f.Eval(nil)
	require.NoError(t, err)
	assert.Equal(t, float64(2+16+7), got)
}

func TestValidationHappensBeforeEvaluation(t *testing.T) {
	// The disallowed call sits behind a branch that would never be reached
	// numerically; compilation must still reject it.
	_, err := Compile("0 * __import__('os')")
	var ferr *Error
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, KindSecurity, ferr.Kind)
}
