package formula

import (
	"math"
)

// Variables the formula vocabulary admits. Callers provide whichever subset
// applies; referencing an admitted but unprovided variable is an evaluation
// error, referencing anything outside the vocabulary is a security error.
var allowedVariables = map[string]bool{
	"volume":            true,
	"recurring_rate":    true,
	"total_volume_year": true,
	"one_time_rate":     true,
	"v":                 true,
	"r":                 true,
	"volume_year":       true,
}

type builtin struct {
	minArgs int
	maxArgs int
	apply   func(args []float64) (float64, error)
}

var builtins = map[string]builtin{
	"min": {1, -1, func(args []float64) (float64, error) {
		out := args[0]
		for _, a := range args[1:] {
			out = math.Min(out, a)
		}
		return out, nil
	}},
	"max": {1, -1, func(args []float64) (float64, error) {
		out := args[0]
		for _, a := range args[1:] {
			out = math.Max(out, a)
		}
		return out, nil
	}},
	"round": {1, 2, func(args []float64) (float64, error) {
		if len(args) == 1 {
			return math.Round(args[0]), nil
		}
		scale := math.Pow(10, math.Trunc(args[1]))
		return math.Round(args[0]*scale) / scale, nil
	}},
	"abs": {1, 1, func(args []float64) (float64, error) { return math.Abs(args[0]), nil }},
	"pow": {2, 2, func(args []float64) (float64, error) { return math.Pow(args[0], args[1]), nil }},
	"sqrt": {1, 1, func(args []float64) (float64, error) {
		if args[0] < 0 {
			return 0, evalErrorf("sqrt of negative value")
		}
		return math.Sqrt(args[0]), nil
	}},
	"ceil":  {1, 1, func(args []float64) (float64, error) { return math.Ceil(args[0]), nil }},
	"floor": {1, 1, func(args []float64) (float64, error) { return math.Floor(args[0]), nil }},
	"log": {1, 2, func(args []float64) (float64, error) {
		if args[0] <= 0 {
			return 0, evalErrorf("log of non-positive value")
		}
		if len(args) == 2 {
			if args[1] <= 0 || args[1] == 1 {
				return 0, evalErrorf("invalid log base")
			}
			return math.Log(args[0]) / math.Log(args[1]), nil
		}
		return math.Log(args[0]), nil
	}},
	"log10": {1, 1, func(args []float64) (float64, error) {
		if args[0] <= 0 {
			return 0, evalErrorf("log10 of non-positive value")
		}
		return math.Log10(args[0]), nil
	}},
	"exp": {1, 1, func(args []float64) (float64, error) { return math.Exp(args[0]), nil }},
}

// Formula is a compiled, validated expression ready for repeated evaluation.
type Formula struct {
	src  string
	root node
}

// Compile parses the source and walks the resulting tree against the
// whitelist. No evaluation happens here; a formula that fails validation is
// never partially evaluated.
func Compile(src string) (*Formula, error) {
	root, err := parse(src)
	if err != nil {
		return nil, err
	}
	if err := validate(root); err != nil {
		return nil, err
	}
	return &Formula{src: src, root: root}, nil
}

// Source returns the original expression text.
func (f *Formula) Source() string { return f.src }

func validate(n node) error {
	switch v := n.(type) {
	case numberNode, stringNode:
		return nil
	case nameNode:
		name := string(v)
		if !allowedVariables[name] {
			if _, ok := builtins[name]; !ok {
				return securityErrorf("unknown variable or function %q", name)
			}
		}
		return nil
	case unaryNode:
		return validate(v.operand)
	case binaryNode:
		if err := validate(v.left); err != nil {
			return err
		}
		return validate(v.right)
	case callNode:
		if _, ok := builtins[v.fn]; !ok {
			return securityErrorf("disallowed function %q", v.fn)
		}
		for _, arg := range v.args {
			if err := validate(arg); err != nil {
				return err
			}
		}
		return nil
	default:
		return securityErrorf("disallowed expression in formula")
	}
}

// Eval evaluates the compiled formula against the supplied variables and
// coerces the result to a finite number.
func (f *Formula) Eval(vars map[string]float64) (float64, error) {
	out, err := evalNode(f.root, vars)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return 0, evalErrorf("formula did not produce a numeric result")
	}
	return out, nil
}

func evalNode(n node, vars map[string]float64) (float64, error) {
	switch v := n.(type) {
	case numberNode:
		return float64(v), nil
	case stringNode:
		return 0, evalErrorf("formula did not produce a numeric result")
	case nameNode:
		name := string(v)
		if val, ok := vars[name]; ok && allowedVariables[name] {
			return val, nil
		}
		if _, ok := builtins[name]; ok {
			return 0, evalErrorf("function %q used as a value", name)
		}
		return 0, evalErrorf("variable %q is not defined", name)
	case unaryNode:
		operand, err := evalNode(v.operand, vars)
		if err != nil {
			return 0, err
		}
		if v.op == "-" {
			return -operand, nil
		}
		return operand, nil
	case binaryNode:
		return evalBinary(v, vars)
	case callNode:
		return evalCall(v, vars)
	default:
		return 0, evalErrorf("disallowed expression in formula")
	}
}

func evalBinary(b binaryNode, vars map[string]float64) (float64, error) {
	left, err := evalNode(b.left, vars)
	if err != nil {
		return 0, err
	}
	right, err := evalNode(b.right, vars)
	if err != nil {
		return 0, err
	}
	switch b.op {
	case "+":
		return left + right, nil
	case "-":
		return left - right, nil
	case "*":
		return left * right, nil
	case "/":
		if right == 0 {
			return 0, evalErrorf("division by zero")
		}
		return left / right, nil
	case "//":
		if right == 0 {
			return 0, evalErrorf("division by zero")
		}
		return math.Floor(left / right), nil
	case "%":
		if right == 0 {
			return 0, evalErrorf("modulo by zero")
		}
		// Python-style modulo: result takes the sign of the divisor.
		m := math.Mod(left, right)
		if m != 0 && (m < 0) != (right < 0) {
			m += right
		}
		return m, nil
	case "**":
		return math.Pow(left, right), nil
	case "&", "|", "^", "<<", ">>":
		return evalBitwise(b.op, left, right)
	default:
		return 0, evalErrorf("unsupported operator %q", b.op)
	}
}

func evalBitwise(op string, left, right float64) (float64, error) {
	if left != math.Trunc(left) || right != math.Trunc(right) {
		return 0, evalErrorf("bitwise operator %q requires integer operands", op)
	}
	li, ri := int64(left), int64(right)
	switch op {
	case "&":
		return float64(li & ri), nil
	case "|":
		return float64(li | ri), nil
	case "^":
		return float64(li ^ ri), nil
	case "<<":
		if ri < 0 || ri > 62 {
			return 0, evalErrorf("invalid shift count")
		}
		return float64(li << uint(ri)), nil
	default: // ">>"
		if ri < 0 || ri > 62 {
			return 0, evalErrorf("invalid shift count")
		}
		return float64(li >> uint(ri)), nil
	}
}

func evalCall(c callNode, vars map[string]float64) (float64, error) {
	fn := builtins[c.fn]
	if len(c.args) < fn.minArgs || (fn.maxArgs >= 0 && len(c.args) > fn.maxArgs) {
		return 0, evalErrorf("wrong number of arguments for %s", c.fn)
	}
	args := make([]float64, len(c.args))
	for i, arg := range c.args {
		val, err := evalNode(arg, vars)
		if err != nil {
			return 0, err
		}
		args[i] = val
	}
	return fn.apply(args)
}
