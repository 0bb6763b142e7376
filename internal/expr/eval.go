package expr

import "fmt"

// Eval evaluates the tree against a set of accessor values. It exists so a
// fully specialized expression can be checked against concrete data; trees
// that still contain calls have not been inlined and are an error.
func Eval(n Node, vars map[string]float64) (float64, error) {
	switch v := n.(type) {
	case *NumberLit:
		return v.Value, nil
	case *Ident:
		val, ok := vars[v.Name]
		if !ok {
			return 0, fmt.Errorf("no value bound for %q", v.Name)
		}

		return val, nil
	case *CallExpr:
		return 0, fmt.Errorf("call %q was not inlined", v.Name)
	case *BinaryExpr:
		left, err := Eval(v.Left, vars)
		if err != nil {
			return 0, err
		}

		right, err := Eval(v.Right, vars)
		if err != nil {
			return 0, err
		}

		switch v.Op {
		case "+":
			return left + right, nil
		case "-":
			return left - right, nil
		case "*":
			return left * right, nil
		case "/":
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}

			return left / right, nil
		default:
			return 0, fmt.Errorf("unknown operator %q", v.Op)
		}
	default:
		return 0, fmt.Errorf("unknown node %T", n)
	}
}
