// Package calculator implements the key-driven state machine behind the
// scientific calculator front-ends.
package calculator

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Display texts.
const (
	Zero  = "0"
	Error = "Error"
)

// Key labels accepted by Press.
const (
	KeyClear  = "AC"
	KeyEquals = "="
	KeyAdd    = "+"
	KeySub    = "-"
	KeyMul    = "*"
	KeyDiv    = "/"
	KeySin    = "sin"
	KeyCos    = "cos"
	KeyTan    = "tan"
	KeySqrt   = "√"
	KeyLog    = "log"
	KeySquare = "x²"
)

var (
	ErrDivideByZero = errors.New("division by zero")
	ErrDomain       = errors.New("math domain error")
	ErrNotFinite    = errors.New("result is not finite")
)

// Keypad lists the keys in the order the widgets lay them out, row by row.
var Keypad = [][]string{
	{KeyClear, KeySin, KeyCos, KeyTan},
	{KeySqrt, KeyLog, KeySquare, KeyDiv},
	{"7", "8", "9", KeyMul},
	{"4", "5", "6", KeySub},
	{"1", "2", "3", KeyAdd},
	{"0", ".", KeyEquals},
}

// State is the full calculator state. It is exported so stateless
// front-ends can carry it between key presses.
type State struct {
	Display    string  `json:"display"`
	Operator   string  `json:"operator"`
	Operand1   float64 `json:"operand1"`
	NewOperand bool    `json:"new_operand"`
}

// InitialState is the state after power-on or AC.
func InitialState() State {
	return State{Display: Zero, Operator: KeyAdd, NewOperand: true}
}

// Calculator applies key presses to a State. The zero value is not ready for
// use; call New or Restore.
type Calculator struct {
	st State
}

func New() *Calculator {
	return &Calculator{st: InitialState()}
}

// Restore returns a Calculator resuming from st. Missing fields fall back to
// the initial state's values.
func Restore(st State) *Calculator {
	if st.Display == "" {
		st.Display = Zero
	}
	if !isBinary(st.Operator) {
		st.Operator = KeyAdd
	}
	return &Calculator{st: st}
}

func (c *Calculator) Display() string { return c.st.Display }

func (c *Calculator) State() State { return c.st }

// Press applies one key and returns the new display. Unknown keys are
// ignored. Any arithmetic failure shows Error and resets the pending
// operation.
func (c *Calculator) Press(key string) string {
	if err := c.press(key); err != nil {
		c.st.Display = Error
		c.reset()
	}
	return c.st.Display
}

func (c *Calculator) press(key string) error {
	switch {
	case key == KeyClear:
		c.st.Display = Zero
		c.reset()

	case isDigit(key):
		if c.st.Display == Zero || c.st.NewOperand {
			c.st.Display = key
			c.st.NewOperand = false
		} else {
			c.st.Display += key
		}

	case isBinary(key):
		v, err := c.evaluate()
		if err != nil {
			return err
		}
		c.st.Display = format(v)
		c.st.Operator = key
		c.st.Operand1 = v
		c.st.NewOperand = true

	case key == KeyEquals:
		v, err := c.evaluate()
		if err != nil {
			return err
		}
		c.st.Display = format(v)
		c.reset()

	default:
		fn, ok := unary[key]
		if !ok {
			return nil
		}
		x, err := c.operand()
		if err != nil {
			return err
		}
		v, err := fn(x)
		if err != nil {
			return err
		}
		if err := finite(v); err != nil {
			return err
		}
		c.st.Display = format(v)
		c.reset()
	}
	return nil
}

func (c *Calculator) reset() {
	c.st.Operator = KeyAdd
	c.st.Operand1 = 0
	c.st.NewOperand = true
}

func (c *Calculator) operand() (float64, error) {
	return strconv.ParseFloat(c.st.Display, 64)
}

func (c *Calculator) evaluate() (float64, error) {
	b, err := c.operand()
	if err != nil {
		return 0, err
	}
	v, err := Calculate(c.st.Operand1, b, c.st.Operator)
	if err != nil {
		return 0, err
	}
	return v, finite(v)
}

// Calculate applies a binary operator.
func Calculate(a, b float64, op string) (float64, error) {
	switch op {
	case KeyAdd:
		return a + b, nil
	case KeySub:
		return a - b, nil
	case KeyMul:
		return a * b, nil
	case KeyDiv:
		if b == 0 {
			return 0, ErrDivideByZero
		}
		return a / b, nil
	}
	return 0, errors.New("unknown operator " + op)
}

var unary = map[string]func(float64) (float64, error){
	KeySin: func(x float64) (float64, error) { return math.Sin(radians(x)), nil },
	KeyCos: func(x float64) (float64, error) { return math.Cos(radians(x)), nil },
	KeyTan: func(x float64) (float64, error) { return math.Tan(radians(x)), nil },
	KeySqrt: func(x float64) (float64, error) {
		if x < 0 {
			return 0, ErrDomain
		}
		return math.Sqrt(x), nil
	},
	KeyLog: func(x float64) (float64, error) {
		if x <= 0 {
			return 0, ErrDomain
		}
		return math.Log10(x), nil
	},
	KeySquare: func(x float64) (float64, error) { return x * x, nil },
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func finite(v float64) error {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return ErrNotFinite
	}
	return nil
}

func isDigit(key string) bool {
	return len(key) == 1 && strings.Contains("0123456789.", key)
}

func isBinary(key string) bool {
	switch key {
	case KeyAdd, KeySub, KeyMul, KeyDiv:
		return true
	}
	return false
}

// format prints a result as a float: integral values keep a ".0" suffix and
// very large or very small magnitudes use exponent notation.
func format(v float64) string {
	if v == 0 {
		return "0.0"
	}
	abs := math.Abs(v)
	if abs >= 1e16 || abs < 1e-4 {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
