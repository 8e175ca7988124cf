package osc

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Summary limits keep diagnostics bounded regardless of what a client sends.
const (
	maxSummaryArgs      = 8
	maxSummaryStringLen = 32
)

// Message is a decoded OSC message as seen by the Router.
// It is transient: consumed synchronously during Dispatch and never stored.
type Message struct {
	Address   string
	Arguments Arguments
}

// NewMessage builds a Message from an address and argument values.
func NewMessage(address string, args ...any) Message {
	return Message{Address: address, Arguments: Arguments(args)}
}

// Arguments is the ordered list of typed values carried by a message.
//
// Values use the types produced by the OSC decoder: int32, int64, float32,
// float64, string, bool, []byte, nil and timetags. The accessors also accept
// Go's int and float kinds so messages built in code and in tests behave the
// same as decoded ones.
type Arguments []any

// Len returns the number of arguments.
func (a Arguments) Len() int {
	return len(a)
}

// at returns argument i or ErrArity.
func (a Arguments) at(i int) (any, error) {
	if i < 0 || i >= len(a) {
		return nil, fmt.Errorf("%w: no argument at index %d (have %d)", ErrArity, i, len(a))
	}
	return a[i], nil
}

// Int returns argument i as an int.
//
// Floats are accepted when they hold a whole number, because control
// surfaces such as TouchOSC send every fader and button as float32.
func (a Arguments) Int(i int) (int, error) {
	v, err := a.at(i)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case int:
		return n, nil
	case float32:
		return integralFloat(float64(n), i)
	case float64:
		return integralFloat(n, i)
	default:
		return 0, fmt.Errorf("%w: argument %d is %s, want int", ErrArgumentType, i, typeName(v))
	}
}

func integralFloat(f float64, i int) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: argument %d is %v, want whole number", ErrArgumentType, i, f)
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("%w: argument %d is %v", ErrOutOfRange, i, f)
	}
	return int(f), nil
}

// Float returns argument i as a float64. Integer arguments are converted.
// NaN and infinities are rejected.
func (a Arguments) Float(i int) (float64, error) {
	v, err := a.at(i)
	if err != nil {
		return 0, err
	}
	var f float64
	switch n := v.(type) {
	case float32:
		f = float64(n)
	case float64:
		f = n
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case int:
		f = float64(n)
	default:
		return 0, fmt.Errorf("%w: argument %d is %s, want float", ErrArgumentType, i, typeName(v))
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: argument %d is %v", ErrOutOfRange, i, f)
	}
	return f, nil
}

// Bool returns argument i as a bool.
// Numeric 0 and 1 are accepted as false and true.
func (a Arguments) Bool(i int) (bool, error) {
	v, err := a.at(i)
	if err != nil {
		return false, err
	}
	if b, ok := v.(bool); ok {
		return b, nil
	}
	n, err := a.Int(i)
	if err != nil || (n != 0 && n != 1) {
		return false, fmt.Errorf("%w: argument %d is %s, want bool or 0/1", ErrArgumentType, i, typeName(v))
	}
	return n == 1, nil
}

// String returns argument i as a string.
func (a Arguments) String(i int) (string, error) {
	v, err := a.at(i)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: argument %d is %s, want string", ErrArgumentType, i, typeName(v))
	}
	return s, nil
}

// Blob returns argument i as a byte slice.
func (a Arguments) Blob(i int) ([]byte, error) {
	v, err := a.at(i)
	if err != nil {
		return nil, err
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("%w: argument %d is %s, want blob", ErrArgumentType, i, typeName(v))
	}
	return b, nil
}

// Summary renders the arguments for logs and drop events.
// Long strings and blobs are abbreviated and at most eight values are shown.
//
//	[int32:3 string:"mix" blob(512)]
func (a Arguments) Summary() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range a {
		if i == maxSummaryArgs {
			fmt.Fprintf(&sb, " …+%d", len(a)-maxSummaryArgs)
			break
		}
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(summarise(v))
	}
	sb.WriteByte(']')
	return sb.String()
}

func summarise(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case string:
		if len(x) > maxSummaryStringLen {
			cut := maxSummaryStringLen
			for cut > 0 && !utf8.RuneStart(x[cut]) {
				cut--
			}
			x = x[:cut] + "…"
		}
		return "string:" + strconv.Quote(x)
	case []byte:
		return "blob(" + strconv.Itoa(len(x)) + ")"
	case bool:
		return "bool:" + strconv.FormatBool(x)
	default:
		return fmt.Sprintf("%s:%v", typeName(v), v)
	}
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case int32:
		return "int32"
	case int64:
		return "int64"
	case int:
		return "int"
	case float32:
		return "float32"
	case float64:
		return "float64"
	case string:
		return "string"
	case bool:
		return "bool"
	case []byte:
		return "blob"
	default:
		return fmt.Sprintf("%T", v)
	}
}
