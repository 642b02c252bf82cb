package facts

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Fact is one predicate applied to its arguments.
type Fact struct {
	Predicate string   `json:"name"`
	Args      []string `json:"args"`
}

// New builds a fact. Non-string arguments are rendered by [Arg].
func New(predicate string, args ...any) Fact {
	f := Fact{Predicate: predicate, Args: make([]string, len(args))}
	for i, a := range args {
		f.Args[i] = Arg(a)
	}
	return f
}

// Arg renders a fact argument. Strings are kept as they are; any other
// value is tagged with its type, as in "int(3)" or "bool(true)".
func Arg(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return "bool(" + strconv.FormatBool(x) + ")"
	case int:
		return "int(" + strconv.Itoa(x) + ")"
	case int64:
		return "int(" + strconv.FormatInt(x, 10) + ")"
	case uint64:
		return "int(" + strconv.FormatUint(x, 10) + ")"
	case float64:
		return "float(" + strconv.FormatFloat(x, 'g', -1, 64) + ")"
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return Arg(i)
		}
		if f, err := x.Float64(); err == nil {
			return Arg(f)
		}
		return x.String()
	case nil:
		return "none()"
	}
	return fmt.Sprintf("%T(%v)", v, v)
}

// Key identifies the fact within a [Set].
func (f Fact) Key() string {
	var b strings.Builder
	b.WriteString(f.Predicate)
	for _, a := range f.Args {
		b.WriteByte(0)
		b.WriteString(a)
	}
	return b.String()
}

// Tuple returns the predicate followed by the arguments.
func (f Fact) Tuple() []string {
	return append([]string{f.Predicate}, f.Args...)
}

// String renders the fact as predicate("arg", ...).
func (f Fact) String() string {
	quoted := make([]string, len(f.Args))
	for i, a := range f.Args {
		quoted[i] = strconv.Quote(a)
	}
	return f.Predicate + "(" + strings.Join(quoted, ", ") + ")"
}
