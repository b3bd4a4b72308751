package runtime

import (
	"fmt"

	mdwerror "github.com/msto63/bayan/foundation/core/error"
)

// Thrown carries a value raised by a throw statement
type Thrown struct {
	Value  Value
	Line   int
	Column int
}

func (t *Thrown) Error() string {
	msg := "uncaught " + Inspect(t.Value)
	if t.Line > 0 {
		msg = fmt.Sprintf("%s at line %d, column %d", msg, t.Line, t.Column)
	}
	return msg
}

// Errorf creates a runtime error
func Errorf(format string, args ...interface{}) *mdwerror.Error {
	return mdwerror.Newf(format, args...).WithCode(mdwerror.CodeRuntime)
}

// TypeErrorf creates a runtime error for an operation applied to values
// of the wrong type
func TypeErrorf(format string, args ...interface{}) *mdwerror.Error {
	return Errorf(format, args...).WithDetail("kind", "TypeError")
}
