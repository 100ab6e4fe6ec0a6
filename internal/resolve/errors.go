package resolve

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dgallion1/templext/internal/directive"
)

// ErrCycle matches every *CycleError.
var ErrCycle = errors.New("directive cycle")

// CycleError reports a file that includes or extends itself, directly or
// through other files. Chain lists the paths in visiting order and ends with
// the repeated one.
type CycleError struct {
	Kind  directive.Kind
	Chain []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s cycle: %s", e.Kind, strings.Join(e.Chain, " -> "))
}

func (e *CycleError) Is(target error) bool {
	return target == ErrCycle
}
