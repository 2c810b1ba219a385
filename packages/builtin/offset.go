package builtin

import (
	"strconv"
	"time"

	"github.com/abdul-hamid-achik/hitvars/packages/core/errs"
)

var offsetUnits = map[string]time.Duration{
	"s": time.Second,
	"m": time.Minute,
	"h": time.Hour,
	"d": 24 * time.Hour,
}

// ParseOffset parses the optional "<signed-int> <unit>" pair that follows
// timestamp and datetime. No arguments means no offset.
func ParseOffset(args []string) (time.Duration, error) {
	switch len(args) {
	case 0:
		return 0, nil
	case 2:
	default:
		return 0, errs.Offset("expected <amount> <unit>, got %d argument(s)", len(args))
	}

	amount, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, errs.Offset("amount %q is not an integer", args[0])
	}
	unit, ok := offsetUnits[args[1]]
	if !ok {
		return 0, errs.Offset("unknown unit %q (expected s, m, h or d)", args[1])
	}
	return time.Duration(amount) * unit, nil
}
