package builtin

import (
	"math"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitvars/packages/core/errs"
	"github.com/google/uuid"
)

// Function identifies a built-in function.
type Function int

const (
	FuncGUID Function = iota
	FuncTimestamp
	FuncDatetime
	FuncRandomInt
	FuncProcessEnv
	FuncDotenv

	funcCount
)

var functionNames = [funcCount]string{
	FuncGUID:       "guid",
	FuncTimestamp:  "timestamp",
	FuncDatetime:   "datetime",
	FuncRandomInt:  "randomInt",
	FuncProcessEnv: "processEnv",
	FuncDotenv:     "dotenv",
}

func (f Function) String() string {
	if f < 0 || f >= funcCount {
		return "unknown"
	}
	return functionNames[f]
}

// LookupFunction returns the Function registered under name.
func LookupFunction(name string) (Function, bool) {
	for i, n := range functionNames {
		if n == name {
			return Function(i), true
		}
	}
	return 0, false
}

// Functions returns the names of all built-in functions in declaration order.
func Functions() []string {
	names := make([]string, 0, funcCount)
	names = append(names, functionNames[:]...)
	return names
}

type handler func(r *Resolver, args []string) (string, error)

// Indexed by Function.
var handlers = [funcCount]handler{
	FuncGUID:       (*Resolver).guid,
	FuncTimestamp:  (*Resolver).timestamp,
	FuncDatetime:   (*Resolver).datetime,
	FuncRandomInt:  (*Resolver).randomInt,
	FuncProcessEnv: (*Resolver).processEnv,
	FuncDotenv:     (*Resolver).dotenv,
}

const (
	// RFC1123Layout renders an RFC 2822 style date with a numeric zone.
	RFC1123Layout = "Mon, 02 Jan 2006 15:04:05 -0700"
	// ISO8601Layout renders millisecond precision with a Z suffix in UTC.
	ISO8601Layout = "2006-01-02T15:04:05.000Z07:00"
)

// Resolver evaluates built-in function calls.
type Resolver struct {
	now       func() time.Time
	lookupEnv func(string) (string, bool)
	dotenvs   *DotenvCache
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClock overrides the time source used by timestamp and datetime.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

// WithLookupEnv overrides the process environment lookup used by processEnv.
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(r *Resolver) {
		r.lookupEnv = fn
	}
}

// WithDotenv sets the cache used by the dotenv function.
func WithDotenv(cache *DotenvCache) Option {
	return func(r *Resolver) {
		r.dotenvs = cache
	}
}

// NewResolver returns a Resolver reading the real clock and process
// environment, with a dotenv cache rooted at the working directory.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		now:       time.Now,
		lookupEnv: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.dotenvs == nil {
		r.dotenvs = NewDotenvCache(".")
	}
	return r
}

// Dotenv returns the cache backing the dotenv function.
func (r *Resolver) Dotenv() *DotenvCache {
	return r.dotenvs
}

// Call evaluates the function name with args. Unknown names fail with
// errs.UndefinedVariable, the same as unknown scope variables.
func (r *Resolver) Call(name string, args []string) (string, error) {
	fn, ok := LookupFunction(name)
	if !ok {
		return "", errs.Undefined("$" + name)
	}
	return handlers[fn](r, args)
}

func (r *Resolver) guid(_ []string) (string, error) {
	return uuid.New().String(), nil
}

func (r *Resolver) timestamp(args []string) (string, error) {
	offset, err := ParseOffset(args)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(r.now().Add(offset).Unix(), 10), nil
}

func (r *Resolver) datetime(args []string) (string, error) {
	if len(args) == 0 {
		return "", errs.Syntax("datetime requires a format: rfc1123 or iso8601")
	}

	var layout string
	switch args[0] {
	case "rfc1123":
		layout = RFC1123Layout
	case "iso8601":
		layout = ISO8601Layout
	default:
		return "", errs.Syntax("unknown datetime format %q", args[0])
	}

	offset, err := ParseOffset(args[1:])
	if err != nil {
		return "", err
	}
	return r.now().Add(offset).UTC().Format(layout), nil
}

func (r *Resolver) randomInt(args []string) (string, error) {
	if len(args) != 2 {
		return "", errs.Syntax("randomInt requires min and max, got %d argument(s)", len(args))
	}
	lo, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return "", errs.Syntax("randomInt min %q is not an integer", args[0])
	}
	hi, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return "", errs.Syntax("randomInt max %q is not an integer", args[1])
	}
	if lo > hi {
		return "", errs.Syntax("randomInt min %d is greater than max %d", lo, hi)
	}

	span := uint64(hi) - uint64(lo)
	if span == math.MaxUint64 {
		return strconv.FormatInt(int64(rand.Uint64()), 10), nil
	}
	return strconv.FormatInt(lo+int64(rand.Uint64N(span+1)), 10), nil
}

func (r *Resolver) processEnv(args []string) (string, error) {
	if len(args) != 1 {
		return "", errs.Syntax("processEnv requires exactly one variable name")
	}

	name, optional := strings.CutPrefix(args[0], "%")
	if value, ok := r.lookupEnv(name); ok {
		return value, nil
	}
	if optional {
		return "", nil
	}
	return "", errs.EnvVarMissing(name)
}

func (r *Resolver) dotenv(args []string) (string, error) {
	if len(args) != 1 {
		return "", errs.Syntax("dotenv requires exactly one variable name")
	}

	value, ok, err := r.dotenvs.Lookup(args[0])
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errs.EnvVarMissing(args[0])
	}
	return value, nil
}
