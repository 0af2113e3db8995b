package testcontext

import (
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	citrineerrors "github.com/alexisbeaulieu97/citrine/pkg/errors"
)

// Function is a named helper callable from templates as citrus:name(args).
type Function func(args []string, tc *Context) (string, error)

// FunctionRegistry maps function names to implementations.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewFunctionRegistry creates an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{functions: make(map[string]Function)}
}

// Register adds a function. Registering the same name twice is an error.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	if fn == nil {
		return fmt.Errorf("function %s is nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.functions[name]; exists {
		return fmt.Errorf("function %s already registered", name)
	}
	r.functions[name] = fn
	return nil
}

// Call invokes the named function.
func (r *FunctionRegistry) Call(name string, args []string, tc *Context) (string, error) {
	r.mu.RLock()
	fn, ok := r.functions[name]
	r.mu.RUnlock()
	if !ok {
		return "", citrineerrors.NewFunctionNotFoundError(name)
	}

	result, err := fn(args, tc)
	if err != nil {
		return "", fmt.Errorf("citrus:%s: %w", name, err)
	}
	return result, nil
}

// Names lists the registered functions.
func (r *FunctionRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	return names
}

// DefaultFunctions returns a registry holding the built-in function library.
func DefaultFunctions() *FunctionRegistry {
	r := NewFunctionRegistry()
	builtins := map[string]Function{
		"concat":       concat,
		"upperCase":    unary(strings.ToUpper),
		"lowerCase":    unary(strings.ToLower),
		"substring":    substring,
		"stringLength": stringLength,
		"currentDate":  currentDate,
		"randomNumber": randomNumber,
		"randomUUID":   func([]string, *Context) (string, error) { return uuid.NewString(), nil },
		"randomString": randomString,
		"translate":    translate,
		"sum":          numeric(func(a, b float64) float64 { return a + b }),
		"max":          numeric(math.Max),
		"min":          numeric(math.Min),
		"absolute":     absolute,
	}
	for name, fn := range builtins {
		_ = r.Register(name, fn)
	}
	return r
}

func requireArgs(args []string, min int) error {
	if len(args) < min {
		return fmt.Errorf("expected at least %d arguments, got %d", min, len(args))
	}
	return nil
}

func concat(args []string, _ *Context) (string, error) {
	return strings.Join(args, ""), nil
}

func unary(fn func(string) string) Function {
	return func(args []string, _ *Context) (string, error) {
		if err := requireArgs(args, 1); err != nil {
			return "", err
		}
		return fn(args[0]), nil
	}
}

func substring(args []string, _ *Context) (string, error) {
	if err := requireArgs(args, 2); err != nil {
		return "", err
	}
	runes := []rune(args[0])
	begin, err := strconv.Atoi(args[1])
	if err != nil {
		return "", fmt.Errorf("invalid begin index: %w", err)
	}
	end := len(runes)
	if len(args) > 2 {
		if end, err = strconv.Atoi(args[2]); err != nil {
			return "", fmt.Errorf("invalid end index: %w", err)
		}
	}
	if begin < 0 || end > len(runes) || begin > end {
		return "", fmt.Errorf("index range [%d:%d] out of bounds for length %d", begin, end, len(runes))
	}
	return string(runes[begin:end]), nil
}

func stringLength(args []string, _ *Context) (string, error) {
	if err := requireArgs(args, 1); err != nil {
		return "", err
	}
	return strconv.Itoa(len([]rune(args[0]))), nil
}

// currentDate accepts an optional Go reference layout; the default is dd.MM.yyyy.
func currentDate(args []string, _ *Context) (string, error) {
	layout := "02.01.2006"
	if len(args) > 0 && args[0] != "" {
		layout = args[0]
	}
	return time.Now().Format(layout), nil
}

func randomNumber(args []string, _ *Context) (string, error) {
	if err := requireArgs(args, 1); err != nil {
		return "", err
	}
	length, err := strconv.Atoi(args[0])
	if err != nil || length <= 0 {
		return "", fmt.Errorf("invalid number length %q", args[0])
	}
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		if i == 0 && n.Int64() == 0 {
			n = big.NewInt(1)
		}
		b.WriteString(n.String())
	}
	return b.String(), nil
}

const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

func randomString(args []string, _ *Context) (string, error) {
	if err := requireArgs(args, 1); err != nil {
		return "", err
	}
	length, err := strconv.Atoi(args[0])
	if err != nil || length <= 0 {
		return "", fmt.Errorf("invalid string length %q", args[0])
	}
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			return "", err
		}
		out[i] = alphabet[n.Int64()]
	}
	return string(out), nil
}

func translate(args []string, _ *Context) (string, error) {
	if err := requireArgs(args, 3); err != nil {
		return "", err
	}
	return strings.ReplaceAll(args[0], args[1], args[2]), nil
}

func numeric(op func(a, b float64) float64) Function {
	return func(args []string, _ *Context) (string, error) {
		if err := requireArgs(args, 1); err != nil {
			return "", err
		}
		result, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return "", fmt.Errorf("invalid number %q", args[0])
		}
		for _, arg := range args[1:] {
			n, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				return "", fmt.Errorf("invalid number %q", arg)
			}
			result = op(result, n)
		}
		return strconv.FormatFloat(result, 'f', -1, 64), nil
	}
}

func absolute(args []string, _ *Context) (string, error) {
	if err := requireArgs(args, 1); err != nil {
		return "", err
	}
	n, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return "", fmt.Errorf("invalid number %q", args[0])
	}
	return strconv.FormatFloat(math.Abs(n), 'f', -1, 64), nil
}
