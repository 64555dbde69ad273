// Package scripting runs user-supplied JavaScript rule hooks that can
// veto or override individual token conversions.
package scripting

import (
	"context"
	"fmt"
	"os"

	"github.com/dop251/goja"
)

// Decision is a rule hook's verdict for one token.
type Decision int

const (
	// Pass leaves the token to the normal conversion path.
	Pass Decision = iota
	// Skip keeps the token unchanged.
	Skip
	// Override replaces the token with the hook's own text.
	Override
)

// Rules wraps a compiled rule script. The script must define a global
// function decide(token, page); it may return "skip", a replacement
// string, or nothing.
type Rules struct {
	vm     *goja.Runtime
	decide goja.Callable
}

// Load reads and compiles a rule script from disk.
func Load(path string) (*Rules, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	rules, err := New(string(src))
	if err != nil {
		return nil, fmt.Errorf("load rules %q: %w", path, err)
	}
	return rules, nil
}

// New compiles a rule script from source.
func New(src string) (*Rules, error) {
	vm := goja.New()
	if _, err := vm.RunString(src); err != nil {
		return nil, fmt.Errorf("compile rules: %w", err)
	}
	decide, ok := goja.AssertFunction(vm.Get("decide"))
	if !ok {
		return nil, fmt.Errorf("rules script does not define decide(token, page)")
	}
	return &Rules{vm: vm, decide: decide}, nil
}

// Decide invokes the hook for one token. The context bounds script
// execution time.
func (r *Rules) Decide(ctx context.Context, token string, page int) (Decision, string, error) {
	if err := ctx.Err(); err != nil {
		return Pass, "", err
	}

	done := make(chan struct{})
	defer close(done)
	defer r.vm.ClearInterrupt()
	go func() {
		select {
		case <-ctx.Done():
			r.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	val, err := r.decide(goja.Undefined(), r.vm.ToValue(token), r.vm.ToValue(page))
	if err != nil {
		if interrupted, ok := err.(*goja.InterruptedError); ok {
			if cause := interrupted.Unwrap(); cause != nil {
				return Pass, "", cause
			}
			return Pass, "", context.Canceled
		}
		return Pass, "", fmt.Errorf("decide(%q): %w", token, err)
	}
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return Pass, "", nil
	}
	text := val.String()
	if text == "skip" {
		return Skip, "", nil
	}
	return Override, text, nil
}
