// Package numeric supplies SQALE's transcendental math builtins
// (sqrt/pow/floor/ceil/round) by dynamically loading the host's libm and
// binding its symbols with purego, rather than reimplementing IEEE-754
// rounding and power functions by hand.
package numeric

import (
	"runtime"
	"sync"

	"github.com/ebitengine/purego"
)

type libm struct {
	sqrt  func(float64) float64
	pow   func(float64, float64) float64
	floor func(float64) float64
	ceil  func(float64) float64
	round func(float64) float64
}

var (
	once sync.Once
	lib  *libm
)

// libmPath returns the shared object/dylib name to dlopen for math
// functions on the running platform.
func libmPath() string {
	switch runtime.GOOS {
	case "darwin":
		return "libm.dylib"
	case "windows":
		// Windows bundles these into msvcrt; there is no separate libm.
		return "msvcrt.dll"
	default:
		return "libm.so.6"
	}
}

func load() *libm {
	once.Do(func() {
		handle, err := purego.Dlopen(libmPath(), purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			lib = nil
			return
		}

		l := &libm{}
		purego.RegisterLibFunc(&l.sqrt, handle, "sqrt")
		purego.RegisterLibFunc(&l.pow, handle, "pow")
		purego.RegisterLibFunc(&l.floor, handle, "floor")
		purego.RegisterLibFunc(&l.ceil, handle, "ceil")
		purego.RegisterLibFunc(&l.round, handle, "round")
		lib = l
	})

	return lib
}

// Sqrt computes the square root via the platform's libm. ok is false if
// libm could not be loaded (e.g. a platform purego does not support),
// letting the caller fall back to the usual builtin-misuse Unit result.
func Sqrt(x float64) (float64, bool) {
	l := load()
	if l == nil || l.sqrt == nil {
		return 0, false
	}

	return l.sqrt(x), true
}

func Pow(x, y float64) (float64, bool) {
	l := load()
	if l == nil || l.pow == nil {
		return 0, false
	}

	return l.pow(x, y), true
}

func Floor(x float64) (float64, bool) {
	l := load()
	if l == nil || l.floor == nil {
		return 0, false
	}

	return l.floor(x), true
}

func Ceil(x float64) (float64, bool) {
	l := load()
	if l == nil || l.ceil == nil {
		return 0, false
	}

	return l.ceil(x), true
}

func Round(x float64) (float64, bool) {
	l := load()
	if l == nil || l.round == nil {
		return 0, false
	}

	return l.round(x), true
}
