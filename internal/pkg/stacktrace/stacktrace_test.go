package stacktrace

import (
	"reflect"
	"testing"
)

func TestInternalPaths(t *testing.T) {
	stack := []byte(`goroutine 7 [running]:
runtime/debug.Stack()
	/usr/local/go/src/runtime/debug/stack.go:26 +0x5e
github.com/shandysiswandi/shield/internal/pkg/goroutine.(*Manager).Go.func1.1()
	/src/internal/pkg/goroutine/goroutine.go:70 +0x8a
github.com/shandysiswandi/shield/internal/onboarding/otpflow.(*Controller).fire()
	/src/internal/onboarding/otpflow/controller.go:120
`)

	want := []string{
		"internal/pkg/goroutine/goroutine.go:70",
		"internal/onboarding/otpflow/controller.go:120",
	}
	if got := InternalPaths(stack); !reflect.DeepEqual(got, want) {
		t.Fatalf("InternalPaths() = %v, want %v", got, want)
	}
}

func TestInternalPathsEmpty(t *testing.T) {
	if got := InternalPaths(nil); len(got) != 0 {
		t.Fatalf("InternalPaths(nil) = %v", got)
	}
}
