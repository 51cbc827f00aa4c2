package router

import (
	"context"
	"net/http"
	"strings"

	"github.com/shandysiswandi/shield/internal/pkg/goerror"
)

// HeaderDeviceID identifies the calling device on every onboarding request.
const HeaderDeviceID = "X-Device-ID"

type deviceKey struct{}

type deviceHeader struct {
	XDeviceID string `validate:"required,device_id"`
}

// SetDeviceID stores the device id in ctx.
func SetDeviceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, deviceKey{}, id)
}

// GetDeviceID returns the device id placed by RequireDevice, or "".
func GetDeviceID(ctx context.Context) string {
	id, _ := ctx.Value(deviceKey{}).(string)
	return id
}

// RequireDevice rejects requests without a valid X-Device-ID header with 422.
func (r *Router) RequireDevice() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			in := deviceHeader{XDeviceID: strings.TrimSpace(req.Header.Get(HeaderDeviceID))}

			var err error
			if r.validator != nil {
				err = r.validator.Validate(in)
			} else if in.XDeviceID == "" {
				err = goerror.NewInvalidInput(nil, "x_device_id", "XDeviceID is a required field")
			}
			if err != nil {
				if _, ok := goerror.As(err); !ok {
					err = goerror.NewInvalidInput(err)
				}
				WriteError(w, req, err)
				return
			}

			next.ServeHTTP(w, req.WithContext(SetDeviceID(req.Context(), in.XDeviceID)))
		})
	}
}
