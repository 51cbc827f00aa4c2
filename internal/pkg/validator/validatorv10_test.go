package validator

import (
	"errors"
	"testing"
)

type deviceInput struct {
	DeviceID string `validate:"required,device_id"`
	FlowID   string `validate:"omitempty,uuid"`
	Phone    string `validate:"max=10,digits"`
}

func TestV10Validator(t *testing.T) {
	v, err := NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator() error = %v", err)
	}

	tests := []struct {
		name       string
		in         deviceInput
		wantFields []string
	}{
		{
			name: "valid",
			in:   deviceInput{DeviceID: "pixel-7:abc", FlowID: "0190c4a4-5b3a-7cc1-9e1e-1e0f0bb3a001", Phone: "9876543210"},
		},
		{
			name:       "missing device",
			in:         deviceInput{},
			wantFields: []string{"device_id"},
		},
		{
			name:       "bad device and flow",
			in:         deviceInput{DeviceID: "has space", FlowID: "nope"},
			wantFields: []string{"device_id", "flow_id"},
		},
		{
			name:       "non digit phone",
			in:         deviceInput{DeviceID: "d1", Phone: "98a"},
			wantFields: []string{"phone"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.in)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}

			var verr V10ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error = %v, want V10ValidationError", err)
			}
			for _, f := range tt.wantFields {
				if verr.Values()[f] == "" {
					t.Fatalf("missing field %q in %v", f, verr)
				}
			}
		})
	}
}

func TestV10ValidatorTranslation(t *testing.T) {
	v, err := NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator() error = %v", err)
	}

	err = v.Validate(deviceInput{DeviceID: "d1", Phone: "x"})
	var verr V10ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Validate() error = %v", err)
	}
	if got := verr["phone"]; got != "Phone can contain only digits" {
		t.Fatalf("phone message = %q", got)
	}
}
