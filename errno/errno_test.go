package errno

import (
	"errors"
	"fmt"
	"testing"
)

func TestMessage(t *testing.T) {
	tests := []struct {
		code Errno
		want string
	}{
		{0, "Success"},
		{ENOMEM, "Cannot allocate memory"},
		{EINVAL, "Invalid argument"},
		{ERANGE, "Numerical result out of range"},
		{EILSEQ, "Invalid or incomplete multibyte or wide character"},
		{4095, "Unknown error 4095"},
		{-7, "Unknown error -7"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := Message(tt.code); got != tt.want {
				t.Errorf("Message(%d) = %q, want %q", tt.code, got, tt.want)
			}
		})
	}
}

func TestErrno_Name(t *testing.T) {
	if ENOMEM.Name() != "ENOMEM" {
		t.Errorf("got %q", ENOMEM.Name())
	}
	if Errno(999).Name() != "E999" {
		t.Errorf("got %q", Errno(999).Name())
	}
	if Errno(999).Known() {
		t.Error("999 should not be known")
	}
}

type coded struct{ code Errno }

func (c coded) Error() string { return "coded" }
func (c coded) Errno() Errno  { return c.code }

func TestOf(t *testing.T) {
	if Of(nil) != 0 {
		t.Error("nil should map to 0")
	}
	if Of(ERANGE) != ERANGE {
		t.Error("direct errno not extracted")
	}
	if Of(fmt.Errorf("wrap: %w", EILSEQ)) != EILSEQ {
		t.Error("wrapped errno not extracted")
	}
	if Of(coded{ENOMEM}) != ENOMEM {
		t.Error("coder not consulted")
	}
	if Of(errors.New("plain")) != EINVAL {
		t.Error("plain errors should map to EINVAL")
	}
}

func TestLinuxNumbering(t *testing.T) {
	tests := []struct {
		code Errno
		want int32
	}{
		{EINVAL, 22},
		{ENOMEM, 12},
		{ERANGE, 34},
		{EILSEQ, 84},
		{ENOSYS, 38},
	}
	for _, tt := range tests {
		if int32(tt.code) != tt.want {
			t.Errorf("%s = %d, want %d", tt.code.Name(), int32(tt.code), tt.want)
		}
	}
}
