package database

import (
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	refused := &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}

	cases := []struct {
		name string
		err  error
		want Category
	}{
		{"nil", nil, CategoryNone},
		{"bad password", &pq.Error{Code: "28P01", Message: "password authentication failed for user \"root\""}, CategoryAccessDenied},
		{"missing database", fmt.Errorf("find instructor: %w", &pq.Error{Code: "3D000"}), CategoryMissingSchema},
		{"missing table", &pq.Error{Code: "42P01"}, CategoryMissingSchema},
		{"other pq error", &pq.Error{Code: "23505"}, CategoryUnknown},
		{"connection refused", fmt.Errorf("find instructor: %w", refused), CategoryUnreachable},
		{"dns failure", &net.OpError{Op: "dial", Err: &net.DNSError{Name: "db.invalid", IsNotFound: true}}, CategoryHostUnreachable},
		{"host unreachable", &net.OpError{Op: "dial", Err: os.NewSyscallError("connect", syscall.EHOSTUNREACH)}, CategoryHostUnreachable},
		{"plain", errors.New("boom"), CategoryUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.err))
		})
	}
}

func TestCategoryMessageHidesDriverText(t *testing.T) {
	err := &pq.Error{Code: "28P01", Message: "password authentication failed for user \"root\""}
	msg := Classify(err).Message()
	assert.NotContains(t, msg, "root")
	assert.Equal(t, CategoryUnknown.Message(), Category("weird").Message())
}
