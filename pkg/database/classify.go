package database

import (
	"errors"
	"net"
	"syscall"

	"github.com/lib/pq"
)

// Category is a user-facing bucket for store connectivity and access failures.
type Category string

const (
	CategoryNone            Category = ""
	CategoryUnreachable     Category = "unreachable"
	CategoryAccessDenied    Category = "access_denied"
	CategoryMissingSchema   Category = "missing_schema"
	CategoryHostUnreachable Category = "host_unreachable"
	CategoryUnknown         Category = "unknown"
)

var categoryMessages = map[Category]string{
	CategoryUnreachable:     "Cannot connect to the database. Please make sure the database server is running.",
	CategoryAccessDenied:    "Database access denied. Please check the database credentials.",
	CategoryMissingSchema:   "Database or tables not found. Please run the database setup.",
	CategoryHostUnreachable: "Database host could not be reached. Please check the database host configuration.",
	CategoryUnknown:         "An error occurred during login. Please try again.",
}

// Message returns the text shown to users for the category. It never contains driver output.
func (c Category) Message() string {
	if msg, ok := categoryMessages[c]; ok {
		return msg
	}
	return categoryMessages[CategoryUnknown]
}

// Classify maps a driver or network error onto a Category.
func Classify(err error) Category {
	if err == nil {
		return CategoryNone
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "28P01", "28000":
			return CategoryAccessDenied
		case "3D000", "3F000", "42P01":
			return CategoryMissingSchema
		case "57P03", "08001", "08006":
			return CategoryUnreachable
		}
		return CategoryUnknown
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return CategoryHostUnreachable
	}

	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return CategoryUnreachable
	case errors.Is(err, syscall.EHOSTUNREACH), errors.Is(err, syscall.ENETUNREACH):
		return CategoryHostUnreachable
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return CategoryHostUnreachable
	}

	return CategoryUnknown
}
