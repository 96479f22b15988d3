package irctest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// AssertRoster compares a roster to a list of nicks, in order.
func AssertRoster(t *testing.T, roster []string, assertedOrder ...string) bool {
	t.Helper()

	return assert.Equal(t, strings.Join(assertedOrder, ", "), strings.Join(roster, ", "), "roster")
}
