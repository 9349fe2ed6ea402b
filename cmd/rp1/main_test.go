package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rp1-run/rp1/internal/options"
)

func TestExitCode(t *testing.T) {
	usage := &options.UsageError{Err: errors.New("bad flag")}
	assert.Equal(t, 2, exitCode(usage))
	assert.Equal(t, 2, exitCode(fmt.Errorf("resolve: %w", usage)))
	assert.Equal(t, 1, exitCode(errors.New("boom")))
}
