package cli

import (
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestIsUnknownCommandError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "unknown command error", err: errors.New(`unknown command "foo" for "hublink"`), want: true},
		{name: "unknown flag error", err: errors.New(`unknown flag: --foo`), want: true},
		{name: "unknown shorthand flag", err: errors.New(`unknown shorthand flag: 'z' in -z`), want: true},
		{name: "other error", err: errors.New("connection failed"), want: false},
		{name: "nil error", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUnknownCommandError(tt.err))
		})
	}
}

func TestExtractUnknownCommand(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "standard cobra format", err: errors.New(`unknown command "foo" for "hublink"`), want: "foo"},
		{name: "command with hyphen", err: errors.New(`unknown command "dis-connect" for "hublink"`), want: "dis-connect"},
		{name: "no quotes returns empty", err: errors.New("unknown command foo"), want: ""},
		{name: "single quote returns empty", err: errors.New(`unknown command "foo`), want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractUnknownCommand(tt.err))
		})
	}
}

func TestRootCmd_Commands(t *testing.T) {
	root := NewRootCmd()

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"connect", "list", "disconnect", "enable", "disable", "targets", "mock-server", "init", "config", "version", "completion"} {
		assert.True(t, names[want], "missing command %s", want)
	}

	for _, flag := range []string{"config", "no-color", "debug", "json"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), "missing flag --%s", flag)
	}
}

func TestSkipsConfig(t *testing.T) {
	parent := &cobra.Command{Use: "config"}
	child := &cobra.Command{Use: "keys", Annotations: map[string]string{skipConfigAnnotation: "true"}}
	other := &cobra.Command{Use: "show"}
	parent.AddCommand(child, other)

	assert.True(t, skipsConfig(child))
	assert.False(t, skipsConfig(other))
	assert.False(t, skipsConfig(parent))
}

func TestExitError(t *testing.T) {
	err := &exitError{code: 3}
	assert.Equal(t, "exit status 3", err.Error())
}
