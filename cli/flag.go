package cli

import (
	"github.com/spf13/pflag"
)

// tabFlag records whether --tab was given, so an explicit empty value still opens the page.
type tabFlag struct {
	IsSet bool
	Value string
}

// String implements pflag.Value.
func (s *tabFlag) String() string {
	return s.Value
}

func (s *tabFlag) Set(value string) error {
	s.Value = value
	s.IsSet = true
	return nil
}

func (s *tabFlag) Type() string {
	return "source-id"
}

var _ pflag.Value = &tabFlag{}
