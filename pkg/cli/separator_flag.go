package cli

import (
	"github.com/spf13/pflag"

	"aggcsv/internal/config"
)

// separatorValue is a pflag.Value that parses a field separator.
type separatorValue struct {
	r *rune
}

var _ pflag.Value = separatorValue{}

func newSeparatorValue(r *rune) separatorValue {
	return separatorValue{r: r}
}

func (v separatorValue) String() string {
	if v.r == nil || *v.r == 0 {
		return ""
	}
	if *v.r == '\t' {
		return `\t`
	}
	return string(*v.r)
}

func (v separatorValue) Set(s string) error {
	r, err := config.ParseSeparator(s)
	if err != nil {
		return err
	}
	*v.r = r
	return nil
}

func (v separatorValue) Type() string { return "separator" }
