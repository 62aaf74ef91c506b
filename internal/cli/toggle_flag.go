package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	toggleFlagTypeName     = "bool"
	toggleOnLiteral        = "true"
	argumentTerminator     = "--"
	longFlagPrefix         = "--"
	errorToggleValueFormat = "invalid value %q for --%s: use true/false, yes/no, on/off or 1/0"
)

var toggleLiterals = map[string]bool{
	"true":  true,
	"yes":   true,
	"on":    true,
	"1":     true,
	"false": false,
	"no":    false,
	"off":   false,
	"0":     false,
}

func parseToggleLiteral(input string) (bool, bool) {
	enabled, known := toggleLiterals[strings.ToLower(strings.TrimSpace(input))]
	return enabled, known
}

// toggleValue backs the on/off flags of sitemapper (--copy, --verbose,
// --no-ignore, --global, --force). A bare flag turns the toggle on.
type toggleValue struct {
	target *bool
	name   string
}

func (value *toggleValue) Set(input string) error {
	if strings.TrimSpace(input) == "" {
		*value.target = true
		return nil
	}
	enabled, known := parseToggleLiteral(input)
	if !known {
		return fmt.Errorf(errorToggleValueFormat, input, value.name)
	}
	*value.target = enabled
	return nil
}

func (value *toggleValue) String() string {
	if value.target == nil {
		return strconv.FormatBool(false)
	}
	return strconv.FormatBool(*value.target)
}

func (value *toggleValue) Type() string {
	return toggleFlagTypeName
}

// registerToggleFlag adds an off-by-default toggle named name to flagSet.
func registerToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, usage string) {
	*target = false
	flag := flagSet.VarPF(&toggleValue{target: target, name: name}, name, "", usage)
	flag.NoOptDefVal = toggleOnLiteral
}

// expandToggleArguments rewrites "--copy yes" into "--copy=yes" for every
// toggle registered under rootCommand, so the literal is not taken for the
// root argument. Arguments after "--" are left alone.
func expandToggleArguments(rootCommand *cobra.Command, arguments []string) []string {
	toggleNames := collectToggleNames(rootCommand)
	if len(toggleNames) == 0 {
		return arguments
	}
	expanded := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		argument := arguments[index]
		if argument == argumentTerminator {
			return append(expanded, arguments[index:]...)
		}
		flagName := strings.TrimPrefix(argument, longFlagPrefix)
		_, isToggle := toggleNames[flagName]
		if isToggle && flagName != argument && index+1 < len(arguments) {
			if _, known := parseToggleLiteral(arguments[index+1]); known {
				expanded = append(expanded, argument+"="+arguments[index+1])
				index++
				continue
			}
		}
		expanded = append(expanded, argument)
	}
	return expanded
}

// collectToggleNames returns the names of toggle flags on rootCommand and all of its descendants.
func collectToggleNames(rootCommand *cobra.Command) map[string]struct{} {
	toggleNames := map[string]struct{}{}
	collect := func(flag *pflag.Flag) {
		if _, isToggle := flag.Value.(*toggleValue); isToggle {
			toggleNames[flag.Name] = struct{}{}
		}
	}
	pending := []*cobra.Command{rootCommand}
	for len(pending) > 0 {
		command := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		command.PersistentFlags().VisitAll(collect)
		command.Flags().VisitAll(collect)
		pending = append(pending, command.Commands()...)
	}
	return toggleNames
}
