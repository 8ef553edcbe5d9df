package cmds

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagBindings maps viper keys to flag names of a single command.
type flagBindings map[string]string

// bindFlagsPreRun binds at run time: viper keeps one flag per key, and several
// commands define the same flags.
func bindFlagsPreRun(v *viper.Viper, bindings flagBindings) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		for key, name := range bindings {
			flag, err := lookupFlag(cmd.Flags(), name)
			if err != nil {
				return err
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return errors.Wrapf(err, "could not bind flag %s", name)
			}
		}
		return nil
	}
}

func lookupFlag(fs *pflag.FlagSet, name string) (*pflag.Flag, error) {
	flag := fs.Lookup(name)
	if flag == nil {
		return nil, errors.Errorf("unknown flag %s", name)
	}
	return flag, nil
}

func mergeBindings(bindings ...flagBindings) flagBindings {
	ret := flagBindings{}
	for _, b := range bindings {
		for k, v := range b {
			ret[k] = v
		}
	}
	return ret
}
