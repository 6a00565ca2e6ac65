package config

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/gleyba/uber-poet/errors"
)

var changedFlags = map[string]bool{}

// BindFlags binds command-line flags to dotted config keys. Only flags the
// user actually set override file and environment values.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) error {
	for flagName, key := range keys {
		f := flags.Lookup(flagName)
		if f == nil {
			return errors.Newf("unknown flag %q bound to %s", flagName, key)
		}
		if !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return errors.Wrapf(err, "failed to bind flag %s", flagName)
		}
		changedFlags[key] = true
	}
	return nil
}

func flagChanged(key string) bool {
	return changedFlags[key]
}
