package conf

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagKeyAnnotation marks a flag with the config key it overrides.
const flagKeyAnnotation = "vocab-manager/config-key"

// MapFlag records that flag name overrides config key. Several commands may
// map their own flags to the same key; only the running command's flags
// are bound by BindFlags.
func MapFlag(flags *pflag.FlagSet, name, key string) error {
	if err := flags.SetAnnotation(name, flagKeyAnnotation, []string{key}); err != nil {
		return fmt.Errorf("error mapping flag %s: %w", name, err)
	}
	return nil
}

// BindFlags binds every mapped flag in flags to viper. Call it before Load.
func BindFlags(flags *pflag.FlagSet) error {
	var bindErr error
	flags.VisitAll(func(f *pflag.Flag) {
		keys := f.Annotations[flagKeyAnnotation]
		if len(keys) == 0 || bindErr != nil {
			return
		}
		if err := viper.BindPFlag(keys[0], f); err != nil {
			bindErr = fmt.Errorf("error binding flag %s: %w", f.Name, err)
		}
	})
	return bindErr
}
