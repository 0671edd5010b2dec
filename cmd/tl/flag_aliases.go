package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// taskFieldFlagAliases maps short spellings to task field flags. Aliases
// resolve through the flag set's normalizer, so they never show up in usage.
var taskFieldFlagAliases = map[string]string{
	"desc":  "description",
	"due":   "deadline",
	"start": "start-date",
	"pri":   "priority",
}

func addTaskFieldFlagAliases(cmds ...*cobra.Command) {
	for _, cmd := range cmds {
		aliasFlags(cmd.Flags(), taskFieldFlagAliases)
	}
}

func aliasFlags(flags *pflag.FlagSet, aliases map[string]string) {
	if len(aliases) == 0 {
		return
	}

	normalize := flags.GetNormalizeFunc()
	flags.SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		if canonical, ok := aliases[name]; ok {
			name = canonical
		}
		return normalize(f, name)
	})
}
