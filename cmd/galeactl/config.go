package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openbci/go-galea/galea"
)

func newConfigCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config <command>...",
		Short: "Send raw configuration commands to the board",
		Long: `Config prepares the board and forwards each argument as one raw
configuration command line. The reserved command "calc_time" runs a
clock probe and prints its result.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := loadFileConfig(flags.configPath)
			if err != nil {
				return err
			}
			fc.resolve(flags)

			opts, err := fc.sessionOptions()
			if err != nil {
				return err
			}

			cfg, err := galea.NewConfig(fc.Port, opts...)
			if err != nil {
				return err
			}

			session, err := galea.NewSession(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer session.Release()

			if err := session.Prepare(); err != nil {
				return err
			}

			for _, raw := range args {
				out, err := session.Configure(raw)
				if err != nil {
					return fmt.Errorf("command %q: %w", raw, err)
				}
				if out != "" {
					fmt.Println(out)
				}
			}

			return nil
		},
	}

	return cmd
}
