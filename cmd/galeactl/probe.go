package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openbci/go-galea/galea"
	"github.com/openbci/go-galea/journal"
)

func newProbeCmd(flags *rootFlags) *cobra.Command {
	var (
		count       int
		journalPath string
	)

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Measure the round trip and clock offset to the board",
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := loadFileConfig(flags.configPath)
			if err != nil {
				return err
			}
			fc.resolve(flags)

			if journalPath != "" {
				fc.JournalPath = journalPath
			}

			return runProbe(cmd.Context(), fc, count)
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 3, "number of probes to run")
	cmd.Flags().StringVar(&journalPath, "journal", "", "record probe results to this journal file")

	return cmd
}

func runProbe(ctx context.Context, fc *fileConfig, count int) error {
	opts, err := fc.sessionOptions()
	if err != nil {
		return err
	}

	cfg, err := galea.NewConfig(fc.Port, opts...)
	if err != nil {
		return err
	}

	session, err := galea.NewSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer session.Release()

	if err := session.Prepare(); err != nil {
		return err
	}

	var jnl *journal.Journal
	if fc.JournalPath != "" {
		jnl, err = journal.Open(fc.JournalPath)
		if err != nil {
			return err
		}
		defer jnl.Close()
	}

	for i := 0; i < count; i++ {
		out, err := session.Configure(galea.CmdClockProbe)
		if err != nil {
			return err
		}

		fmt.Println(out)

		if jnl != nil {
			var res galea.ProbeResult
			if err := json.Unmarshal([]byte(out), &res); err != nil {
				return fmt.Errorf("decode probe result: %w", err)
			}
			if err := jnl.RecordProbe(&res); err != nil {
				return err
			}
		}
	}

	return nil
}
