package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/openbci/go-galea/galea"
	"github.com/openbci/go-galea/journal"
	"github.com/openbci/go-galea/logger"
	"github.com/openbci/go-galea/sink"
)

func newStreamCmd(flags *rootFlags) *cobra.Command {
	var (
		duration    time.Duration
		csvPath     string
		mqttURL     string
		mqttTopic   string
		journalPath string
	)

	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Stream sample data from the board",
		Long: `Stream starts acquisition and forwards decoded sample rows to the
configured sinks until the duration elapses or an interrupt arrives.

Rows always land in the in-memory ring buffer; --csv and --mqtt-url
attach additional sinks.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := loadFileConfig(flags.configPath)
			if err != nil {
				return err
			}
			fc.resolve(flags)

			if csvPath != "" {
				fc.CSVPath = csvPath
			}
			if mqttURL != "" {
				fc.MQTTURL = mqttURL
			}
			if mqttTopic != "" {
				fc.MQTTTopic = mqttTopic
			}
			if journalPath != "" {
				fc.JournalPath = journalPath
			}

			return runStream(cmd.Context(), fc, duration)
		},
	}

	cmd.Flags().DurationVarP(&duration, "duration", "d", 0, "how long to stream; 0 streams until interrupted")
	cmd.Flags().StringVar(&csvPath, "csv", "", "write sample rows to this CSV file")
	cmd.Flags().StringVar(&mqttURL, "mqtt-url", "", "publish sample rows to this MQTT broker, e.g. mqtt://host:1883")
	cmd.Flags().StringVar(&mqttTopic, "mqtt-topic", "galea/samples", "MQTT topic for published rows")
	cmd.Flags().StringVar(&journalPath, "journal", "", "record probes and session events to this journal file")

	return cmd
}

func runStream(ctx context.Context, fc *fileConfig, duration time.Duration) error {
	opts, err := fc.sessionOptions()
	if err != nil {
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

	cfg, err := galea.NewConfig(fc.Port, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := galea.NewSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer session.Release()

	if fc.CSVPath != "" {
		w, err := sink.NewCSVFile(fc.CSVPath)
		if err != nil {
			return err
		}
		defer w.Close()
		session.AttachStreamer("csv", w)
	}

	if fc.MQTTURL != "" {
		pub, err := sink.NewMQTTPublisher(fc.MQTTURL, fc.MQTTTopic)
		if err != nil {
			return err
		}
		defer pub.Close()
		session.AttachStreamer("mqtt", pub)
	}

	if err := session.Prepare(); err != nil {
		return err
	}

	if err := session.Start(); err != nil {
		recordEvent(jnl, "error", err.Error())
		return err
	}
	recordEvent(jnl, "start", "streaming started")

	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	<-ctx.Done()
	logger.Info("stopping acquisition")

	if err := session.Stop(); err != nil {
		recordEvent(jnl, "error", err.Error())
		return err
	}
	recordEvent(jnl, "stop", "streaming stopped")

	if rb := session.Buffer(); rb != nil {
		fmt.Printf("acquired %d rows (%d buffered)\n", rb.Total(), rb.Count())
	}

	return nil
}

func recordEvent(jnl *journal.Journal, kind, message string) {
	if jnl == nil {
		return
	}
	if err := jnl.RecordEvent(kind, message); err != nil {
		logger.Warn("journal write failed", "error", err)
	}
}
