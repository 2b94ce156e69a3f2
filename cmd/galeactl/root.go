package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/openbci/go-galea/galea"
	"github.com/openbci/go-galea/logger"
)

// fileConfig is the YAML configuration accepted by --config. Command line
// flags override file values.
type fileConfig struct {
	Port        string `json:"port,omitempty"`
	BaudRate    int    `json:"baudRate,omitempty"`
	Timeout     string `json:"timeout,omitempty"`
	SyncWait    string `json:"syncWait,omitempty"`
	BufferSize  int    `json:"bufferSize,omitempty"`
	CSVPath     string `json:"csvPath,omitempty"`
	MQTTURL     string `json:"mqttUrl,omitempty"`
	MQTTTopic   string `json:"mqttTopic,omitempty"`
	JournalPath string `json:"journalPath,omitempty"`
}

type rootFlags struct {
	configPath string
	port       string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "galeactl",
		Short:         "Control and stream a Galea serial biosignal board",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flags.verbose {
				logger.SetLevel(logger.DebugLevel)
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to a YAML configuration file")
	cmd.PersistentFlags().StringVarP(&flags.port, "port", "p", "", "serial port of the board, e.g. /dev/ttyUSB0")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newStreamCmd(flags))
	cmd.AddCommand(newProbeCmd(flags))
	cmd.AddCommand(newConfigCmd(flags))

	return cmd
}

// loadFileConfig reads and parses the YAML file at path. An empty path
// yields an empty config.
func loadFileConfig(path string) (*fileConfig, error) {
	fc := &fileConfig{}
	if path == "" {
		return fc, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.UnmarshalStrict(data, fc); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	return fc, nil
}

// resolve merges the file config with command line flags; flags win.
func (fc *fileConfig) resolve(flags *rootFlags) {
	if flags.port != "" {
		fc.Port = flags.port
	}
}

// sessionOptions converts the resolved config into session options.
func (fc *fileConfig) sessionOptions() ([]galea.Option, error) {
	var opts []galea.Option

	if fc.BaudRate > 0 {
		opts = append(opts, galea.WithBaudRate(fc.BaudRate))
	}
	if fc.BufferSize > 0 {
		opts = append(opts, galea.WithBufferSize(fc.BufferSize))
	}
	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse timeout: %w", err)
		}
		opts = append(opts, galea.WithTimeout(d))
	}
	if fc.SyncWait != "" {
		d, err := time.ParseDuration(fc.SyncWait)
		if err != nil {
			return nil, fmt.Errorf("parse sync wait: %w", err)
		}
		opts = append(opts, galea.WithSyncWait(d))
	}

	return opts, nil
}
