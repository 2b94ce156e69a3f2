package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "galea.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadFileConfig(t *testing.T) {
	path := writeConfigFile(t, `
port: /dev/ttyUSB0
baudRate: 921600
timeout: 5s
syncWait: 2s
bufferSize: 9000
csvPath: out.csv
mqttUrl: mqtt://broker:1883
mqttTopic: lab/galea
journalPath: galea.journal
`)

	fc, err := loadFileConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyUSB0", fc.Port)
	assert.Equal(t, 921600, fc.BaudRate)
	assert.Equal(t, "5s", fc.Timeout)
	assert.Equal(t, "2s", fc.SyncWait)
	assert.Equal(t, 9000, fc.BufferSize)
	assert.Equal(t, "out.csv", fc.CSVPath)
	assert.Equal(t, "mqtt://broker:1883", fc.MQTTURL)
	assert.Equal(t, "lab/galea", fc.MQTTTopic)
	assert.Equal(t, "galea.journal", fc.JournalPath)
}

func TestLoadFileConfig_Empty(t *testing.T) {
	fc, err := loadFileConfig("")
	require.NoError(t, err)
	assert.Equal(t, &fileConfig{}, fc)
}

func TestLoadFileConfig_UnknownField(t *testing.T) {
	path := writeConfigFile(t, "bogus: true\n")

	_, err := loadFileConfig(path)
	assert.Error(t, err)
}

func TestFileConfig_Resolve(t *testing.T) {
	fc := &fileConfig{Port: "/dev/ttyUSB0"}
	fc.resolve(&rootFlags{port: "/dev/ttyACM1"})

	assert.Equal(t, "/dev/ttyACM1", fc.Port, "command line flag wins")

	fc = &fileConfig{Port: "/dev/ttyUSB0"}
	fc.resolve(&rootFlags{})
	assert.Equal(t, "/dev/ttyUSB0", fc.Port)
}

func TestFileConfig_SessionOptions(t *testing.T) {
	fc := &fileConfig{Timeout: "5s", SyncWait: "2s", BaudRate: 115200, BufferSize: 100}

	opts, err := fc.sessionOptions()
	require.NoError(t, err)
	assert.Len(t, opts, 4)

	fc = &fileConfig{Timeout: "not-a-duration"}
	_, err = fc.sessionOptions()
	assert.Error(t, err)
}
