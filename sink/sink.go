// Package sink provides destinations for decoded sample rows.
//
// The acquisition loop pushes every decoded row, in arrival order, to the
// session's primary Sink and to any attached streamers. RingBuffer is the
// default primary sink; CSVWriter and MQTTPublisher are streamers that
// mirror rows to a file or an MQTT broker.
package sink

// Sink receives decoded sample rows in strict arrival order.
//
// Ownership of the row slice transfers to the Sink; the caller never
// mutates a row after pushing it.
type Sink interface {
	PushRow(row []float64) error
}
