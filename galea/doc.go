// Package galea acquires multi-channel biosignal data from an OpenBCI
// Galea board over a serial transport.
//
// A Session owns the transport and drives the board through its lifecycle:
//
//	cfg, _ := galea.NewConfig("/dev/ttyUSB0")
//	sess, _ := galea.NewSession(ctx, cfg)
//	_ = sess.Prepare()
//	_ = sess.Start()
//	// read decoded rows from sess.Buffer()
//	_ = sess.Stop()
//	_ = sess.Release()
//
// While streaming, a dedicated acquisition goroutine reads sentinel-framed
// transactions from the transport, validates them, aligns the device clock
// to the host clock, and decodes each frame into timestamped sample rows
// pushed to the session's sink in arrival order.
//
// The frame geometry (FrameLayout) and the row layout (ChannelMap) are
// declarative tables, so device variants that share the dense/compact
// package shape can supply their own without touching the decode loop.
package galea
