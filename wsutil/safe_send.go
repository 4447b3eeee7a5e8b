package wsutil

import "log/slog"

// SafeSend delivers data to a client channel without ever blocking the
// caller. Sends to a nil, full or closed channel are dropped; the panic
// from a closed channel is recovered and logged.
func SafeSend(ch chan []byte, data []byte) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("send on closed channel", "tag", "wsutil", "recovered", r)
		}
	}()
	select {
	case ch <- data:
	default:
	}
}
