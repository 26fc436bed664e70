package xlog

import "testing"

func TestNewReturnsUsableLogger(t *testing.T) {
	log, err := New("test")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	log.Info("hello")
	log.Debug("debugging")
	log.Trace("tracing")
}

func TestDiscardNeverPanics(t *testing.T) {
	log := Discard()
	log.Info("hello", "key", "value")
	sub := log.New("sub")
	sub.Info("hello from sub")
}
