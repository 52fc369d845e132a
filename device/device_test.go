/*
DESCRIPTION
  device_test.go provides testing for ManualInput and MultiError.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package device

import (
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestManualInput(t *testing.T) {
	m := NewManualInput()

	_, err := m.Write([]byte{1})
	if err == nil {
		t.Error("expected error writing to unstarted input")
	}

	err = m.Start()
	if err != nil {
		t.Fatalf("could not start input: %v", err)
	}
	if !m.IsRunning() {
		t.Error("input isn't running, when it should be")
	}

	want := []byte{0xff, 0xd8, 0xff, 0xd9}
	go func() {
		m.Write(want)
		m.Close()
	}()

	got, err := io.ReadAll(m)
	if err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}
	if !cmp.Equal(got, want) {
		t.Errorf("unexpected data, got: %v, want: %v", got, want)
	}

	err = m.Stop()
	if err != nil {
		t.Errorf("could not stop input: %v", err)
	}
	if m.IsRunning() {
		t.Error("input is running, when it should not be")
	}
}

func TestMultiError(t *testing.T) {
	me := MultiError{errors.New("a"), errors.New("b")}
	if got, want := me.Error(), "[a b]"; got != want {
		t.Errorf("unexpected error string, got: %q, want: %q", got, want)
	}
}
