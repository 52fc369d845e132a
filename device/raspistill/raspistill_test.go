/*
DESCRIPTION
  raspistill_test.go provides testing for raspistill configuration.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package raspistill

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ausocean/satori/config"
	"github.com/ausocean/satori/device"
	"github.com/ausocean/utils/logging"
)

var _ device.Source = (*Raspistill)(nil)

func TestSet(t *testing.T) {
	tests := []struct {
		cfg     config.Config
		wantErr int
	}{
		{
			cfg:     config.Config{},
			wantErr: 4,
		},
		{
			cfg: config.Config{
				Width:             640,
				Height:            480,
				Rotation:          90,
				TimelapseDuration: time.Hour,
				TimelapseInterval: time.Minute,
			},
		},
		{
			cfg: config.Config{
				Width:             640,
				Height:            480,
				Rotation:          360,
				TimelapseDuration: 48 * time.Hour,
				TimelapseInterval: time.Millisecond,
			},
			wantErr: 3,
		},
	}

	for i, test := range tests {
		r := New(logging.New(logging.Debug, &bytes.Buffer{}, true))
		err := r.Set(test.cfg)
		var me device.MultiError
		switch {
		case test.wantErr == 0 && err != nil:
			t.Errorf("test %d: unexpected error: %v", i, err)
		case test.wantErr != 0 && !errors.As(err, &me):
			t.Errorf("test %d: expected MultiError, got: %v", i, err)
		case test.wantErr != 0 && len(me) != test.wantErr:
			t.Errorf("test %d: unexpected error count, got: %d, want: %d", i, len(me), test.wantErr)
		}
	}
}

func TestArgs(t *testing.T) {
	r := New(logging.New(logging.Debug, &bytes.Buffer{}, true))
	err := r.Set(config.Config{
		Width:             320,
		Height:            240,
		Rotation:          180,
		TimelapseDuration: time.Minute,
		TimelapseInterval: 2 * time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error from Set: %v", err)
	}

	want := []string{
		"--output", "-",
		"--nopreview",
		"--encoding", "jpg",
		"--width", "320",
		"--height", "240",
		"--rotation", "180",
		"--timeout", "60000",
		"--timelapse", "2000",
		"--quality", "75",
	}
	if got := r.args(); !cmp.Equal(got, want) {
		t.Errorf("unexpected args, got: %v, want: %v", got, want)
	}
}
