/*
DESCRIPTION
  config_test.go provides testing for the Config struct methods (Validate and Update).

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package config

import (
	"testing"
	"time"

	"github.com/ausocean/utils/logging"
	"github.com/google/go-cmp/cmp"
)

type dumbLogger struct{}

func (dl *dumbLogger) Log(l int8, m string, a ...interface{})  {}
func (dl *dumbLogger) SetLevel(l int8)                         {}
func (dl *dumbLogger) Debug(msg string, args ...interface{})   {}
func (dl *dumbLogger) Info(msg string, args ...interface{})    {}
func (dl *dumbLogger) Warning(msg string, args ...interface{}) {}
func (dl *dumbLogger) Error(msg string, args ...interface{})   {}
func (dl *dumbLogger) Fatal(msg string, args ...interface{})   {}

func TestValidate(t *testing.T) {
	dl := &dumbLogger{}

	want := Config{
		Logger:             dl,
		Input:              defaultInput,
		CamShiftEpsilon:    defaultCamShiftEpsilon,
		CamShiftIterations: defaultCamShiftIterations,
		DiffThreshold:      defaultDiffThreshold,
		FrameRate:          defaultFrameRate,
		Height:             defaultHeight,
		HistBins:           defaultHistBins,
		MaxPoints:          defaultMaxPoints,
		MaxTimeDelta:       defaultMaxTimeDelta,
		MHIDuration:        defaultMHIDuration,
		MinTimeDelta:       defaultMinTimeDelta,
		MotionMinArea:      defaultMotionMinArea,
		SMin:               defaultSMin,
		VMax:               defaultVMax,
		VMin:               defaultVMin,
		Width:              defaultWidth,
		WindowSize:         defaultWindowSize,
	}

	got := Config{Logger: dl}
	err := (&got).Validate()
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	if !cmp.Equal(got, want) {
		t.Errorf("configs not equal\nwant: %v\ngot: %v", want, got)
	}
}

func TestValidateOutOfRange(t *testing.T) {
	dl := &dumbLogger{}

	got := Config{Logger: dl, DiffThreshold: 300, HistBins: 200, SMin: 999, VMax: 1000}
	err := (&got).Validate()
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	if got.DiffThreshold != defaultDiffThreshold {
		t.Errorf("unexpected DiffThreshold, got: %d, want: %d", got.DiffThreshold, defaultDiffThreshold)
	}
	if got.HistBins != defaultHistBins {
		t.Errorf("unexpected HistBins, got: %d, want: %d", got.HistBins, defaultHistBins)
	}
	if got.SMin != defaultSMin {
		t.Errorf("unexpected SMin, got: %d, want: %d", got.SMin, defaultSMin)
	}
	if got.VMax != defaultVMax {
		t.Errorf("unexpected VMax, got: %d, want: %d", got.VMax, defaultVMax)
	}
}

func TestUpdate(t *testing.T) {
	updateMap := map[string]string{
		"AutoReset":          "true",
		"BottomLeftOrigin":   "true",
		"CamShiftEpsilon":    "0.5",
		"CamShiftIterations": "20",
		"DiffThreshold":      "45",
		"FileFPS":            "30",
		"FrameRate":          "15",
		"Height":             "240",
		"HistBins":           "32",
		"Input":              "v4l",
		"InputPath":          "/dev/video1",
		"logging":            "Debug",
		"Loop":               "true",
		"MaxPoints":          "100",
		"MaxTimeDelta":       "0.25",
		"MHIDuration":        "2",
		"MinTimeDelta":       "0.1",
		"MotionMinArea":      "50",
		"OutputPath":         "/outputpath",
		"Rotation":           "180",
		"SMin":               "40",
		"TimelapseDuration":  "600",
		"TimelapseInterval":  "30",
		"Verbose":            "true",
		"VMax":               "200",
		"VMin":               "20",
		"Width":              "320",
		"WindowSize":         "7",
	}

	dl := &dumbLogger{}
	want := Config{
		Logger:             dl,
		AutoReset:          true,
		BottomLeftOrigin:   true,
		CamShiftEpsilon:    0.5,
		CamShiftIterations: 20,
		DiffThreshold:      45,
		FileFPS:            30,
		FrameRate:          15,
		Height:             240,
		HistBins:           32,
		Input:              InputV4L,
		InputPath:          "/dev/video1",
		LogLevel:           logging.Debug,
		Loop:               true,
		MaxPoints:          100,
		MaxTimeDelta:       0.25,
		MHIDuration:        2,
		MinTimeDelta:       0.1,
		MotionMinArea:      50,
		OutputPath:         "/outputpath",
		Rotation:           180,
		SMin:               40,
		TimelapseDuration:  10 * time.Minute,
		TimelapseInterval:  30 * time.Second,
		Verbose:            true,
		VMax:               200,
		VMin:               20,
		Width:              320,
		WindowSize:         7,
	}

	got := Config{Logger: dl}
	got.Update(updateMap)
	if !cmp.Equal(want, got) {
		t.Errorf("configs not equal\nwant: %v\ngot: %v", want, got)
	}
}
