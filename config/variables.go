/*
DESCRIPTION
  variables.go contains a list of structs that provide a variable Name, type in
  a string format, a function for updating the variable in the Config struct
  from a string, and finally, a validation function to check the validity of the
  corresponding field value in the Config.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ausocean/utils/logging"
)

// Config map Keys.
const (
	KeyAutoReset          = "AutoReset"
	KeyBottomLeftOrigin   = "BottomLeftOrigin"
	KeyCamShiftEpsilon    = "CamShiftEpsilon"
	KeyCamShiftIterations = "CamShiftIterations"
	KeyDiffThreshold      = "DiffThreshold"
	KeyFileFPS            = "FileFPS"
	KeyFrameRate          = "FrameRate"
	KeyHeight             = "Height"
	KeyHistBins           = "HistBins"
	KeyInput              = "Input"
	KeyInputPath          = "InputPath"
	KeyLogging            = "logging"
	KeyLoop               = "Loop"
	KeyMaxPoints          = "MaxPoints"
	KeyMaxTimeDelta       = "MaxTimeDelta"
	KeyMHIDuration        = "MHIDuration"
	KeyMinTimeDelta       = "MinTimeDelta"
	KeyMotionMinArea      = "MotionMinArea"
	KeyOutputPath         = "OutputPath"
	KeyRotation           = "Rotation"
	KeySMin               = "SMin"
	KeyTimelapseDuration  = "TimelapseDuration"
	KeyTimelapseInterval  = "TimelapseInterval"
	KeyVerbose            = "Verbose"
	KeyVMax               = "VMax"
	KeyVMin               = "VMin"
	KeyWidth              = "Width"
	KeyWindowSize         = "WindowSize"
)

// Config map parameter types.
const (
	typeString = "string"
	typeUint   = "uint"
	typeBool   = "bool"
	typeFloat  = "float"
)

// Default variable values.
const (
	defaultInput     = InputFiles
	defaultVerbosity = logging.Error
	defaultFrameRate = 25
	defaultWidth     = 640
	defaultHeight    = 480

	// Motion segmentation defaults.
	defaultDiffThreshold = 30
	defaultMHIDuration   = 1.0
	defaultMaxTimeDelta  = 0.5
	defaultMinTimeDelta  = 0.05
	defaultMotionMinArea = 25

	// CAMShift defaults.
	defaultHistBins           = 16
	defaultVMin               = 10
	defaultVMax               = 256
	defaultSMin               = 30
	defaultCamShiftIterations = 10
	defaultCamShiftEpsilon    = 1.0

	// Flow defaults.
	defaultMaxPoints  = 500
	defaultWindowSize = 5
)

// Upper bounds for hue/saturation/value gates. OpenCV 8 bit HSV stores
// saturation and value in 0..255, the exclusive bound 256 accepts all.
const maxGate = 256

// Variables describes the variables that can be used for satori control.
// These structs provide the name and type of variable, a function for updating
// this variable in a Config, and a function for validating the value of the variable.
var Variables = []struct {
	Name     string
	Type     string
	Update   func(*Config, string)
	Validate func(*Config)
}{
	{
		Name:   KeyAutoReset,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.AutoReset = parseBool(KeyAutoReset, v, c) },
	},
	{
		Name:   KeyBottomLeftOrigin,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.BottomLeftOrigin = parseBool(KeyBottomLeftOrigin, v, c) },
	},
	{
		Name:   KeyCamShiftEpsilon,
		Type:   typeFloat,
		Update: func(c *Config, v string) { c.CamShiftEpsilon = parseFloat(KeyCamShiftEpsilon, v, c) },
		Validate: func(c *Config) {
			if c.CamShiftEpsilon <= 0 {
				c.LogInvalidField(KeyCamShiftEpsilon, defaultCamShiftEpsilon)
				c.CamShiftEpsilon = defaultCamShiftEpsilon
			}
		},
	},
	{
		Name:   KeyCamShiftIterations,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.CamShiftIterations = parseUint(KeyCamShiftIterations, v, c) },
		Validate: func(c *Config) {
			c.CamShiftIterations = lessThanOrEqual(KeyCamShiftIterations, c.CamShiftIterations, 0, c, defaultCamShiftIterations)
		},
	},
	{
		Name:   KeyDiffThreshold,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.DiffThreshold = parseUint(KeyDiffThreshold, v, c) },
		Validate: func(c *Config) {
			if c.DiffThreshold == 0 || c.DiffThreshold > 255 {
				c.LogInvalidField(KeyDiffThreshold, defaultDiffThreshold)
				c.DiffThreshold = defaultDiffThreshold
			}
		},
	},
	{
		Name:   KeyFileFPS,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.FileFPS = parseUint(KeyFileFPS, v, c) },
	},
	{
		Name:   KeyFrameRate,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.FrameRate = parseUint(KeyFrameRate, v, c) },
		Validate: func(c *Config) {
			c.FrameRate = lessThanOrEqual(KeyFrameRate, c.FrameRate, 0, c, defaultFrameRate)
		},
	},
	{
		Name:   KeyHeight,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.Height = parseUint(KeyHeight, v, c) },
		Validate: func(c *Config) {
			c.Height = lessThanOrEqual(KeyHeight, c.Height, 0, c, defaultHeight)
		},
	},
	{
		Name:   KeyHistBins,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.HistBins = parseUint(KeyHistBins, v, c) },
		Validate: func(c *Config) {
			if c.HistBins == 0 || c.HistBins > 180 {
				c.LogInvalidField(KeyHistBins, defaultHistBins)
				c.HistBins = defaultHistBins
			}
		},
	},
	{
		Name: KeyInput,
		Type: "enum:files,file,v4l,capture,dir",
		Update: func(c *Config, v string) {
			c.Input = parseEnum(
				KeyInput,
				v,
				map[string]uint8{
					"files":      InputFiles,
					"file":       InputFile,
					"v4l":        InputV4L,
					"capture":    InputCapture,
					"dir":        InputDir,
					"raspistill": InputRaspistill,
				},
				c,
			)
		},
		Validate: func(c *Config) {
			switch c.Input {
			case InputFiles, InputFile, InputV4L, InputCapture, InputDir, InputRaspistill:
			default:
				c.LogInvalidField(KeyInput, defaultInput)
				c.Input = defaultInput
			}
		},
	},
	{
		Name:   KeyInputPath,
		Type:   typeString,
		Update: func(c *Config, v string) { c.InputPath = v },
	},
	{
		Name: KeyLogging,
		Type: "enum:Debug,Info,Warning,Error,Fatal",
		Update: func(c *Config, v string) {
			switch v {
			case "Debug":
				c.LogLevel = logging.Debug
			case "Info":
				c.LogLevel = logging.Info
			case "Warning":
				c.LogLevel = logging.Warning
			case "Error":
				c.LogLevel = logging.Error
			case "Fatal":
				c.LogLevel = logging.Fatal
			default:
				c.Logger.Warning("invalid Logging param", "value", v)
			}
		},
		Validate: func(c *Config) {
			switch c.LogLevel {
			case logging.Debug, logging.Info, logging.Warning, logging.Error, logging.Fatal:
			default:
				c.LogInvalidField("LogLevel", defaultVerbosity)
				c.LogLevel = defaultVerbosity
			}
		},
	},
	{
		Name:   KeyLoop,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.Loop = parseBool(KeyLoop, v, c) },
	},
	{
		Name:   KeyMaxPoints,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.MaxPoints = parseUint(KeyMaxPoints, v, c) },
		Validate: func(c *Config) {
			c.MaxPoints = lessThanOrEqual(KeyMaxPoints, c.MaxPoints, 0, c, defaultMaxPoints)
		},
	},
	{
		Name:   KeyMaxTimeDelta,
		Type:   typeFloat,
		Update: func(c *Config, v string) { c.MaxTimeDelta = parseFloat(KeyMaxTimeDelta, v, c) },
		Validate: func(c *Config) {
			if c.MaxTimeDelta <= 0 {
				c.LogInvalidField(KeyMaxTimeDelta, defaultMaxTimeDelta)
				c.MaxTimeDelta = defaultMaxTimeDelta
			}
		},
	},
	{
		Name:   KeyMHIDuration,
		Type:   typeFloat,
		Update: func(c *Config, v string) { c.MHIDuration = parseFloat(KeyMHIDuration, v, c) },
		Validate: func(c *Config) {
			if c.MHIDuration <= 0 {
				c.LogInvalidField(KeyMHIDuration, defaultMHIDuration)
				c.MHIDuration = defaultMHIDuration
			}
		},
	},
	{
		Name:   KeyMinTimeDelta,
		Type:   typeFloat,
		Update: func(c *Config, v string) { c.MinTimeDelta = parseFloat(KeyMinTimeDelta, v, c) },
		Validate: func(c *Config) {
			if c.MinTimeDelta <= 0 {
				c.LogInvalidField(KeyMinTimeDelta, defaultMinTimeDelta)
				c.MinTimeDelta = defaultMinTimeDelta
			}
		},
	},
	{
		Name:   KeyMotionMinArea,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.MotionMinArea = parseUint(KeyMotionMinArea, v, c) },
		Validate: func(c *Config) {
			c.MotionMinArea = lessThanOrEqual(KeyMotionMinArea, c.MotionMinArea, 0, c, defaultMotionMinArea)
		},
	},
	{
		Name:   KeyOutputPath,
		Type:   typeString,
		Update: func(c *Config, v string) { c.OutputPath = v },
	},
	{
		Name:   KeyRotation,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.Rotation = parseUint(KeyRotation, v, c) },
	},
	{
		Name:   KeySMin,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.SMin = parseUint(KeySMin, v, c) },
		Validate: func(c *Config) {
			if c.SMin == 0 || c.SMin > maxGate {
				c.LogInvalidField(KeySMin, defaultSMin)
				c.SMin = defaultSMin
			}
		},
	},
	{
		Name:   KeyTimelapseDuration,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.TimelapseDuration = parseSeconds(KeyTimelapseDuration, v, c) },
	},
	{
		Name:   KeyTimelapseInterval,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.TimelapseInterval = parseSeconds(KeyTimelapseInterval, v, c) },
	},
	{
		Name:   KeyVerbose,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.Verbose = parseBool(KeyVerbose, v, c) },
	},
	{
		Name:   KeyVMax,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.VMax = parseUint(KeyVMax, v, c) },
		Validate: func(c *Config) {
			if c.VMax == 0 || c.VMax > maxGate {
				c.LogInvalidField(KeyVMax, defaultVMax)
				c.VMax = defaultVMax
			}
		},
	},
	{
		Name:   KeyVMin,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.VMin = parseUint(KeyVMin, v, c) },
		Validate: func(c *Config) {
			if c.VMin == 0 || c.VMin > maxGate {
				c.LogInvalidField(KeyVMin, defaultVMin)
				c.VMin = defaultVMin
			}
		},
	},
	{
		Name:   KeyWidth,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.Width = parseUint(KeyWidth, v, c) },
		Validate: func(c *Config) {
			c.Width = lessThanOrEqual(KeyWidth, c.Width, 0, c, defaultWidth)
		},
	},
	{
		Name:   KeyWindowSize,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.WindowSize = parseUint(KeyWindowSize, v, c) },
		Validate: func(c *Config) {
			c.WindowSize = lessThanOrEqual(KeyWindowSize, c.WindowSize, 0, c, defaultWindowSize)
		},
	},
}

func parseUint(n, v string, c *Config) uint {
	_v, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		c.Logger.Warning(fmt.Sprintf("expected unsigned int for param %s", n), "value", v)
	}
	return uint(_v)
}

// parseSeconds parses a whole number of seconds.
func parseSeconds(n, v string, c *Config) time.Duration {
	return time.Duration(parseUint(n, v, c)) * time.Second
}

func parseFloat(n, v string, c *Config) float64 {
	_v, err := strconv.ParseFloat(v, 64)
	if err != nil {
		c.Logger.Warning(fmt.Sprintf("expected float for param %s", n), "value", v)
	}
	return _v
}

func parseBool(n, v string, c *Config) (b bool) {
	switch strings.ToLower(v) {
	case "true":
		b = true
	case "false":
		b = false
	default:
		c.Logger.Warning(fmt.Sprintf("expect bool for param %s", n), "value", v)
	}
	return
}

func parseEnum(n, v string, enums map[string]uint8, c *Config) uint8 {
	_v, ok := enums[strings.ToLower(v)]
	if !ok {
		c.Logger.Warning(fmt.Sprintf("invalid value for %s param", n), "value", v)
	}
	return _v
}

func lessThanOrEqual(n string, v, cmp uint, c *Config, def uint) uint {
	if v <= cmp {
		c.LogInvalidField(n, def)
		return def
	}
	return v
}
