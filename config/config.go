/*
NAME
  config.go

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package config contains the configuration settings for a satori tracking
// session.
package config

import (
	"time"

	"github.com/ausocean/utils/logging"
)

// Enums to define inputs.
const (
	// Indicates no option has been set.
	NothingDefined = iota

	InputFiles      // Ordered still images, processed as a batch.
	InputFile       // An MJPEG file or a file of concatenated JPEGs.
	InputV4L        // A webcam, read through ffmpeg as MJPEG.
	InputCapture    // A camera opened through OpenCV (withcv builds only).
	InputDir        // A directory watched for new still images.
	InputRaspistill // Raspberry Pi camera timelapse through raspistill.
)

// Config provides the parameters of a tracking session. A Config must be
// passed to the track, session and device constructors; unset fields are
// defaulted by Validate.
type Config struct {
	// AutoReset makes the tracker select a target by itself, i.e. the first
	// update that produces a motion segment of at least MotionMinArea pixels
	// while tracking is inactive triggers a reset.
	AutoReset bool

	// BottomLeftOrigin indicates that frames have a bottom left origin. Go
	// images are top left origin, in which case the reported track box angle
	// is negated to keep orientation consistent across origin conventions.
	BottomLeftOrigin bool

	CamShiftEpsilon    float64 // Convergence bound for the mean shift iterations (pixels).
	CamShiftIterations uint    // Maximum number of mean shift iterations per frame.

	// DiffThreshold is the intensity change that a pixel must exceed between
	// frames to be considered moving.
	DiffThreshold uint

	// FileFPS defines the rate at which frames from offline sources are
	// assumed to have been captured. It sets the timestamp step of the motion
	// history for offline input. A value of 0 makes the tracker use the wall
	// clock.
	FileFPS uint

	FrameRate uint // Frame rate requested from capture devices.

	Height uint // Height is the expected frame height of a capture device.

	HistBins uint // Number of hue histogram bins.

	// Input defines the frame source.
	//
	// Valid values are defined by enums:
	// InputFiles:
	//		Still images given on the command line.
	// InputFile:
	//		MJPEG data read from InputPath.
	// InputV4L:
	//		Webcam at InputPath (default /dev/video0) piped through ffmpeg.
	// InputCapture:
	//		OpenCV camera with index or URL InputPath.
	// InputDir:
	//		Directory InputPath watched for new images.
	// InputRaspistill:
	//		Raspberry Pi camera capturing a timelapse.
	Input uint8

	// InputPath defines the location of the input; its meaning depends on Input.
	InputPath string

	// Logger holds an implementation of the Logger interface. This must be
	// set for satori to work correctly.
	Logger logging.Logger

	// LogLevel is the logging verbosity level.
	// Valid values are defined by enums from the logger package: logging.Debug,
	// logging.Info, logging.Warning logging.Error, logging.Fatal.
	LogLevel int8

	Loop bool // If true will restart reading of input after an io.EOF.

	MaxPoints uint // Maximum number of feature points followed by the flow tracker.

	// Motion history time constants, in seconds.
	MHIDuration  float64 // Retention of the motion history.
	MaxTimeDelta float64 // Maximum age of motion included in a segment.
	MinTimeDelta float64 // Declared lower bound on segment motion age; not used to gate segmentation.

	MotionMinArea uint // Minimum segment area that triggers an automatic reset.

	// OutputPath defines the directory annotated frames are written to.
	OutputPath string

	Rotation uint // Camera rotation in degrees, used by raspistill.

	SMin uint // Minimum saturation of a pixel with usable hue.

	TimelapseDuration time.Duration // Total duration of a raspistill timelapse.
	TimelapseInterval time.Duration // Interval between raspistill captures.

	// Verbose enables per pair progress reporting by the batch driver.
	Verbose bool

	VMax uint // Maximum value (brightness) of a pixel with usable hue.
	VMin uint // Minimum value (brightness) of a pixel with usable hue.

	Width uint // Width is the expected frame width of a capture device.

	WindowSize uint // Neighbourhood size used by the flow tracker for corner detection.
}

// Validate checks for any errors in the config fields and defaults settings
// if particular parameters have not been defined.
func (c *Config) Validate() error {
	for _, v := range Variables {
		if v.Validate != nil {
			v.Validate(c)
		}
	}
	return nil
}

// Update takes a map of configuration variable names and their corresponding
// values, parses the string values and converting into correct type, and then
// sets the config struct fields as appropriate.
func (c *Config) Update(vars map[string]string) {
	for _, value := range Variables {
		if v, ok := vars[value.Name]; ok && value.Update != nil {
			value.Update(c, v)
		}
	}
}

func (c *Config) LogInvalidField(name string, def interface{}) {
	c.Logger.Info(name+" bad or unset, defaulting", name, def)
}
