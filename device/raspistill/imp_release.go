//go:build !test
// +build !test

/*
DESCRIPTION
  imp_release.go provides the camera that runs the raspistill binary.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package raspistill

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/ausocean/utils/logging"
)

// camera runs raspistill, writing images to its stdout.
type camera struct {
	log logging.Logger

	mu     sync.Mutex
	cmd    *exec.Cmd
	out    io.ReadCloser
	stderr sync.WaitGroup
}

func (c *camera) start(r *Raspistill) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cmd != nil {
		return errors.New("raspistill already started")
	}

	cmd := exec.Command("raspistill", r.args()...)
	out, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("could not pipe raspistill stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("could not pipe raspistill stderr: %w", err)
	}
	err = cmd.Start()
	if err != nil {
		return fmt.Errorf("could not start raspistill: %w", err)
	}

	c.stderr.Add(1)
	go func() {
		defer c.stderr.Done()
		sc := bufio.NewScanner(stderr)
		for sc.Scan() {
			c.log.Warning(pkg+"raspistill", "stderr", sc.Text())
		}
	}()

	c.cmd, c.out = cmd, out
	return nil
}

func (c *camera) stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cmd == nil {
		return nil
	}
	cmd := c.cmd
	c.cmd, c.out = nil, nil

	err := cmd.Process.Kill()
	if err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("could not kill raspistill: %w", err)
	}
	c.stderr.Wait()
	err = cmd.Wait()
	var exit *exec.ExitError
	if err != nil && !errors.As(err, &exit) {
		return fmt.Errorf("could not wait for raspistill: %w", err)
	}
	c.log.Info(pkg + "raspistill stopped")
	return nil
}

func (c *camera) read(p []byte) (int, error) {
	c.mu.Lock()
	out := c.out
	c.mu.Unlock()
	if out == nil {
		return 0, errNotStarted
	}
	return out.Read(p)
}

func (c *camera) running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cmd != nil
}
