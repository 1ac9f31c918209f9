// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tube

import (
	"os"
	"os/exec"
)

// SpawnProcess starts a process with stdin, stdout and stderr bound to
// the transport's file descriptor. The transport must provide the Fileno
// capability; ErrNotImplemented otherwise.
func (t *Tube) SpawnProcess(name string, args ...string) (*exec.Cmd, error) {
	ft, ok := t.tr.(FileTransport)
	if !ok {
		return nil, ErrNotImplemented
	}
	fd, err := ft.Fileno()
	if err != nil {
		return nil, err
	}

	f := os.NewFile(uintptr(fd), "tube")
	cmd := exec.Command(name, args...)
	cmd.Stdin = f
	cmd.Stdout = f
	cmd.Stderr = f
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return cmd, nil
}
