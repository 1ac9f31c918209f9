// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tube

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"github.com/ulikunitz/xz"
)

// Upload compression modes.
const (
	CompressionAuto = "auto"
	CompressionGzip = "gzip"
	CompressionXz   = "xz"
	CompressionNone = "none"
)

// UploadOptions configures UploadManually.
type UploadOptions struct {
	// TargetPath is the final file path on the remote system.
	TargetPath string

	// Prompt is the byte sequence signaling the remote shell is ready.
	// Empty selects marker mode: every command is suffixed with an echo
	// of EndMarker and completion is detected by that marker instead.
	Prompt []byte

	// ChunkSize is the pre-encoding size of each base64 chunk.
	ChunkSize int

	// ChmodFlags is the chmod argument applied to TargetPath after the
	// upload; empty skips the chmod.
	ChmodFlags string

	// Compression is one of auto, gzip, xz or none. auto probes the
	// remote for xz then gzip and falls back to an uncompressed upload.
	Compression string

	// EndMarker is the sentinel echoed after each command in marker mode.
	EndMarker string
}

var defaultUploadOptions = UploadOptions{
	TargetPath:  "./payload",
	Prompt:      []byte("$"),
	ChunkSize:   0x200,
	ChmodFlags:  "u+x",
	Compression: CompressionAuto,
	EndMarker:   "PWNTOOLS_DONE",
}

// UploadOption mutates UploadOptions.
type UploadOption func(*UploadOptions)

// WithTargetPath sets the remote file path.
func WithTargetPath(path string) UploadOption {
	return func(o *UploadOptions) { o.TargetPath = path }
}

// WithPrompt sets the shell-ready byte sequence; empty selects marker mode.
func WithPrompt(prompt []byte) UploadOption {
	return func(o *UploadOptions) { o.Prompt = append([]byte(nil), prompt...) }
}

// WithChunkSize sets the pre-encoding chunk size.
func WithChunkSize(n int) UploadOption {
	return func(o *UploadOptions) { o.ChunkSize = n }
}

// WithChmodFlags sets the chmod argument; empty skips the chmod.
func WithChmodFlags(flags string) UploadOption {
	return func(o *UploadOptions) { o.ChmodFlags = flags }
}

// WithCompression selects auto, gzip, xz or none.
func WithCompression(mode string) UploadOption {
	return func(o *UploadOptions) { o.Compression = mode }
}

// WithEndMarker sets the marker-mode sentinel.
func WithEndMarker(marker string) UploadOption {
	return func(o *UploadOptions) { o.EndMarker = marker }
}

// uploadCandidates is the probe order for auto compression.
var uploadCandidates = []string{CompressionXz, CompressionGzip}

// UploadManually streams data to a file on a remote system whose only
// interface is a shell on this tube, using echo, base64, optionally gzip
// or xz, and optionally chmod:
//
//	loop:
//	    echo <chunk> | base64 -d >> <target>.<ext>
//	<util> -d -f <target>.<ext>
//	chmod <flags> <target>
//
// A base64 command is assumed on the remote. A missing prompt or marker
// within the tube's current deadline reports ErrUploadFailed.
func (t *Tube) UploadManually(data []byte, opts ...UploadOption) error {
	o := defaultUploadOptions
	for _, fn := range opts {
		fn(&o)
	}
	if o.ChunkSize <= 0 {
		return ErrInvalidArgument
	}

	echoEnd := ""
	marker := o.Prompt
	if len(o.Prompt) == 0 {
		echoEnd = "; echo " + o.EndMarker
		marker = []byte(o.EndMarker)
		// Prime the stream so the first wait has a marker to find.
		if err := t.SendLineString("echo " + o.EndMarker); err != nil {
			return err
		}
	}

	run := func(step, cmd string) error {
		res, err := t.SendLineAfter(marker, []byte(cmd), Default)
		if err != nil {
			return errors.Wrap(err, step)
		}
		if len(res) == 0 {
			return errors.Wrap(ErrUploadFailed, step)
		}
		return nil
	}

	// Pick the compression utility.
	mode := CompressionNone
	switch o.Compression {
	case CompressionAuto:
		for _, utility := range uploadCandidates {
			cmd := fmt.Sprintf("command -v %s && echo YEP || echo NOPE%s", utility, echoEnd)
			if err := run("probing "+utility, cmd); err != nil {
				return err
			}
			res, err := t.RecvUntilAny([][]byte{[]byte("YEP"), []byte("NOPE")}, false, Default)
			if err != nil {
				return errors.Wrap(err, "probing "+utility)
			}
			if bytes.Contains(res, []byte("YEP")) {
				mode = utility
				break
			}
			if len(res) == 0 {
				return errors.Wrap(ErrUploadFailed, "probing "+utility)
			}
		}
	case CompressionGzip, CompressionXz:
		mode = o.Compression
	case CompressionNone, "":
		mode = CompressionNone
	default:
		return ErrInvalidArgument
	}
	t.log.Debugf("Manually uploading using compression mode: %s", mode)

	// Compress at maximum level; keep the raw blob when compression does
	// not actually shrink it.
	payload := data
	uploadPath := o.TargetPath
	switch mode {
	case CompressionXz:
		compressed, err := xzCompress(data)
		if err != nil {
			return errors.Wrap(err, "xz compression")
		}
		if len(compressed) < len(data) {
			payload = compressed
			uploadPath = o.TargetPath + ".xz"
		} else {
			mode = CompressionNone
		}
	case CompressionGzip:
		compressed, err := gzipCompress(data)
		if err != nil {
			return errors.Wrap(err, "gzip compression")
		}
		if len(compressed) < len(data) {
			payload = compressed
			uploadPath = o.TargetPath + ".gz"
		} else {
			mode = CompressionNone
		}
	}

	// Ship the payload in base64 chunks, appending after the first.
	total := (len(payload) + o.ChunkSize - 1) / o.ChunkSize
	t.log.Infof("Uploading payload: %d bytes in %d chunks", len(payload), total)
	for idx := 0; idx*o.ChunkSize < len(payload); idx++ {
		chunk := payload[idx*o.ChunkSize:]
		if len(chunk) > o.ChunkSize {
			chunk = chunk[:o.ChunkSize]
		}
		redir := ">>"
		if idx == 0 {
			redir = ">"
		}
		cmd := fmt.Sprintf("echo %s | base64 -d %s %s%s",
			base64.StdEncoding.EncodeToString(chunk), redir, uploadPath, echoEnd)
		if err := run(fmt.Sprintf("uploading chunk %d/%d", idx+1, total), cmd); err != nil {
			return err
		}
		if t.debugEnabled() {
			t.log.Debugf("Uploading payload: chunk %d/%d", idx+1, total)
		}
	}

	// Decompress in place and fix permissions.
	if mode != CompressionNone {
		cmd := fmt.Sprintf("%s -d -f %s%s", mode, uploadPath, echoEnd)
		if err := run("decompressing", cmd); err != nil {
			return err
		}
	}
	if o.ChmodFlags != "" {
		cmd := fmt.Sprintf("chmod %s %s%s", o.ChmodFlags, o.TargetPath, echoEnd)
		if err := run("chmod", cmd); err != nil {
			return err
		}
	}
	// Marker mode leaves one trailing marker line to consume.
	if len(o.Prompt) == 0 {
		trailing := append(append([]byte(nil), marker...), t.Newline()...)
		res, err := t.RecvUntil(trailing, false, Default)
		if err != nil {
			return errors.Wrap(err, "trailing marker")
		}
		if len(res) == 0 {
			return errors.Wrap(ErrUploadFailed, "trailing marker")
		}
	}
	t.log.Info("Uploading payload: done")
	return nil
}

func gzipCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func xzCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
