// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tube_test

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"code.hybscloud.com/tube"
)

func TestUploadManually_RawWhenCompressionDoesNotShrink(t *testing.T) {
	data := []byte("some\xca\xfedata\n")
	tr := repeats([]byte("$ "))
	tb := newTestTube(tr)
	defer tb.Close()

	err := tb.UploadManually(data, tube.WithCompression(tube.CompressionGzip))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	sent := string(tr.sentBytes())
	wantChunk := "echo " + base64.StdEncoding.EncodeToString(data) + " | base64 -d > ./payload\n"
	if !strings.Contains(sent, wantChunk) {
		t.Fatalf("chunk command missing:\nsent=%q\nwant substring=%q", sent, wantChunk)
	}
	// Tiny payloads do not shrink: the blob goes up raw, so no
	// decompression step runs.
	if strings.Contains(sent, "gzip -d") {
		t.Fatalf("unexpected decompression step:\nsent=%q", sent)
	}
	if !strings.Contains(sent, "chmod u+x ./payload\n") {
		t.Fatalf("chmod missing:\nsent=%q", sent)
	}
}

func TestUploadManually_AutoNegotiatesCompression(t *testing.T) {
	data := bytes.Repeat([]byte("A"), 2048)
	tr := newScriptTransport(
		scriptStep{b: []byte("$ ")},     // before the xz probe
		scriptStep{b: []byte("NOPE\n")}, // xz missing
		scriptStep{b: []byte("$ ")},     // before the gzip probe
		scriptStep{b: []byte("YEP\n")},  // gzip present
		scriptStep{b: []byte("$ ")},     // before the single chunk
		scriptStep{b: []byte("$ ")},     // before gzip -d
		scriptStep{b: []byte("$ ")},     // before chmod
	)
	tb := newTestTube(tr)
	defer tb.Close()

	err := tb.UploadManually(data)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	sent := string(tr.sentBytes())
	for _, want := range []string{
		"command -v xz && echo YEP || echo NOPE\n",
		"command -v gzip && echo YEP || echo NOPE\n",
		" | base64 -d > ./payload.gz\n",
		"gzip -d -f ./payload.gz\n",
		"chmod u+x ./payload\n",
	} {
		if !strings.Contains(sent, want) {
			t.Fatalf("command missing:\nsent=%q\nwant substring=%q", sent, want)
		}
	}
}

func TestUploadManually_ChunksLargePayloads(t *testing.T) {
	// Incompressible-looking payload still shrinks poorly; force no
	// compression and a small chunk size to see the append commands.
	data := bytes.Repeat([]byte("some\xca\xfedata"), 8) // 80 bytes
	tr := repeats([]byte("$ "))
	tb := newTestTube(tr)
	defer tb.Close()

	err := tb.UploadManually(data,
		tube.WithCompression(tube.CompressionNone),
		tube.WithChunkSize(0x20),
		tube.WithChmodFlags(""),
	)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	sent := string(tr.sentBytes())
	if got := strings.Count(sent, "| base64 -d > ./payload\n"); got != 1 {
		t.Fatalf("first-chunk commands=%d want=1\nsent=%q", got, sent)
	}
	if got := strings.Count(sent, "| base64 -d >> ./payload\n"); got != 2 {
		t.Fatalf("append-chunk commands=%d want=2\nsent=%q", got, sent)
	}
	if strings.Contains(sent, "chmod") {
		t.Fatalf("chmod must be skipped with empty flags:\nsent=%q", sent)
	}

	// The chunks reassemble to the original payload.
	var blob []byte
	for _, line := range strings.Split(sent, "\n") {
		if !strings.HasPrefix(line, "echo ") {
			continue
		}
		enc := strings.SplitN(strings.TrimPrefix(line, "echo "), " ", 2)[0]
		chunk, err := base64.StdEncoding.DecodeString(enc)
		if err != nil {
			t.Fatalf("bad base64 in %q: %v", line, err)
		}
		blob = append(blob, chunk...)
	}
	if !bytes.Equal(blob, data) {
		t.Fatalf("reassembled blob mismatch: %d bytes want %d", len(blob), len(data))
	}
}

func TestUploadManually_MarkerMode(t *testing.T) {
	data := []byte("blob")
	tr := repeats([]byte("PWNTOOLS_DONE\n"))
	tb := newTestTube(tr)
	defer tb.Close()

	err := tb.UploadManually(data,
		tube.WithPrompt(nil),
		tube.WithCompression(tube.CompressionNone),
	)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	sent := string(tr.sentBytes())
	if !strings.HasPrefix(sent, "echo PWNTOOLS_DONE\n") {
		t.Fatalf("marker mode must prime with an echo:\nsent=%q", sent)
	}
	if !strings.Contains(sent, "| base64 -d > ./payload; echo PWNTOOLS_DONE\n") {
		t.Fatalf("chunk command must append the marker echo:\nsent=%q", sent)
	}
	if !strings.Contains(sent, "chmod u+x ./payload; echo PWNTOOLS_DONE\n") {
		t.Fatalf("chmod must append the marker echo:\nsent=%q", sent)
	}
}

func TestUploadManually_CustomMarker(t *testing.T) {
	tr := repeats([]byte("DONE_42\n"))
	tb := newTestTube(tr)
	defer tb.Close()

	err := tb.UploadManually([]byte("x"),
		tube.WithPrompt(nil),
		tube.WithEndMarker("DONE_42"),
		tube.WithCompression(tube.CompressionNone),
		tube.WithChmodFlags(""),
	)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasPrefix(string(tr.sentBytes()), "echo DONE_42\n") {
		t.Fatalf("custom marker not primed:\nsent=%q", tr.sentBytes())
	}
}

func TestUploadManually_InvalidCompression(t *testing.T) {
	tb := newTestTube(repeats([]byte("$ ")))
	defer tb.Close()

	err := tb.UploadManually([]byte("x"), tube.WithCompression("brotli"))
	if !errors.Is(err, tube.ErrInvalidArgument) {
		t.Fatalf("invalid compression: err=%v want=ErrInvalidArgument", err)
	}
}

func TestUploadManually_MissingPromptFails(t *testing.T) {
	tr := newScriptTransport() // never produces the prompt
	tr.tail = tube.ErrWouldBlock
	tb := newTestTube(tr, tube.WithTimeout(tube.After(30*time.Millisecond)))
	defer tb.Close()

	err := tb.UploadManually([]byte("payload"), tube.WithCompression(tube.CompressionNone))
	if !errors.Is(err, tube.ErrUploadFailed) {
		t.Fatalf("missing prompt: err=%v want=ErrUploadFailed", err)
	}
}

func TestUploadManually_XzCompression(t *testing.T) {
	data := bytes.Repeat([]byte("B"), 4096)
	tr := repeats([]byte("$ "))
	tb := newTestTube(tr)
	defer tb.Close()

	err := tb.UploadManually(data, tube.WithCompression(tube.CompressionXz))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	sent := string(tr.sentBytes())
	if !strings.Contains(sent, "| base64 -d > ./payload.xz\n") {
		t.Fatalf("xz chunk command missing:\nsent=%q", sent)
	}
	if !strings.Contains(sent, "xz -d -f ./payload.xz\n") {
		t.Fatalf("xz decompression missing:\nsent=%q", sent)
	}
}
