package node

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/itohio/sensornode/pkg/network"
	"github.com/itohio/sensornode/pkg/reading"
	"github.com/itohio/sensornode/pkg/report"
)

// logBuffer is a goroutine-safe log sink.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *logBuffer) Count(msg string) int {
	return strings.Count(b.String(), msg)
}

func newTestLogger() (*slog.Logger, *logBuffer) {
	buf := &logBuffer{}
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

// fakeClimate returns queued pairs, then repeats the last one.
type fakeClimate struct {
	mu     sync.Mutex
	queue  []reading.Climate
	last   reading.Climate
	reads  int
	motion bool
}

func (f *fakeClimate) push(c ...reading.Climate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, c...)
}

func (f *fakeClimate) ReadClimate() reading.Climate {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if len(f.queue) > 0 {
		f.last = f.queue[0]
		f.queue = f.queue[1:]
	}
	return f.last
}

func (f *fakeClimate) MotionDetected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.motion
}

func (f *fakeClimate) Reads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

type fakeLink struct {
	mu       sync.Mutex
	status   network.Status
	ssid     string
	password string
	begins   int
	beginErr error
}

func (l *fakeLink) Begin(ssid, password string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.begins++
	if l.beginErr != nil {
		return l.beginErr
	}
	l.ssid, l.password = ssid, password
	return nil
}

func (l *fakeLink) Status() network.Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

func (l *fakeLink) set(s network.Status) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.status = s
}

type fakeSubmitter struct {
	mu       sync.Mutex
	payloads []string
	resp     report.Response
	err      error
	closed   bool
}

func (s *fakeSubmitter) Submit(ctx context.Context, payload []byte) (report.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads = append(s.payloads, string(payload))
	return s.resp, s.err
}

func (s *fakeSubmitter) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSubmitter) Payloads() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.payloads...)
}

// fakeSpawner records specs without running anything.
type fakeSpawner struct {
	mu    sync.Mutex
	specs []TaskSpec
}

func (s *fakeSpawner) Spawn(ctx context.Context, spec TaskSpec, run func(context.Context)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.specs = append(s.specs, spec)
	return nil
}

func (s *fakeSpawner) Wait() {}

func (s *fakeSpawner) Specs() []TaskSpec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]TaskSpec(nil), s.specs...)
}

// recordingOutput remembers every level set.
type recordingOutput struct {
	mu     sync.Mutex
	levels []bool
	err    error
}

func (o *recordingOutput) Set(on bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.levels = append(o.levels, on)
	return o.err
}

func (o *recordingOutput) Levels() []bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]bool(nil), o.levels...)
}
