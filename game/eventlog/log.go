package eventlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// queueSize bounds the write-behind buffer. Entries past a stalled disk
// are dropped, never allowed to block the dispatcher.
const queueSize = 1024

// Entry is one committed room event, one JSON line in the log file.
type Entry struct {
	ID   string      `json:"id"`
	Time time.Time   `json:"time"`
	Room string      `json:"room"`
	Kind string      `json:"kind"`
	Data interface{} `json:"data,omitempty"`
}

// Logger appends room events to a JSONL file from a background writer.
// It implements service.EventSink.
type Logger struct {
	log zerolog.Logger

	queue chan Entry
	done  chan struct{}

	mu      sync.Mutex
	file    *os.File
	w       *bufio.Writer
	closed  bool
	dropped uint64
}

// NewLogger opens (or creates) the log file at path and starts the writer
func NewLogger(path string, log zerolog.Logger) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create event log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}

	l := &Logger{
		log:   log,
		queue: make(chan Entry, queueSize),
		done:  make(chan struct{}),
		file:  f,
		w:     bufio.NewWriter(f),
	}
	go l.run()
	return l, nil
}

// Record enqueues one event. It never blocks; when the queue is full the
// event is dropped and counted.
func (l *Logger) Record(roomCode, kind string, data interface{}) {
	e := Entry{
		ID:   uuid.NewString(),
		Time: time.Now().UTC(),
		Room: roomCode,
		Kind: kind,
		Data: data,
	}

	// The enqueue never blocks, so the lock only serializes against Close
	// tearing the queue down.
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	select {
	case l.queue <- e:
	default:
		l.dropped++
		if l.dropped%100 == 1 {
			l.log.Warn().Uint64("dropped", l.dropped).Msg("event log queue full")
		}
	}
}

// Dropped reports how many events were discarded on a full queue
func (l *Logger) Dropped() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropped
}

// Close drains the queue, flushes, and closes the file
func (l *Logger) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.queue)
	l.mu.Unlock()

	<-l.done

	if err := l.w.Flush(); err != nil {
		l.file.Close()
		return err
	}
	return l.file.Close()
}

func (l *Logger) run() {
	defer close(l.done)

	flush := time.NewTicker(time.Second)
	defer flush.Stop()

	for {
		select {
		case e, ok := <-l.queue:
			if !ok {
				return
			}
			if err := l.write(e); err != nil {
				l.log.Error().Err(err).Str("kind", e.Kind).Msg("event log write failed")
			}
		case <-flush.C:
			if err := l.w.Flush(); err != nil {
				l.log.Error().Err(err).Msg("event log flush failed")
			}
		}
	}
}

func (l *Logger) write(e Entry) error {
	line, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := l.w.Write(line); err != nil {
		return err
	}
	return l.w.WriteByte('\n')
}

// ReadAll parses every entry in a log file, oldest first. Meant for tests
// and offline inspection, not the serving path.
func ReadAll(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("failed to parse event log line: %w", err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
