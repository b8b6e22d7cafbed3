// Package eventlog appends committed room events to a JSONL file.
//
// The logger is write-behind: Record enqueues onto a bounded buffer and a
// background goroutine does the disk IO. A slow or failing disk drops
// events; it never stalls or fails a game operation.
package eventlog
