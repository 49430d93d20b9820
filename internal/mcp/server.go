package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
)

// Server defines the interface for an MCP server transport.
type Server interface {
	Start(ctx context.Context)
	ReadChannel() <-chan JSONRPCRequest
	WriteChannel() chan<- JSONRPCResponse
	Wait()
	Close() error
}

// maxLineBytes caps a single request line. Base64 image inputs ride inside
// one JSON-RPC line, so the cap must hold a whole encoded image.
const maxLineBytes = 16 * 1024 * 1024

// StdioServer implements the Server interface using standard input/output.
// Protocol messages own stdout, so any logging must go elsewhere (stderr).
type StdioServer struct {
	reader      io.Reader
	writer      io.Writer
	readChan    chan JSONRPCRequest
	writeChan   chan JSONRPCResponse
	shutdownCtx context.Context
	cancelFunc  context.CancelFunc
	wg          sync.WaitGroup
}

// NewStdioServer creates a new StdioServer instance.
func NewStdioServer(reader io.Reader, writer io.Writer) *StdioServer {
	ctx, cancel := context.WithCancel(context.Background())
	return &StdioServer{
		reader:      reader,
		writer:      writer,
		readChan:    make(chan JSONRPCRequest),
		writeChan:   make(chan JSONRPCResponse),
		shutdownCtx: ctx,
		cancelFunc:  cancel,
	}
}

// Start begins the reader and writer goroutines.
func (s *StdioServer) Start(ctx context.Context) {
	s.wg.Add(2)

	// Reader: one JSON-RPC request per line. Malformed lines are skipped.
	go func() {
		defer s.wg.Done()
		defer close(s.readChan)
		scanner := bufio.NewScanner(s.reader)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		for scanner.Scan() {
			select {
			case <-s.shutdownCtx.Done():
				return
			default:
				line := scanner.Bytes()
				var request JSONRPCRequest
				if err := json.Unmarshal(line, &request); err != nil {
					slog.Debug("Skipping malformed request line", "error", err)
					continue
				}
				select {
				case s.readChan <- request:
				case <-s.shutdownCtx.Done():
					return
				}
			}
		}
		if err := scanner.Err(); err != nil && err != io.EOF {
			slog.Error("Error reading from stdin", "error", err)
		}
		s.cancelFunc() // Signal shutdown when input closes
	}()

	// Writer: newline-delimited responses, flushed per message.
	go func() {
		defer s.wg.Done()
		writer := bufio.NewWriter(s.writer)
		for {
			select {
			case <-s.shutdownCtx.Done():
				_ = writer.Flush()
				return
			case response, ok := <-s.writeChan:
				if !ok {
					_ = writer.Flush()
					return
				}
				respBytes, err := json.Marshal(response)
				if err != nil {
					slog.Error("Error marshalling response", "error", err)
					continue
				}
				if _, err = writer.Write(respBytes); err != nil {
					s.cancelFunc()
					return
				}
				if _, err = writer.WriteString("\n"); err != nil {
					s.cancelFunc()
					return
				}
				if err = writer.Flush(); err != nil {
					s.cancelFunc()
					return
				}
			}
		}
	}()
}

// ReadChannel returns the channel for receiving incoming requests.
func (s *StdioServer) ReadChannel() <-chan JSONRPCRequest {
	return s.readChan
}

// WriteChannel returns the channel for sending outgoing responses.
func (s *StdioServer) WriteChannel() chan<- JSONRPCResponse {
	return s.writeChan
}

// Wait blocks until the server has shut down completely.
func (s *StdioServer) Wait() {
	<-s.shutdownCtx.Done()
	s.wg.Wait()
}

// Close initiates a graceful shutdown of the server.
func (s *StdioServer) Close() error {
	s.cancelFunc()
	s.Wait()
	// Safe to close only after the writer goroutine has exited.
	close(s.writeChan)
	return nil
}
