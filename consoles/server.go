package consoles

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"

	"github.com/reusee/tvk/bridges"
	"github.com/reusee/tvk/logs"
	"github.com/reusee/tvk/syncs"
)

// Magic opens every console connection.
const Magic = "IV3D"

const maxChunkSize = 1 << 20

// Server executes Lua chunks sent over tcp, one chunk per line.
type Server struct {
	bridge  *bridges.Bridge
	sem     syncs.Semaphore
	logger  logs.Logger
	newCall logs.NewCall
}

func NewServer(bridge *bridges.Bridge, logger logs.Logger, newCall logs.NewCall) *Server {
	return &Server{
		bridge:  bridge,
		sem:     syncs.NewSemaphore(1),
		logger:  logger,
		newCall: newCall,
	}
}

// Serve accepts connections until ctx is done or ln fails.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() {
		ln.Close()
	})
	defer stop()

	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handle(ctx, conn)
		}()
	}
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() {
		conn.Close()
	})
	defer stop()

	remote := conn.RemoteAddr().String()
	ctx, _ = s.newCall(ctx, "console connection")

	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(conn, magic); err != nil {
		s.logger.WarnContext(ctx, "magic not found",
			"remote", remote,
			"error", err,
		)
		return
	}
	if string(magic) != Magic {
		s.logger.WarnContext(ctx, "bad magic",
			"remote", remote,
			"magic", fmt.Sprintf("%q", magic),
		)
		return
	}
	s.logger.InfoContext(ctx, "console connected",
		"remote", remote,
	)

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), maxChunkSize)
	w := bufio.NewWriter(conn)
	for scanner.Scan() {
		chunk := strings.TrimSpace(scanner.Text())
		if chunk == "" {
			continue
		}
		reply := "ok"
		if err := s.Exec(ctx, chunk); err != nil {
			reply = "error: " + strings.ReplaceAll(err.Error(), "\n", " ")
		}
		if _, err := fmt.Fprintln(w, reply); err != nil {
			return
		}
		if err := w.Flush(); err != nil {
			return
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		s.logger.WarnContext(ctx, "console read",
			"remote", remote,
			"error", err,
		)
	}
	s.logger.InfoContext(ctx, "console disconnected",
		"remote", remote,
	)
}

// Exec runs one chunk, waiting for chunks from other connections to finish.
func (s *Server) Exec(ctx context.Context, chunk string) error {
	ctx, _ = s.newCall(ctx, "console chunk")
	return s.sem.Do(ctx, func() error {
		err := s.bridge.Exec(ctx, chunk)
		if err != nil {
			s.logger.InfoContext(ctx, "console chunk failed",
				"error", err,
			)
		}
		return logs.WrapCall(ctx, err)
	})
}
