// Package server provides a long-running daemon that keeps built semi-
// indices warm across requests: a Unix-socket (or TCP) accept loop, one
// goroutine per connection, line-delimited JSON requests. A built index
// is immutable and read-only shareable, so a plain size-bounded LRU
// (github.com/hashicorp/golang-lru/v2) is all the cache needs.
package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/succinctly/semidx/internal/cursor"
	"github.com/succinctly/semidx/internal/dsv"
	"github.com/succinctly/semidx/internal/jsonidx"
	"github.com/succinctly/semidx/internal/srcfile"
	"github.com/succinctly/semidx/internal/yamlidx"
)

// Format selects which scanner builds a document's semi-index.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
	FormatDSV
)

// Config holds daemon configuration.
type Config struct {
	Network        string // "unix" or "tcp"
	Address        string
	MaxConcurrency int
	IdleTimeout    time.Duration
	CacheSize      int // max number of built indices kept warm
}

// cacheEntry is one cached, already-built document: its root cursor plus
// whatever closer (an mmap Source) must be released when evicted.
type cacheEntry struct {
	root   cursor.Cursor
	mtime  time.Time
	closer func() error
}

// Daemon is the Unix/TCP socket server. It opens and indexes whatever
// path a request names, caching the result keyed by path+mtime.
type Daemon struct {
	config   Config
	listener net.Listener
	sem      chan struct{}
	shutdown chan struct{}
	wg       sync.WaitGroup

	cache *lru.Cache[string, *cacheEntry]
}

// New creates a daemon with the given configuration, filling in defaults
// for any zero-valued field.
func New(cfg Config) (*Daemon, error) {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 50
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 30 * time.Second
	}
	if cfg.Network == "" {
		cfg.Network = "unix"
	}
	if cfg.Address == "" {
		if cfg.Network == "unix" {
			cfg.Address = os.Getenv("SEMIDX_SOCKET")
			if cfg.Address == "" {
				cfg.Address = "/tmp/semidx.sock"
			}
		} else {
			cfg.Address = "127.0.0.1:0"
		}
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 32
	}

	cache, err := lru.NewWithEvict[string, *cacheEntry](cfg.CacheSize, func(_ string, e *cacheEntry) {
		if e.closer != nil {
			_ = e.closer()
		}
	})
	if err != nil {
		return nil, fmt.Errorf("server: creating cache: %w", err)
	}

	return &Daemon{
		config:   cfg,
		sem:      make(chan struct{}, cfg.MaxConcurrency),
		shutdown: make(chan struct{}),
		cache:    cache,
	}, nil
}

// Start binds the listener and serves connections until Shutdown is
// called or a termination signal arrives.
func (d *Daemon) Start() error {
	if d.config.Network == "unix" {
		if _, err := os.Stat(d.config.Address); err == nil {
			if err := os.Remove(d.config.Address); err != nil {
				return fmt.Errorf("server: removing stale socket: %w", err)
			}
		}
	}

	listener, err := net.Listen(d.config.Network, d.config.Address)
	if err != nil {
		return fmt.Errorf("server: binding %s %s: %w", d.config.Network, d.config.Address, err)
	}
	d.listener = listener

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigChan
		d.Shutdown()
	}()

	fmt.Fprintf(os.Stderr, "semidx daemon started on %s (%s), cache=%d\n",
		d.config.Network, d.config.Address, d.config.CacheSize)

	for {
		select {
		case <-d.shutdown:
			return nil
		default:
		}

		if ul, ok := listener.(*net.UnixListener); ok {
			_ = ul.SetDeadline(time.Now().Add(time.Second))
		} else if tl, ok := listener.(*net.TCPListener); ok {
			_ = tl.SetDeadline(time.Now().Add(time.Second))
		}

		conn, err := listener.Accept()
		if err != nil {
			if opErr, ok := err.(*net.OpError); ok && opErr.Timeout() {
				continue
			}
			select {
			case <-d.shutdown:
				return nil
			default:
				fmt.Fprintf(os.Stderr, "semidx: accept error: %v\n", err)
				continue
			}
		}

		d.wg.Add(1)
		go d.handleConnection(conn)
	}
}

// Shutdown gracefully stops the daemon, releases every cached index's
// mmap, and removes the socket file.
func (d *Daemon) Shutdown() {
	select {
	case <-d.shutdown:
		return
	default:
		close(d.shutdown)
	}
	if d.listener != nil {
		_ = d.listener.Close()
	}
	d.wg.Wait()
	d.cache.Purge()

	if d.config.Network == "unix" {
		_ = os.Remove(d.config.Address)
	}
	fmt.Fprintln(os.Stderr, "semidx daemon shutdown complete")
}

func (d *Daemon) handleConnection(conn net.Conn) {
	defer d.wg.Done()
	defer func() { _ = conn.Close() }()

	select {
	case d.sem <- struct{}{}:
		defer func() { <-d.sem }()
	case <-d.shutdown:
		return
	}

	reader := bufio.NewReader(conn)
	for {
		select {
		case <-d.shutdown:
			return
		default:
		}

		_ = conn.SetReadDeadline(time.Now().Add(d.config.IdleTimeout))
		line, err := reader.ReadBytes('\n')
		if err != nil {
			return
		}
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		response := d.processRequest(line)
		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		_, _ = conn.Write(response)
		_, _ = conn.Write([]byte("\n"))
	}
}

// Request is one line-delimited JSON request.
type Request struct {
	Action string `json:"action"`
	Path   string `json:"path,omitempty"`
	Format string `json:"format,omitempty"` // "json", "yaml", or "dsv"
	Field  string `json:"field,omitempty"`
}

func (d *Daemon) processRequest(data []byte) []byte {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return errorResponse("invalid JSON: " + err.Error())
	}

	switch req.Action {
	case "ping":
		return successResponse(map[string]any{"pong": true})
	case "status":
		return successResponse(map[string]any{"cached": d.cache.Len()})
	case "get":
		return d.handleGet(req)
	default:
		return errorResponse("unknown action: " + req.Action)
	}
}

func (d *Daemon) handleGet(req Request) []byte {
	if req.Path == "" {
		return errorResponse("missing path")
	}
	entry, err := d.loadOrBuild(req)
	if err != nil {
		return errorResponse(err.Error())
	}

	c := entry.root
	if req.Field != "" {
		next, ok := c.Field(req.Field)
		if !ok {
			return errorResponse(fmt.Sprintf("no such field: %q", req.Field))
		}
		c = next
	}

	return successResponse(map[string]any{
		"kind": c.Kind().String(),
		"raw":  string(c.RawBytes()),
	})
}

// loadOrBuild returns a cached index for req.Path when its mtime still
// matches, otherwise builds a fresh one and replaces the cache entry.
// The cache key couples path and mtime so a file edited between requests
// is transparently re-indexed instead of served stale.
func (d *Daemon) loadOrBuild(req Request) (*cacheEntry, error) {
	st, err := os.Stat(req.Path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", req.Path, err)
	}
	key := fmt.Sprintf("%s@%d", req.Path, st.ModTime().UnixNano())

	if e, ok := d.cache.Get(key); ok {
		return e, nil
	}

	src, err := srcfile.Open(req.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", req.Path, err)
	}
	if len(src.Bytes) == 0 {
		_ = src.Close()
		return nil, fmt.Errorf("%s is empty", req.Path)
	}

	var root cursor.Cursor
	switch parseFormat(req.Format) {
	case FormatYAML:
		idx, err := yamlidx.Build(src.Bytes)
		if err != nil {
			_ = src.Close()
			return nil, fmt.Errorf("building yaml index: %w", err)
		}
		root = idx.Root()
	case FormatDSV:
		idx := dsv.Build(src.Bytes, dsv.Default())
		root = idx.Root()
	default:
		idx := jsonidx.Build(src.Bytes)
		if idx.BP().Len() == 0 {
			_ = src.Close()
			return nil, fmt.Errorf("%s contains no JSON value", req.Path)
		}
		root = idx.Root()
	}

	entry := &cacheEntry{root: root, mtime: st.ModTime(), closer: src.Close}
	d.cache.Add(key, entry)
	return entry, nil
}

func parseFormat(s string) Format {
	switch s {
	case "yaml", "yml":
		return FormatYAML
	case "dsv", "csv", "tsv":
		return FormatDSV
	default:
		return FormatJSON
	}
}

func successResponse(payload map[string]any) []byte {
	payload["ok"] = true
	b, err := json.Marshal(payload)
	if err != nil {
		return []byte(`{"ok":false,"error":"marshal failure"}`)
	}
	return b
}

func errorResponse(msg string) []byte {
	b, _ := json.Marshal(map[string]any{"ok": false, "error": msg})
	return b
}
