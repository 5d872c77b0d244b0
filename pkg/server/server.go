package server

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/ncloudioj/ampidx/internal/logger"
	"github.com/ncloudioj/ampidx/pkg/ampidx"
	"github.com/ncloudioj/ampidx/pkg/config"
)

// Server handles query and stats requests over a built, immutable index.
type Server struct {
	index      *ampidx.Index
	cache      *queryCache
	cfg        *config.Config
	configPath string
	log        *log.Logger

	decoder      *msgpack.Decoder
	writeMutex   sync.Mutex
	requestCount int64
}

// NewServer creates a server over a built index and configuration. A
// zero or negative Server.CacheSize disables the query cache entirely.
func NewServer(index *ampidx.Index, cfg *config.Config, configPath string) *Server {
	s := &Server{
		index:      index,
		cfg:        cfg,
		configPath: configPath,
		log:        logger.New("server"),
		decoder:    msgpack.NewDecoder(os.Stdin),
	}
	if cfg.Server.EnableCache && cfg.Server.CacheSize > 0 {
		s.cache = newQueryCache(index, cfg.Server.CacheSize)
	}
	return s
}

// reloadConfig reloads configuration from the TOML file on disk.
func (s *Server) reloadConfig() error {
	newConfig, err := config.LoadConfig(s.configPath)
	if err != nil {
		s.log.Warnf("failed to reload config, keeping current: %v", err)
		return err
	}
	s.cfg = newConfig
	s.log.Debugf("config reloaded from: %s", s.configPath)
	return nil
}

// Start begins listening for requests on stdin until the client
// disconnects (io.EOF). Any other request error is logged and the loop
// moves on to the next request.
func (s *Server) Start() error {
	s.log.Debug("starting msgpack query server")
	for {
		if err := s.processRequest(); err != nil {
			if err == io.EOF {
				s.log.Debug("client disconnected")
				return nil
			}
			s.log.Errorf("request processing error: %v", err)
			continue
		}
	}
}

// processRequest handles a single request from stdin.
func (s *Server) processRequest() error {
	s.requestCount++
	if s.requestCount%100 == 0 {
		s.reloadConfig()
	}

	var raw map[string]any
	s.log.Debug("waiting for request...")
	if err := s.decoder.Decode(&raw); err != nil {
		s.log.Debugf("decode error: %v", err)
		return err
	}

	id, _ := raw["id"].(string)

	if statsFlag, ok := raw["stats"].(bool); ok && statsFlag {
		return s.sendResponse(&StatsResponse{ID: id, Counts: s.index.Stats()})
	}

	prefix, ok := raw["p"].(string)
	if !ok {
		return s.sendError(id, "missing prefix field 'p'", 400)
	}
	if len(prefix) > s.cfg.Server.MaxPrefixLen {
		return s.sendError(id, fmt.Sprintf("prefix too long (max: %d)", s.cfg.Server.MaxPrefixLen), 400)
	}

	start := time.Now()
	results, err := s.query(prefix)
	elapsed := time.Since(start)
	if err != nil {
		return s.sendError(id, err.Error(), 500)
	}

	if len(results) == 0 {
		return s.sendResponse(&QueryResponse{ID: id, Found: false, TimeTaken: elapsed.Microseconds()})
	}

	r := results[0]
	return s.sendResponse(&QueryResponse{
		ID:    id,
		Found: true,
		Result: &QueryResult{
			Title:         r.Title,
			URL:           r.URL,
			ClickURL:      r.ClickURL,
			ImpressionURL: r.ImpressionURL,
			Advertiser:    r.Advertiser,
			BlockID:       r.BlockID,
			IABCategory:   r.IABCategory,
			Icon:          r.Icon,
			FullKeyword:   r.FullKeyword,
		},
		TimeTaken: elapsed.Microseconds(),
	})
}

// query dispatches to the cache if enabled, else directly to the index.
func (s *Server) query(prefix string) ([]ampidx.AmpResult, error) {
	if s.cache != nil {
		return s.cache.Query(prefix)
	}
	return s.index.Query(prefix)
}

// sendResponse encodes and writes a response to stdout atomically.
func (s *Server) sendResponse(response any) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()

	var buf bytes.Buffer
	encoder := msgpack.NewEncoder(&buf)
	if err := encoder.Encode(response); err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	if _, err := os.Stdout.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	os.Stdout.Sync()
	return nil
}

func (s *Server) sendError(id, message string, code int) error {
	return s.sendResponse(&ErrorResponse{ID: id, Error: message, Code: code})
}
