package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/charmbracelet/log"
	"github.com/viniciusth/fmindex"
	"github.com/viniciusth/fmindex/internal/config"
	"github.com/vmihailenco/msgpack/v5"
)

// Server answers queries against one index. Requests are processed in the
// order they arrive.
type Server struct {
	index  *fmindex.Index
	config config.SearchConfig
	cache  *HotCache
	dec    *msgpack.Decoder
	enc    *msgpack.Encoder
	out    *bufio.Writer
	log    *log.Logger
}

func NewServer(index *fmindex.Index, cfg config.SearchConfig, r io.Reader, w io.Writer, logger *log.Logger) *Server {
	out := bufio.NewWriter(w)
	return &Server{
		index:  index,
		config: cfg,
		cache:  NewHotCache(cfg.CacheSize),
		dec:    msgpack.NewDecoder(bufio.NewReader(r)),
		enc:    msgpack.NewEncoder(out),
		out:    out,
		log:    logger,
	}
}

// Start signals readiness and serves requests until the input is closed.
func (s *Server) Start() error {
	s.log.Debug("Starting server")
	if err := s.send(StatusResponse{Status: "ready"}); err != nil {
		return err
	}

	for {
		var req Request
		if err := s.dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				s.log.Debug("Input closed, stopping server")
				return nil
			}
			// The stream cannot be resynchronized after a malformed message.
			s.log.Errorf("Decoding request: %v", err)
			_ = s.sendError("", "malformed request", 400)
			return fmt.Errorf("decode request: %w", err)
		}
		if err := s.handle(req); err != nil {
			return err
		}
	}
}

func (s *Server) handle(req Request) error {
	switch req.Action {
	case ActionSearch, "":
		return s.handleSearch(req, true)
	case ActionCount:
		return s.handleSearch(req, false)
	case ActionInfo:
		stats := s.index.Stats()
		return s.send(InfoResponse{
			ID:           req.ID,
			Symbols:      stats.Symbols,
			AlphabetSize: stats.AlphabetSize,
			Algorithm:    stats.Algorithm,
			Step:         stats.Step,
			Cached:       s.cache.Len(),
		})
	case ActionCached:
		limit := req.Limit
		if limit < 1 {
			limit = s.config.MaxResults
		}
		return s.send(CachedResponse{ID: req.ID, Patterns: s.cache.Extensions(req.Pattern, limit)})
	case ActionHealth:
		return s.send(StatusResponse{ID: req.ID, Status: "ok"})
	default:
		return s.sendError(req.ID, fmt.Sprintf("unknown action: %s", req.Action), 400)
	}
}

func (s *Server) handleSearch(req Request, locate bool) error {
	if n := utf8.RuneCountInString(req.Pattern); n > s.config.MaxPattern {
		s.log.Debug("Pattern too long", "id", req.ID, "len", n)
		return s.sendError(req.ID, fmt.Sprintf("pattern exceeds maximum length of %d", s.config.MaxPattern), 400)
	}

	start := time.Now()
	if !locate {
		count := s.index.Count(req.Pattern)
		return s.send(SearchResponse{ID: req.ID, Count: count, TimeTaken: time.Since(start).Microseconds()})
	}

	positions, cached := s.cache.Get(req.Pattern)
	if !cached {
		positions = s.index.Search(req.Pattern)
		s.cache.Put(req.Pattern, positions)
	}

	limit := req.Limit
	if limit < 1 || (s.config.MaxResults > 0 && limit > s.config.MaxResults) {
		limit = s.config.MaxResults
	}
	resp := SearchResponse{
		ID:        req.ID,
		Positions: firstPositions(positions, limit),
		Count:     int(positions.GetCardinality()),
		Cached:    cached,
	}
	resp.TimeTaken = time.Since(start).Microseconds()
	s.log.Debug("Search", "id", req.ID, "pattern", req.Pattern, "count", resp.Count, "cached", cached, "us", resp.TimeTaken)
	return s.send(resp)
}

// firstPositions returns the limit smallest positions of set, all of them if
// limit < 1.
func firstPositions(set *roaring.Bitmap, limit int) []int {
	n := int(set.GetCardinality())
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]int, 0, n)
	it := set.Iterator()
	for it.HasNext() && len(out) < n {
		out = append(out, int(it.Next()))
	}
	return out
}

func (s *Server) send(response any) error {
	if err := s.enc.Encode(response); err != nil {
		s.log.Errorf("Encoding response: %v", err)
		return fmt.Errorf("encode response: %w", err)
	}
	if err := s.out.Flush(); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}

func (s *Server) sendError(id, message string, code int) error {
	return s.send(ErrorResponse{ID: id, Error: message, Code: code})
}
