// Package session holds the per-session state a front end shows around
// search: the query text, a loading flag, a user-facing message and the
// latest result list.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/menta2k/image-editor/pkg/client"
	"github.com/menta2k/image-editor/pkg/types"
)

// User-facing messages
const (
	MsgInvalidQuery = "Please enter a search term."
	MsgNoResults    = "No images found."
)

// ErrSuperseded is returned by Search when a newer search was issued before
// this one finished. Its outcome is dropped.
var ErrSuperseded = errors.New("search superseded by a newer query")

// View is a point-in-time copy of the session
type View struct {
	Query   string
	Results []types.SearchResult
	Loading bool
	Message string
}

// Session is safe for concurrent use
type Session struct {
	mu         sync.Mutex
	provider   client.SearchProvider
	log        logrus.FieldLogger
	query      string
	results    []types.SearchResult
	loading    bool
	message    string
	generation uint64
}

func New(provider client.SearchProvider, log logrus.FieldLogger) *Session {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Session{provider: provider, log: log.WithField("component", "session")}
}

// SetQuery stores the text the next Search will use
func (s *Session) SetQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = q
}

// Search runs the current query. On success the result list is replaced;
// on failure the previous list is kept and Message explains why.
func (s *Session) Search(ctx context.Context) error {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	q := s.query
	s.loading = true
	s.message = ""
	s.mu.Unlock()

	results, err := s.provider.Search(ctx, q)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.log.WithField("query", q).Debug("dropping stale search response")
		return ErrSuperseded
	}
	s.loading = false

	switch {
	case err == nil:
		s.results = results
	case errors.Is(err, client.ErrNoResults):
		s.results = []types.SearchResult{}
		s.message = MsgNoResults
	case errors.Is(err, client.ErrInvalidQuery):
		s.message = MsgInvalidQuery
	default:
		var unavailable *client.UnavailableError
		if errors.As(err, &unavailable) {
			s.message = unavailable.Message
		} else {
			s.message = err.Error()
		}
		s.log.WithError(err).Warn("search failed")
	}
	return err
}

// View returns a copy of the current state
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]types.SearchResult, len(s.results))
	copy(results, s.results)
	return View{Query: s.query, Results: results, Loading: s.loading, Message: s.message}
}

// Result returns the i-th result of the current list
func (s *Session) Result(i int) (types.SearchResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i < 0 || i >= len(s.results) {
		return types.SearchResult{}, false
	}
	return s.results[i], true
}
