package memserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/five82/cardwatch/internal/cards"
	"github.com/five82/cardwatch/internal/remote"
)

// Ensure Server can stand in for a remote endpoint.
var _ remote.Client = (*Server)(nil)

// Options configure a Server.
type Options struct {
	Seed      []cards.Card
	Latency   time.Duration // applied to every operation
	FailEvery int           // every Nth query fails; zero disables
	NewID     func() string // defaults to uuid.NewString
	Logger    *slog.Logger
}

// Server is an in-memory card backend that answers the four card operations.
// It is safe for concurrent use.
type Server struct {
	mu        sync.Mutex
	cards     []cards.Card
	queries   int
	latency   time.Duration
	failEvery int
	newID     func() string
	logger    *slog.Logger
}

// DemoSeed returns the cards a demo backend starts with.
func DemoSeed() []cards.Card {
	return []cards.Card{
		{ID: "c0ffee00-0000-4000-8000-000000000001", CaseName: "HT-1", Name: "arya", Sex: "female"},
		{ID: "c0ffee00-0000-4000-8000-000000000002", CaseName: "HT-2", Name: "snow", Sex: "male"},
	}
}

// New builds a Server holding a copy of opts.Seed.
func New(opts Options) *Server {
	s := &Server{
		latency:   opts.Latency,
		failEvery: opts.FailEvery,
		newID:     opts.NewID,
		logger:    opts.Logger,
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.cards = append(s.cards, opts.Seed...)
	return s
}

// Cards returns a copy of the server-side list.
func (s *Server) Cards() []cards.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]cards.Card(nil), s.cards...)
}

// SetFailEvery changes query failure injection at runtime.
func (s *Server) SetFailEvery(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failEvery = n
	s.queries = 0
}

// Query implements remote.Client.
func (s *Server) Query(ctx context.Context, op remote.Operation, vars remote.Variables) (remote.Payload, error) {
	if err := s.wait(ctx, op); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queries++
	if s.failEvery > 0 && s.queries%s.failEvery == 0 {
		return nil, &remote.Error{Op: op.Name, Message: "injected failure"}
	}

	switch op.Name {
	case cards.ListOperation.Name:
		list := append([]cards.Card{}, s.cards...)
		return payload("cards", list)
	case cards.FindOperation.Name:
		var name string
		if err := decodeVar(vars, "name", &name); err != nil {
			return nil, &remote.Error{Op: op.Name, Message: err.Error()}
		}
		for _, c := range s.cards {
			if c.Name == name {
				return payload("card", c)
			}
		}
		return payload("card", nil)
	}
	return nil, &remote.Error{Op: op.Name, Message: "unknown query"}
}

// Mutate implements remote.Client.
func (s *Server) Mutate(ctx context.Context, op remote.Operation, vars remote.Variables) (remote.Payload, error) {
	if err := s.wait(ctx, op); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	switch op.Name {
	case cards.AddOperation.Name:
		var in cards.NewCard
		if err := decodeVar(vars, "i", &in); err != nil {
			return nil, &remote.Error{Op: op.Name, Message: err.Error()}
		}
		if strings.TrimSpace(in.CaseName) == "" {
			return nil, &remote.Error{Op: op.Name, Message: "caseName is required"}
		}
		card := cards.Card{ID: s.newID(), CaseName: in.CaseName, Name: in.Name, Sex: in.Sex}
		s.cards = append(s.cards, card)
		s.logger.Debug("card added", "id", card.ID, "case", card.CaseName)
		return payload("addCard", card)
	case cards.DeleteOperation.Name:
		var id string
		if err := decodeVar(vars, "id", &id); err != nil {
			return nil, &remote.Error{Op: op.Name, Message: err.Error()}
		}
		for i, c := range s.cards {
			if c.ID == id {
				s.cards = append(s.cards[:i:i], s.cards[i+1:]...)
				s.logger.Debug("card deleted", "id", id)
				return payload("deleteCard", c)
			}
		}
		return nil, &remote.Error{Op: op.Name, Message: fmt.Sprintf("card %q not found", id)}
	}
	return nil, &remote.Error{Op: op.Name, Message: "unknown mutation"}
}

func (s *Server) wait(ctx context.Context, op remote.Operation) error {
	if s.latency <= 0 {
		return nil
	}
	select {
	case <-time.After(s.latency):
		return nil
	case <-ctx.Done():
		return &remote.Error{Op: op.Name, Message: ctx.Err().Error(), Err: ctx.Err()}
	}
}

type request struct {
	Query         string           `json:"query"`
	OperationName string           `json:"operationName"`
	Variables     remote.Variables `json:"variables"`
}

type response struct {
	Data   remote.Payload       `json:"data"`
	Errors []remote.ServerError `json:"errors,omitempty"`
}

// ServeHTTP answers GraphQL-over-HTTP POST requests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	op := remote.Operation{Name: req.OperationName, Document: req.Query}

	var (
		data remote.Payload
		err  error
	)
	if strings.HasPrefix(strings.TrimSpace(req.Query), "mutation") {
		data, err = s.Mutate(r.Context(), op, req.Variables)
	} else {
		data, err = s.Query(r.Context(), op, req.Variables)
	}

	s.logger.Debug("graphql request", "operation", op.Name, "error", err)

	var resp response
	if err != nil {
		resp.Errors = []remote.ServerError{{Message: errorMessage(err)}}
	} else {
		resp.Data = data
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn("write response failed", "operation", op.Name, "error", err)
	}
}

func errorMessage(err error) string {
	if rerr, ok := err.(*remote.Error); ok && rerr.Message != "" {
		return rerr.Message
	}
	return err.Error()
}

func payload(field string, v any) (remote.Payload, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, &remote.Error{Op: field, Message: "encode result", Err: err}
	}
	return remote.Payload{field: raw}, nil
}

// decodeVar reads a variable whether it arrived as a Go value (in process) or
// as decoded JSON (over HTTP).
func decodeVar(vars remote.Variables, key string, dest any) error {
	v, ok := vars[key]
	if !ok {
		return fmt.Errorf("variable %q is required", key)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode variable %q: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("variable %q: %w", key, err)
	}
	return nil
}
