// Package assistant реализует диалог с NLP-модулем: транскрипт на сессию,
// хранимый только в памяти и сбрасываемый при размонтировании представления.
package assistant

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/magabrotheeeer/auto-assistant-client/internal/lib/sl"
	"github.com/magabrotheeeer/auto-assistant-client/internal/models"
)

// FallbackReply ответ, подставляемый при пустом поле response бэкенда.
const FallbackReply = "I do not know how to answer that question."

// SystemFailureReply реплика system при технической ошибке.
const SystemFailureReply = "Sorry, your request could not be processed due to a technical error."

// ExamplePrompts примеры вопросов, показываемые на странице ассистента.
var ExamplePrompts = []string{
	"Que signifie le code erreur P0300 ?",
	"Comment réparer un problème de démarrage ?",
	"Quelle est la meilleure huile pour ma voiture ?",
	"Comment changer les plaquettes de frein ?",
	"Quels sont les symptômes d'une pompe à eau défectueuse ?",
}

// Gateway описывает контракт шлюза к бэкенду.
type Gateway interface {
	Call(ctx context.Context, method, path string, body any, query url.Values) (json.RawMessage, error)
}

// Service хранит транскрипты диалогов по сессиям.
type Service struct {
	gw  Gateway
	log *slog.Logger

	mu          sync.Mutex
	transcripts map[string][]models.ConversationTurn
}

// New создает сервис ассистента.
func New(gw Gateway, log *slog.Logger) *Service {
	return &Service{gw: gw, log: log, transcripts: make(map[string][]models.ConversationTurn)}
}

type nlpRequest struct {
	Command string `json:"command"`
}

type nlpResponse struct {
	Response string `json:"response"`
}

// Ask добавляет реплику пользователя, вызывает /nlp и добавляет ответ
// ассистента. При ошибке в транскрипт добавляется реплика system, а
// вызывающему возвращается ошибка для перевода представления в Failure.
func (s *Service) Ask(ctx context.Context, sid, command string) ([]models.ConversationTurn, error) {
	const op = "assistant.Ask"
	s.append(sid, models.ConversationTurn{Role: "user", Text: command})

	raw, err := s.gw.Call(ctx, http.MethodPost, "/nlp", nlpRequest{Command: command}, nil)
	if err != nil {
		s.log.Error("nlp call failed", slog.String("op", op), sl.Err(err))
		s.append(sid, models.ConversationTurn{Role: "system", Text: SystemFailureReply})
		return s.Transcript(sid), err
	}

	var resp nlpResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		s.log.Warn("nlp response is malformed", slog.String("op", op), sl.Err(err))
	}
	reply := resp.Response
	if reply == "" {
		reply = FallbackReply
	}
	s.append(sid, models.ConversationTurn{Role: "assistant", Text: reply})
	return s.Transcript(sid), nil
}

func (s *Service) append(sid string, turn models.ConversationTurn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcripts[sid] = append(s.transcripts[sid], turn)
}

// Transcript возвращает копию транскрипта сессии.
func (s *Service) Transcript(sid string) []models.ConversationTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	src := s.transcripts[sid]
	out := make([]models.ConversationTurn, len(src))
	copy(out, src)
	return out
}

// Reset сбрасывает транскрипт сессии. Вызывается при размонтировании
// представления и при очистке сессии.
func (s *Service) Reset(sid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.transcripts, sid)
}
