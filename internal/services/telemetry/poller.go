// Package telemetry реализует панель OBD-II: периодический опрос бэкенда
// с отменяемым таймером на каждую подключенную сессию.
//
// Таймер обязан останавливаться и по явному отключению, и при размонтировании
// представления или очистке сессии — подвешенный опрос считается утечкой
// ресурса, а не косметикой.
package telemetry

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/magabrotheeeer/auto-assistant-client/internal/lib/sl"
	"github.com/magabrotheeeer/auto-assistant-client/internal/models"
)

// PollInterval период опроса конечной точки /obd2.
const PollInterval = 3 * time.Second

// ErrDeviceUnreachable сообщение для пользователя при транспортной ошибке.
const ErrDeviceUnreachable = "Unable to reach the vehicle. Check that the OBD-II dongle is connected."

// Gateway описывает контракт шлюза к бэкенду.
type Gateway interface {
	Call(ctx context.Context, method, path string, body any, query url.Values) (json.RawMessage, error)
}

// Status текущее состояние панели для сессии.
type Status struct {
	Connected bool                      `json:"connected"`
	Snapshot  *models.TelemetrySnapshot `json:"snapshot,omitempty"`
	Error     string                    `json:"error,omitempty"`
	UpdatedAt string                    `json:"updated_at,omitempty"`
}

type poller struct {
	cancel context.CancelFunc

	mu        sync.Mutex
	snapshot  *models.TelemetrySnapshot
	errMsg    string
	updatedAt time.Time
}

// Service управляет опросчиками всех сессий.
type Service struct {
	gw       Gateway
	log      *slog.Logger
	interval time.Duration

	mu      sync.Mutex
	pollers map[string]*poller
}

// New создает сервис телеметрии со стандартным интервалом опроса.
func New(gw Gateway, log *slog.Logger) *Service {
	return &Service{gw: gw, log: log, interval: PollInterval, pollers: make(map[string]*poller)}
}

// NewWithInterval создает сервис с заданным интервалом. Нужен тестам.
func NewWithInterval(gw Gateway, log *slog.Logger, interval time.Duration) *Service {
	return &Service{gw: gw, log: log, interval: interval, pollers: make(map[string]*poller)}
}

// Connect запускает периодический опрос для сессии. Повторное подключение
// уже подключенной сессии ничего не меняет.
func (s *Service) Connect(sid string) {
	s.mu.Lock()
	if _, ok := s.pollers[sid]; ok {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &poller{cancel: cancel}
	s.pollers[sid] = p
	s.mu.Unlock()

	s.log.Info("telemetry polling started", slog.String("sid", sid))
	go s.run(ctx, p)
}

func (s *Service) run(ctx context.Context, p *poller) {
	s.fetch(ctx, p)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.fetch(ctx, p)
		}
	}
}

func (s *Service) fetch(ctx context.Context, p *poller) {
	raw, err := s.gw.Call(ctx, http.MethodGet, "/obd2", nil, nil)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.log.Warn("obd2 poll failed", sl.Err(err))
		p.mu.Lock()
		p.errMsg = ErrDeviceUnreachable
		p.updatedAt = time.Now()
		p.mu.Unlock()
		return
	}

	snapshot, domainErr := decodeSnapshot(raw)
	p.mu.Lock()
	// Ошибочный тик не затирает последний удачный снимок: панель
	// продолжает показывать данные рядом с текстом ошибки.
	if snapshot != nil {
		p.snapshot = snapshot
	}
	p.errMsg = domainErr
	p.updatedAt = time.Now()
	p.mu.Unlock()
}

// Disconnect останавливает опрос сессии. Отключение неподключенной
// сессии — no-op.
func (s *Service) Disconnect(sid string) {
	s.mu.Lock()
	p, ok := s.pollers[sid]
	if ok {
		delete(s.pollers, sid)
	}
	s.mu.Unlock()
	if ok {
		p.cancel()
		s.log.Info("telemetry polling stopped", slog.String("sid", sid))
	}
}

// Connected сообщает, идет ли опрос для сессии.
func (s *Service) Connected(sid string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pollers[sid]
	return ok
}

// Status возвращает последний снимок данных сессии.
func (s *Service) Status(sid string) Status {
	s.mu.Lock()
	p, ok := s.pollers[sid]
	s.mu.Unlock()
	if !ok {
		return Status{}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	st := Status{Connected: true, Snapshot: p.snapshot, Error: p.errMsg}
	if !p.updatedAt.IsZero() {
		st.UpdatedAt = p.updatedAt.Format(time.RFC3339)
	}
	return st
}

// obdPayload свободная форма ответа /obd2: числа и строки вперемешку,
// DTC может быть строкой или списком строк.
type obdPayload struct {
	RPM        any             `json:"RPM"`
	Speed      any             `json:"Speed"`
	EngineTemp any             `json:"EngineTemp"`
	EngineLoad any             `json:"EngineLoad"`
	DTC        json.RawMessage `json:"DTC"`
	Error      string          `json:"error"`
}

func decodeSnapshot(raw json.RawMessage) (*models.TelemetrySnapshot, string) {
	var payload obdPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, ErrDeviceUnreachable
	}
	if payload.Error != "" {
		return nil, payload.Error
	}
	return &models.TelemetrySnapshot{
		RPM:        formatValue(payload.RPM),
		Speed:      formatValue(payload.Speed),
		EngineTemp: formatValue(payload.EngineTemp),
		EngineLoad: formatValue(payload.EngineLoad),
		DTC:        decodeDTC(payload.DTC),
	}, ""
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return ""
	}
}

func decodeDTC(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return []string{single}
	}
	return nil
}
