// Package ecuflash реализует представление тюнинга ECU: ограниченные
// числовые параметры, подключение и чтение карты, прошивку и журнал
// операций. Состояние живет в памяти на сессию и сбрасывается при
// размонтировании представления.
//
// Индикатор прогресса прошивки привязан к реальному исходу запроса:
// статус success выставляется только после подтверждения бэкенда,
// статус error — при любом отказе. Анимации с фиксированным таймером нет.
package ecuflash

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/magabrotheeeer/auto-assistant-client/internal/lib/sl"
	"github.com/magabrotheeeer/auto-assistant-client/internal/models"
)

// Статусы прошивки.
const (
	StatusIdle     = "idle"
	StatusFlashing = "flashing"
	StatusSuccess  = "success"
	StatusError    = "error"
)

// ErrNotConnected прошивка без подключенного ECU запрещена.
var ErrNotConnected = errors.New("ecu is not connected")

// ErrUnknownParam правка параметра с неизвестным именем.
var ErrUnknownParam = errors.New("unknown parameter")

// ErrConnectFailed сообщение для пользователя при недоступном ECU.
const ErrConnectFailed = "Unable to reach the ECU. Check that the interface is plugged in."

// DefaultParams параметры тюнинга по умолчанию.
func DefaultParams() map[string]float64 {
	return map[string]float64{
		"cartographie_injection": 100,
		"boost_turbo":            1.0,
		"avance_allumage":        0,
		"limiteur_regime":        6500,
	}
}

// FallbackLimits диапазоны, используемые когда бэкенд не отдал таблицу лимитов.
func FallbackLimits() map[string]models.ParamLimit {
	return map[string]models.ParamLimit{
		"cartographie_injection": {Min: 80, Max: 130},
		"boost_turbo":            {Min: 0.8, Max: 1.5},
		"avance_allumage":        {Min: -5, Max: 10},
		"limiteur_regime":        {Min: 5500, Max: 8500},
	}
}

// Gateway описывает контракт шлюза к бэкенду.
type Gateway interface {
	Call(ctx context.Context, method, path string, body any, query url.Values) (json.RawMessage, error)
}

// State снимок состояния представления для одной сессии.
type State struct {
	Connected   bool                         `json:"connected"`
	Params      map[string]float64           `json:"params"`
	Limits      map[string]models.ParamLimit `json:"limits"`
	ECUInfo     *models.ECUInfo              `json:"ecu_info,omitempty"`
	FlashStatus string                       `json:"flash_status"`
	Progress    int                          `json:"progress"`
	History     []models.HistoryEntry        `json:"history"`
}

type viewState struct {
	connected   bool
	params      map[string]float64
	limits      map[string]models.ParamLimit
	ecuInfo     *models.ECUInfo
	flashStatus string
	progress    int
	history     []models.HistoryEntry
}

// Service управляет состоянием ECU-представления всех сессий.
type Service struct {
	gw  Gateway
	log *slog.Logger
	now func() time.Time

	mu     sync.Mutex
	states map[string]*viewState
}

// New создает сервис ECU Flash.
func New(gw Gateway, log *slog.Logger) *Service {
	return &Service{gw: gw, log: log, now: time.Now, states: make(map[string]*viewState)}
}

func (s *Service) state(sid string) *viewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[sid]
	if !ok {
		st = &viewState{
			params:      DefaultParams(),
			limits:      FallbackLimits(),
			flashStatus: StatusIdle,
		}
		s.states[sid] = st
	}
	return st
}

func (s *Service) addHistory(st *viewState, event string) {
	st.history = append(st.history, models.HistoryEntry{
		Timestamp: s.now().Format("15:04:05"),
		Event:     event,
	})
}

// LoadLimits запрашивает таблицу лимитов у бэкенда. При любой ошибке
// остаются зашитые диапазоны. Возвращает действующую таблицу.
func (s *Service) LoadLimits(ctx context.Context, sid string) map[string]models.ParamLimit {
	const op = "ecuflash.LoadLimits"
	st := s.state(sid)

	raw, err := s.gw.Call(ctx, http.MethodGet, "/ecu_flash/parameters", nil, nil)
	if err != nil {
		s.log.Warn("limits fetch failed, using fallback ranges", slog.String("op", op), sl.Err(err))
		return s.copyLimits(st)
	}
	var payload struct {
		Parameters map[string]models.ParamLimit `json:"parameters"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || len(payload.Parameters) == 0 {
		return s.copyLimits(st)
	}

	s.mu.Lock()
	st.limits = payload.Parameters
	s.mu.Unlock()
	return s.copyLimits(st)
}

func (s *Service) copyLimits(st *viewState) map[string]models.ParamLimit {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]models.ParamLimit, len(st.limits))
	for k, v := range st.limits {
		out[k] = v
	}
	return out
}

// Connect подключается к ECU и при успехе сразу читает текущую карту.
func (s *Service) Connect(ctx context.Context, sid string) (State, error) {
	const op = "ecuflash.Connect"
	st := s.state(sid)

	raw, err := s.gw.Call(ctx, http.MethodPost, "/ecu_flash/connect", nil, nil)
	if err != nil {
		s.log.Error("ecu connect failed", slog.String("op", op), sl.Err(err))
		s.withLock(st, func() { s.addHistory(st, "ECU connection error") })
		return s.snapshot(sid), errors.New(ErrConnectFailed)
	}
	var payload struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || !payload.Success {
		msg := payload.Message
		if msg == "" {
			msg = ErrConnectFailed
		}
		s.withLock(st, func() { s.addHistory(st, "ECU connection refused") })
		return s.snapshot(sid), errors.New(msg)
	}

	s.withLock(st, func() {
		st.connected = true
		s.addHistory(st, "ECU connected")
	})
	if _, err := s.Read(ctx, sid); err != nil {
		s.log.Warn("initial map read failed", slog.String("op", op), sl.Err(err))
	}
	return s.snapshot(sid), nil
}

// Disconnect отключает ECU и забывает прочитанную карту.
func (s *Service) Disconnect(sid string) State {
	st := s.state(sid)
	s.withLock(st, func() {
		st.connected = false
		st.ecuInfo = nil
		s.addHistory(st, "ECU disconnected")
	})
	return s.snapshot(sid)
}

// Read читает текущую карту и сведения о блоке управления.
// Известные числовые параметры обновляют локальные значения.
func (s *Service) Read(ctx context.Context, sid string) (State, error) {
	const op = "ecuflash.Read"
	st := s.state(sid)

	raw, err := s.gw.Call(ctx, http.MethodGet, "/ecu_flash/read", nil, nil)
	if err != nil {
		s.log.Error("ecu read failed", slog.String("op", op), sl.Err(err))
		s.withLock(st, func() { s.addHistory(st, "ECU map read error") })
		return s.snapshot(sid), errors.New("Unable to read ECU data.")
	}
	var payload struct {
		Parameters map[string]float64 `json:"parameters"`
		ECUInfo    *models.ECUInfo    `json:"ecu_info"`
		Error      string             `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return s.snapshot(sid), errors.New("Unable to read ECU data.")
	}
	if payload.Error != "" {
		s.withLock(st, func() { s.addHistory(st, "ECU map read refused") })
		return s.snapshot(sid), errors.New(payload.Error)
	}

	s.withLock(st, func() {
		for name, value := range payload.Parameters {
			if _, known := st.params[name]; known {
				st.params[name] = value
			}
		}
		if payload.ECUInfo != nil {
			st.ecuInfo = payload.ECUInfo
		}
		s.addHistory(st, "Current map read")
	})
	return s.snapshot(sid), nil
}

// SetParam применяет правку параметра с зажимом по лимитам: значение вне
// диапазона молча отклоняется (текущее значение не меняется, не
// корректируется к границе). Возвращает действующее значение и признак
// применения правки; для неизвестного имени — ErrUnknownParam.
func (s *Service) SetParam(sid, name string, value float64) (float64, bool, error) {
	st := s.state(sid)
	s.mu.Lock()
	defer s.mu.Unlock()

	current, known := st.params[name]
	if !known {
		return 0, false, ErrUnknownParam
	}
	if limit, ok := st.limits[name]; ok {
		if value < limit.Min || value > limit.Max {
			return current, false, nil
		}
	}
	st.params[name] = value
	return value, true, nil
}

// Flash отправляет текущие параметры на прошивку. Статус и прогресс
// отражают реальный исход запроса.
func (s *Service) Flash(ctx context.Context, sid string) (State, error) {
	const op = "ecuflash.Flash"
	st := s.state(sid)

	s.mu.Lock()
	if !st.connected {
		s.mu.Unlock()
		return s.snapshot(sid), ErrNotConnected
	}
	st.flashStatus = StatusFlashing
	st.progress = 0
	body := make(map[string]float64, len(st.params))
	for k, v := range st.params {
		body[k] = v
	}
	s.mu.Unlock()

	raw, err := s.gw.Call(ctx, http.MethodPost, "/ecu_flash", body, nil)
	if err != nil {
		s.log.Error("ecu flash failed", slog.String("op", op), sl.Err(err))
		s.withLock(st, func() {
			st.flashStatus = StatusError
			s.addHistory(st, "ECU flash error")
		})
		return s.snapshot(sid), errors.New("An error occurred while flashing the ECU.")
	}
	var payload struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || !payload.Success {
		msg := payload.Message
		if msg == "" {
			msg = "An error occurred while flashing the ECU."
		}
		s.withLock(st, func() {
			st.flashStatus = StatusError
			s.addHistory(st, "ECU flash refused")
		})
		return s.snapshot(sid), errors.New(msg)
	}

	s.withLock(st, func() {
		st.flashStatus = StatusSuccess
		st.progress = 100
		s.addHistory(st, "ECU flash completed")
	})
	return s.snapshot(sid), nil
}

// State возвращает снимок состояния представления.
func (s *Service) State(sid string) State {
	return s.snapshot(sid)
}

// Reset забывает состояние сессии. Вызывается при размонтировании
// представления и при очистке сессии.
func (s *Service) Reset(sid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, sid)
}

func (s *Service) withLock(st *viewState, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

func (s *Service) snapshot(sid string) State {
	st := s.state(sid)
	s.mu.Lock()
	defer s.mu.Unlock()

	params := make(map[string]float64, len(st.params))
	for k, v := range st.params {
		params[k] = v
	}
	limits := make(map[string]models.ParamLimit, len(st.limits))
	for k, v := range st.limits {
		limits[k] = v
	}
	history := make([]models.HistoryEntry, len(st.history))
	copy(history, st.history)

	return State{
		Connected:   st.connected,
		Params:      params,
		Limits:      limits,
		ECUInfo:     st.ecuInfo,
		FlashStatus: st.flashStatus,
		Progress:    st.progress,
		History:     history,
	}
}
