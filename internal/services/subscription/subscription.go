// Package subscription реализует витрину тарифов и оформление подписки.
//
// Каталог тарифов запрашивается у бэкенда; при его недоступности
// используется резервный каталог, чтобы витрина оставалась рабочей.
package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/magabrotheeeer/auto-assistant-client/internal/lib/jwt"
	"github.com/magabrotheeeer/auto-assistant-client/internal/lib/sl"
	"github.com/magabrotheeeer/auto-assistant-client/internal/models"
)

// Gateway описывает контракт шлюза к бэкенду.
type Gateway interface {
	Call(ctx context.Context, method, path string, body any, query url.Values) (json.RawMessage, error)
}

// Service отвечает за тарифы и оформление подписки.
type Service struct {
	gw       Gateway
	jwtMaker jwt.Maker
	log      *slog.Logger
}

// New создает сервис подписок.
func New(gw Gateway, jwtMaker jwt.Maker, log *slog.Logger) *Service {
	return &Service{gw: gw, jwtMaker: jwtMaker, log: log}
}

// FallbackPlans резервный каталог тарифов.
func FallbackPlans() []models.Plan {
	return []models.Plan{
		{
			ID:          "price_basic",
			Name:        "Formule Standard",
			Price:       19.90,
			Currency:    "EUR",
			Interval:    "month",
			Description: "Abonnement mensuel à 19,90€ avec dongle OBD-II offert",
			Features: []string{
				"Diagnostic OBD-II en temps réel",
				"Reconnaissance de pièces par image",
				"Assistant NLP automobile",
				"Recherche de pièces détachées",
				"OCR pour cartes grises",
				"Cartographies moteur standard",
				"Dongle OBD-II inclus",
			},
		},
		{
			ID:          "price_premium",
			Name:        "Formule Premium",
			Price:       29.90,
			Currency:    "EUR",
			Interval:    "month",
			Description: "Abonnement premium avec fonctionnalités avancées",
			Features: []string{
				"Toutes les fonctionnalités Standard",
				"Cartographies moteur avancées",
				"Flash ECU illimité",
				"Support technique prioritaire",
				"Dongle OBD-II Pro inclus",
				"Mise à jour hebdomadaire des bases de données",
			},
		},
	}
}

// Plans возвращает каталог тарифов и признак использования резервного
// каталога.
func (s *Service) Plans(ctx context.Context) ([]models.Plan, bool) {
	const op = "subscription.Plans"
	raw, err := s.gw.Call(ctx, http.MethodGet, "/subscribe/plans", nil, nil)
	if err != nil {
		s.log.Warn("plans fetch failed, serving fallback catalogue", slog.String("op", op), sl.Err(err))
		return FallbackPlans(), true
	}
	var payload struct {
		Status string        `json:"status"`
		Plans  []models.Plan `json:"plans"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Status != "success" || len(payload.Plans) == 0 {
		return FallbackPlans(), true
	}
	return payload.Plans, false
}

// CheckoutRequest данные оформления подписки, отправляемые бэкенду.
type CheckoutRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	PlanID   string `json:"plan_id"`
}

// Subscribe оформляет подписку на бэкенде. При успехе возвращает профиль
// пользователя для сессии и свежий токен.
func (s *Service) Subscribe(ctx context.Context, req CheckoutRequest) (models.User, string, error) {
	const op = "subscription.Subscribe"
	raw, err := s.gw.Call(ctx, http.MethodPost, "/subscribe", req, nil)
	if err != nil {
		s.log.Error("subscribe call failed", slog.String("op", op), sl.Err(err))
		return models.User{}, "", errors.New("Subscription service is unreachable. Please try again later.")
	}
	var payload struct {
		Status             string `json:"status"`
		SubscriptionID     string `json:"subscription_id"`
		SubscriptionStatus string `json:"subscription_status"`
		Message            string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Status != "success" {
		msg := payload.Message
		if msg == "" {
			msg = "An error occurred while creating the subscription."
		}
		return models.User{}, "", errors.New(msg)
	}

	name := req.Name
	if name == "" {
		name = "Utilisateur"
	}
	user := models.User{
		Email:              req.Email,
		Name:               name,
		SubscriptionID:     payload.SubscriptionID,
		SubscriptionStatus: payload.SubscriptionStatus,
		SubscriptionType:   s.planName(ctx, req.PlanID),
	}
	token, err := s.jwtMaker.GenerateToken(user.Email, user.SubscriptionType)
	if err != nil {
		return models.User{}, "", err
	}
	return user, token, nil
}

// planName находит имя тарифа по идентификатору; сам идентификатор
// используется как имя, если тариф не найден.
func (s *Service) planName(ctx context.Context, planID string) string {
	plans, _ := s.Plans(ctx)
	for _, plan := range plans {
		if plan.ID == planID {
			return plan.Name
		}
	}
	return planID
}
