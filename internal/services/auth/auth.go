// Package auth содержит логику локального входа демонстрационного
// пользователя. Бэкенд в проверке учетных данных не участвует: пара
// email/пароль сверяется с настроенной демо-учеткой, пароль — через
// bcrypt-хэш, вычисленный при старте.
package auth

import (
	"errors"
	"log/slog"

	"github.com/magabrotheeeer/auto-assistant-client/internal/config"
	"github.com/magabrotheeeer/auto-assistant-client/internal/lib/jwt"
	"github.com/magabrotheeeer/auto-assistant-client/internal/lib/password"
	"github.com/magabrotheeeer/auto-assistant-client/internal/models"
)

// ErrInvalidCredentials неверная пара email/пароль.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service отвечает за локальную аутентификацию.
type Service struct {
	demo     config.DemoUser
	demoHash string
	jwtMaker jwt.Maker
	log      *slog.Logger
}

// New создает сервис и хэширует демо-пароль. Пароль в открытом виде
// после этого нигде не держится.
func New(demo config.DemoUser, jwtMaker jwt.Maker, log *slog.Logger) (*Service, error) {
	hash, err := password.GetHash(demo.Password)
	if err != nil {
		return nil, err
	}
	demo.Password = ""
	return &Service{demo: demo, demoHash: hash, jwtMaker: jwtMaker, log: log}, nil
}

// Login проверяет учетные данные и возвращает профиль с токеном сессии.
// Любое несовпадение дает ErrInvalidCredentials без уточнения причины.
func (s *Service) Login(email, rawPassword string) (models.User, string, error) {
	if email != s.demo.Email {
		return models.User{}, "", ErrInvalidCredentials
	}
	if err := password.CompareHash(s.demoHash, rawPassword); err != nil {
		return models.User{}, "", ErrInvalidCredentials
	}

	user := models.User{
		Email:               s.demo.Email,
		Name:                s.demo.Name,
		SubscriptionType:    s.demo.SubscriptionType,
		SubscriptionStatus:  "active",
		SubscriptionEndDate: s.demo.SubscriptionEndDate,
	}
	token, err := s.jwtMaker.GenerateToken(user.Email, user.SubscriptionType)
	if err != nil {
		return models.User{}, "", err
	}
	return user, token, nil
}
