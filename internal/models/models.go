// Package models описывает структуры данных веб-клиента: профиль
// пользователя, результаты модулей и элементы локального состояния
// представлений. Ответы бэкенда имеют свободную форму, поэтому почти все
// поля результата опциональны и отображаются с подстановкой по умолчанию.
package models

// User профиль пользователя, хранимый в сессии.
type User struct {
	Email               string `json:"email"`
	Name                string `json:"name"`
	SubscriptionID      string `json:"subscriptionId,omitempty"`
	SubscriptionType    string `json:"subscriptionType,omitempty"`
	SubscriptionStatus  string `json:"subscriptionStatus,omitempty"`
	SubscriptionEndDate string `json:"subscriptionEndDate,omitempty"`
}

// VehicleInfo данные карты регистрации, распознанные модулем OCR.
type VehicleInfo struct {
	Registration          string `json:"registration"`
	Make                  string `json:"make"`
	Model                 string `json:"model"`
	VIN                   string `json:"vin"`
	FirstRegistrationDate string `json:"first_registration_date"`
	Owner                 string `json:"owner"`
}

// TelemetrySnapshot последний снимок данных OBD-II.
// Пустые строки означают, что бэкенд не вернул параметр.
type TelemetrySnapshot struct {
	RPM        string   `json:"rpm"`
	Speed      string   `json:"speed"`
	EngineTemp string   `json:"engine_temp"`
	EngineLoad string   `json:"engine_load"`
	DTC        []string `json:"dtc"`
}

// ConversationTurn одна реплика диалога с ассистентом.
type ConversationTurn struct {
	Role string `json:"role"` // user, assistant или system
	Text string `json:"text"`
}

// HistoryEntry запись журнала операций ECU Flash.
type HistoryEntry struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
}

// ParamLimit допустимый диапазон значения параметра ECU.
type ParamLimit struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ECUInfo сведения о блоке управления, возвращаемые при чтении карты.
type ECUInfo struct {
	Model         string `json:"model"`
	Version       string `json:"version"`
	Compatibility string `json:"compatibility"`
}

// PartOffer предложение по запчасти из модуля поиска.
type PartOffer struct {
	Name             string            `json:"name,omitempty"`
	Reference        string            `json:"reference,omitempty"`
	Price            float64           `json:"price,omitempty"`
	Currency         string            `json:"currency,omitempty"`
	Vendor           string            `json:"vendor,omitempty"`
	Source           string            `json:"source,omitempty"`
	Delivery         string            `json:"delivery,omitempty"`
	Stock            *int              `json:"stock,omitempty"`
	Description      string            `json:"description,omitempty"`
	CompatibleModels []CompatibleModel `json:"compatible_models,omitempty"`
	URL              string            `json:"url,omitempty"`
}

// CompatibleModel модель автомобиля, совместимая с запчастью.
type CompatibleModel struct {
	Manufacturer string `json:"manufacturer,omitempty"`
	Name         string `json:"name,omitempty"`
	Years        string `json:"years,omitempty"`
}

// MapOffer предложение картографии от партнера-препаратора.
// Цена приходит строкой в свободном формате ("249€", "19,99 €").
type MapOffer struct {
	Preparateur   string            `json:"preparateur,omitempty"`
	Description   string            `json:"description,omitempty"`
	Price         string            `json:"price,omitempty"`
	Rating        float64           `json:"rating,omitempty"`
	Category      string            `json:"category,omitempty"`
	Source        string            `json:"source,omitempty"`
	Gains         map[string]string `json:"gains,omitempty"`
	Compatibility []string          `json:"compatibility,omitempty"`
	AffiliateLink string            `json:"affiliate_link,omitempty"`
}

// Plan тарифный план подписки.
type Plan struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Currency    string   `json:"currency"`
	Interval    string   `json:"interval"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
}
