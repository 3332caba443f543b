package models

import "time"

// StockRef - краткая ссылка на акцию внутри типа
type StockRef struct {
	ID     string `json:"_id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// StockSymbol представляет справочную запись по тикеру
type StockSymbol struct {
	ID            string    `json:"_id"`
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	Exchange      string    `json:"exchange"`
	CurrentPrice  string    `json:"currentPrice"`  // Десятичная строка, как отдаёт backend
	PreviousPrice string    `json:"previousPrice"` // Цена предыдущего обновления
	UpdatedAt     time.Time `json:"updatedAt,omitempty"`
}

// Ref возвращает краткую ссылку на акцию
func (s StockSymbol) Ref() StockRef {
	return StockRef{ID: s.ID, Symbol: s.Symbol, Name: s.Name}
}

// StockInput - тело запроса на создание/обновление тикера
type StockInput struct {
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	Exchange      string `json:"exchange"`
	CurrentPrice  string `json:"currentPrice,omitempty"`
	PreviousPrice string `json:"previousPrice,omitempty"`
}

// TipCategory - уровень доступа к типу
type TipCategory string

const (
	CategoryBasic       TipCategory = "basic"
	CategoryPremium     TipCategory = "premium"
	CategorySocialMedia TipCategory = "social_media"
)

// TipStatus - статус типа
type TipStatus string

const (
	TipStatusActive TipStatus = "Active"
	TipStatusClosed TipStatus = "Closed"
)

// TipAction - торговое действие, рекомендуемое типом
type TipAction string

const (
	ActionBuy                 TipAction = "buy"
	ActionSell                TipAction = "sell"
	ActionHold                TipAction = "hold"
	ActionPartialProfitBooked TipAction = "partial profit booked"
	ActionPartialLossBooked   TipAction = "partial loss booked"
	ActionExit                TipAction = "exit"
	ActionAddMore             TipAction = "add more"
)

// ContentBlock - именованный текстовый блок контента
type ContentBlock struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// DownloadLink - именованная ссылка на материалы
type DownloadLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Tip - рекомендация по акции в том виде, в котором её ожидает backend
type Tip struct {
	ID                   string         `json:"_id,omitempty"`
	Title                string         `json:"title"`
	StockID              string         `json:"stockId"`
	Stock                *StockRef      `json:"stock,omitempty"` // Заполняется backend'ом при чтении
	Category             TipCategory    `json:"category"`
	Content              []ContentBlock `json:"content"`
	Description          string         `json:"description"`
	Status               TipStatus      `json:"status"`
	Action               TipAction      `json:"action,omitempty"`
	BuyRange             string         `json:"buyRange"`
	TargetPrice          string         `json:"targetPrice,omitempty"`
	TargetPercentage     string         `json:"targetPercentage,omitempty"`
	AddMoreAt            string         `json:"addMoreAt,omitempty"`
	ExitPrice            string         `json:"exitPrice,omitempty"`
	ExitStatus           string         `json:"exitStatus,omitempty"`
	ExitStatusPercentage string         `json:"exitStatusPercentage,omitempty"`
	Horizon              string         `json:"horizon"`
	DownloadLinks        []DownloadLink `json:"downloadLinks,omitempty"`
	AnalystConfidence    int            `json:"analystConfidence"`
	CreatedAt            *time.Time     `json:"createdAt,omitempty"`
	UpdatedAt            *time.Time     `json:"updatedAt,omitempty"`
}

// UserRef - краткая ссылка на пользователя платформы
type UserRef struct {
	ID       string `json:"_id"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// PortfolioRef - краткая ссылка на портфель
type PortfolioRef struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// Subscription - подписка пользователя на портфель
type Subscription struct {
	ID         string       `json:"_id"`
	User       UserRef      `json:"user"`
	Portfolio  PortfolioRef `json:"portfolio"`
	IsActive   bool         `json:"isActive"`
	LastPaidAt *time.Time   `json:"lastPaidAt,omitempty"`
}

// PaymentStatus - статус платежа
type PaymentStatus string

const (
	PaymentCreated  PaymentStatus = "created"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// PaymentHistory - запись истории платежей
type PaymentHistory struct {
	ID        string        `json:"_id"`
	User      UserRef       `json:"user"`
	Portfolio PortfolioRef  `json:"portfolio"`
	Amount    float64       `json:"amount"`
	Currency  string        `json:"currency"`
	Status    PaymentStatus `json:"status"`
	OrderID   string        `json:"orderId"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Page - страница результата списка
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}
