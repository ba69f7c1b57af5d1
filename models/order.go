package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Order represents a paid chatbot widget order. Orders are created by the
// checkout flow; this service only reads them.
type Order struct {
	ID            uint                              `gorm:"primaryKey" json:"id"`
	OrderNumber   string                            `gorm:"uniqueIndex;not null" json:"order_number" validate:"required,max=128"`
	ChatbotConfig datatypes.JSONType[ChatbotConfig] `gorm:"not null" json:"chatbot_config"`
	CompanyInfo   datatypes.JSONType[CompanyInfo]   `gorm:"not null" json:"company_info"`
	CreatedAt     time.Time                         `json:"created_at"`
	UpdatedAt     time.Time                         `json:"updated_at"`
	DeletedAt     gorm.DeletedAt                    `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// NewOrder builds an Order from its plain parts.
func NewOrder(orderNumber string, cfg ChatbotConfig, company CompanyInfo) Order {
	return Order{
		OrderNumber:   orderNumber,
		ChatbotConfig: datatypes.NewJSONType(cfg),
		CompanyInfo:   datatypes.NewJSONType(company),
	}
}

var orderValidator = validator.New()

// Validate rejects orders the generator cannot key: a blank order number is a
// caller error, not something to hash.
func (o Order) Validate() error {
	if strings.TrimSpace(o.OrderNumber) == "" {
		return fmt.Errorf("order number is required")
	}
	if err := orderValidator.Struct(o); err != nil {
		return fmt.Errorf("invalid order: %w", err)
	}
	return nil
}

// ChatbotConfig is the customer's widget configuration. Every string field is
// customer-supplied and untrusted.
type ChatbotConfig struct {
	HeaderTitle      string      `json:"headerTitle"`
	WelcomeMessage   string      `json:"welcomeMessage"`
	InputPlaceholder string      `json:"inputPlaceholder"`
	PrimaryColor     string      `json:"primaryColor"`
	SecondaryColor   string      `json:"secondaryColor"`
	TextColor        string      `json:"textColor"`
	BackgroundColor  string      `json:"backgroundColor"`
	FontFamily       string      `json:"fontFamily"`
	FontSize         string      `json:"fontSize"`
	BorderRadius     string      `json:"borderRadius"`
	Width            string      `json:"width"`
	Height           string      `json:"height"`
	Position         string      `json:"position"` // bottom-right, bottom-left
	AvatarURL        string      `json:"avatarUrl"`
	Language         string      `json:"language"`
	DarkMode         bool        `json:"darkMode"`
	Voice            VoiceConfig `json:"voice"`
	QuickReplies     []string    `json:"quickReplies"`
}

// VoiceConfig holds the speech synthesis options.
type VoiceConfig struct {
	Enabled bool    `json:"enabled"`
	Name    string  `json:"name"`
	Rate    float64 `json:"rate"`
	Pitch   float64 `json:"pitch"`
}

// CompanyInfo is the free-text business profile the chatbot answers from.
type CompanyInfo struct {
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	Website      string     `json:"website"`
	Address      string     `json:"address"`
	OpeningHours string     `json:"openingHours"`
	Policies     Policies   `json:"policies"`
	FAQ          []FAQEntry `json:"faq"`
}

// Policies groups the policy texts shown by the chatbot.
type Policies struct {
	Returns  string `json:"returns"`
	Shipping string `json:"shipping"`
	Privacy  string `json:"privacy"`
}

// FAQEntry is one question/answer pair.
type FAQEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
