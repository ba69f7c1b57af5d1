package generator

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/kendall-kelly/chatwidget-api/models"
)

// Display defaults for fields the customer left empty.
const (
	DefaultHeaderTitle     = "Chat with us"
	DefaultPrimaryColor    = "#2563eb"
	DefaultSecondaryColor  = "#e5e7eb"
	DefaultTextColor       = "#111827"
	DefaultBackgroundColor = "#ffffff"
	DefaultFontFamily      = "system-ui, sans-serif"
	DefaultFontSize        = "14px"
	DefaultBorderRadius    = "12px"
	DefaultWidth           = "360px"
	DefaultHeight          = "520px"
	DefaultPosition        = "bottom-right"
)

// Names of the globals the generated script reads at startup. Previously
// generated widgets depend on them; do not rename.
const (
	GlobalChatbotConfig = "CHATBOT_CONFIG"
	GlobalCompanyInfo   = "COMPANY_INFO"
	GlobalAPIURL        = "CHATBOT_API_URL"
)

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// WithDefaults fills empty display fields.
func WithDefaults(cfg models.ChatbotConfig) models.ChatbotConfig {
	cfg.HeaderTitle = orDefault(cfg.HeaderTitle, DefaultHeaderTitle)
	cfg.PrimaryColor = orDefault(cfg.PrimaryColor, DefaultPrimaryColor)
	cfg.SecondaryColor = orDefault(cfg.SecondaryColor, DefaultSecondaryColor)
	cfg.TextColor = orDefault(cfg.TextColor, DefaultTextColor)
	cfg.BackgroundColor = orDefault(cfg.BackgroundColor, DefaultBackgroundColor)
	cfg.FontFamily = orDefault(cfg.FontFamily, DefaultFontFamily)
	cfg.FontSize = orDefault(cfg.FontSize, DefaultFontSize)
	cfg.BorderRadius = orDefault(cfg.BorderRadius, DefaultBorderRadius)
	cfg.Width = orDefault(cfg.Width, DefaultWidth)
	cfg.Height = orDefault(cfg.Height, DefaultHeight)
	if cfg.Position != "bottom-left" {
		cfg.Position = DefaultPosition
	}
	if cfg.QuickReplies == nil {
		cfg.QuickReplies = []string{}
	}
	return cfg
}

// BuildBindings resolves every token from the order. Values are raw; the
// substitution engine escapes them per template.
func BuildBindings(order models.Order, identifier, apiURL string) (Bindings, error) {
	cfg := WithDefaults(order.ChatbotConfig.Data())
	company := order.CompanyInfo.Data()

	configScript, err := ConfigScript(cfg, company, apiURL)
	if err != nil {
		return nil, err
	}

	theme := "light"
	if cfg.DarkMode {
		theme = "dark"
	}

	return Bindings{
		TokenHeaderTitle:     cfg.HeaderTitle,
		TokenWelcomeMessage:  cfg.WelcomeMessage,
		TokenPrimaryColor:    cfg.PrimaryColor,
		TokenSecondaryColor:  cfg.SecondaryColor,
		TokenTextColor:       cfg.TextColor,
		TokenBackgroundColor: cfg.BackgroundColor,
		TokenFontFamily:      cfg.FontFamily,
		TokenFontSize:        cfg.FontSize,
		TokenBorderRadius:    cfg.BorderRadius,
		TokenWidgetWidth:     cfg.Width,
		TokenWidgetHeight:    cfg.Height,
		TokenWidgetPosition:  cfg.Position,
		TokenTheme:           theme,
		TokenCompanyName:     company.Name,
		TokenUniqueID:        identifier,
		TokenConfigScript:    configScript,
	}, nil
}

// ConfigScript serializes the configuration, the company profile and the API
// endpoint into one inline script element. encoding/json escapes < > & and
// U+2028/U+2029, so no field can close the element or the literal.
func ConfigScript(cfg models.ChatbotConfig, company models.CompanyInfo, apiURL string) (string, error) {
	var buf bytes.Buffer
	buf.WriteString("<script>\n")
	for _, global := range []struct {
		name  string
		value any
	}{
		{GlobalChatbotConfig, cfg},
		{GlobalCompanyInfo, company},
		{GlobalAPIURL, apiURL},
	} {
		data, err := json.Marshal(global.value)
		if err != nil {
			return "", fmt.Errorf("serialize %s: %w", global.name, err)
		}
		fmt.Fprintf(&buf, "window.%s = Object.freeze(%s);\n", global.name, data)
	}
	buf.WriteString("</script>")
	return buf.String(), nil
}
