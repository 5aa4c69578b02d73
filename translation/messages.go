package translation

import (
	"embed"
	"fmt"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

//go:embed active.*.toml
var messageFS embed.FS

// Messages localiza as mensagens de erro da API a partir do Accept-Language.
// IDs das mensagens = domain.Kind(err).
type Messages struct {
	bundle *i18n.Bundle
}

func NewMessages() (*Messages, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, file := range []string{"active.en.toml", "active.ja.toml"} {
		if _, err := bundle.LoadMessageFileFS(messageFS, file); err != nil {
			return nil, fmt.Errorf("translation: load %s: %w", file, err)
		}
	}
	return &Messages{bundle: bundle}, nil
}

// Text devolve a mensagem para kind; sem tradução, cai no inglês e por fim no próprio kind.
func (m *Messages) Text(acceptLanguage, kind string, data map[string]any) string {
	if m == nil || m.bundle == nil {
		return kind
	}
	loc := i18n.NewLocalizer(m.bundle, acceptLanguage, language.English.String())
	msg, err := loc.Localize(&i18n.LocalizeConfig{
		MessageID:    kind,
		TemplateData: data,
	})
	if err != nil {
		return kind
	}
	return msg
}
