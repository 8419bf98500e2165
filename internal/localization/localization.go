package localization

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"autoposter-bot/internal/logger"
)

const fallbackLanguage = "en"

type Localizer struct {
	messages map[string]map[string]string
}

// NewLocalizer loads every locales/<lang>.json file found in dir.
func NewLocalizer(dir fs.FS) (*Localizer, error) {
	log := logger.Component("localization")
	messages := make(map[string]map[string]string)

	files, err := fs.ReadDir(dir, "locales")
	if err != nil {
		return nil, fmt.Errorf("failed to read locales directory: %w", err)
	}

	for _, file := range files {
		if path.Ext(file.Name()) != ".json" {
			continue
		}
		lang := strings.TrimSuffix(file.Name(), ".json")
		content, err := fs.ReadFile(dir, path.Join("locales", file.Name()))
		if err != nil {
			log.WithError(err).Warnf("Failed to read locale file %s", file.Name())
			continue
		}

		var langMessages map[string]string
		if err := json.Unmarshal(content, &langMessages); err != nil {
			log.WithError(err).Warnf("Failed to parse locale file %s", file.Name())
			continue
		}
		messages[lang] = langMessages
		log.WithField("lang", lang).Debug("Loaded language")
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("no locale files loaded")
	}

	return &Localizer{messages: messages}, nil
}

// GetMessage looks key up in lang, then in English, and finally returns
// the key itself.
func (l *Localizer) GetMessage(lang, key string) string {
	if langMessages, ok := l.messages[lang]; ok {
		if message, ok := langMessages[key]; ok {
			return message
		}
	}

	if defaultMessages, ok := l.messages[fallbackLanguage]; ok {
		if message, ok := defaultMessages[key]; ok {
			return message
		}
	}

	return key
}

// Format is GetMessage followed by fmt.Sprintf.
func (l *Localizer) Format(lang, key string, args ...any) string {
	return fmt.Sprintf(l.GetMessage(lang, key), args...)
}
