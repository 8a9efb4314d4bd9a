package sfx_installer

import (
	"log"
	"regexp"
	"sort"

	"github.com/cloudfoundry/jibber_jabber"
	"github.com/pkg/errors"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v2"
)

const DefaultLanguage string = "en"

const (
	keyConfirmTitle = "confirm_title"
	keyConfirmQuit  = "confirm_quit"
	keyBlankScreen  = "blank_screen"
)

var languageFilePattern = regexp.MustCompile(`.*/([^/]+)\.ya?ml$`)

// Translator holds the strings of all available languages, and the currently selected one.
type Translator struct {
	language    string
	langStrings map[string]StringMap
}

// NewTranslator returns a Translator with all language files found in the languages folder
// of the resource box, set to the system locale if available, or the default language.
func NewTranslator() (*Translator, error) {
	languageFiles, err := GetResourceFiltered("languages", languageFilePattern)
	if err != nil {
		return nil, err
	}
	languages := make(map[string]StringMap)
	for filename, content := range languageFiles {
		languageTag := languageFilePattern.ReplaceAllString(filename, "$1")
		langStrings := make(StringMap)
		if err := yaml.Unmarshal(content, langStrings); err != nil {
			log.Printf("Unable to parse language file %s\n", filename)
			continue
		}
		languages[languageTag] = langStrings
	}
	return NewTranslatorFrom(languages)
}

// NewTranslatorFrom returns a Translator over the given language strings, indexed by
// language code.
func NewTranslatorFrom(languages map[string]StringMap) (*Translator, error) {
	t := &Translator{langStrings: languages}
	if err := t.SetLanguage(t.getLocale()); err != nil {
		if err = t.SetLanguage(DefaultLanguage); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Get returns the localized string for a given string key, falling back to the default
// language.
func (t *Translator) Get(key string) string {
	if value, ok := t.langStrings[t.language][key]; ok {
		return value
	}
	return t.langStrings[DefaultLanguage][key]
}

// GetLanguage returns the identifier (e.g. "en") for the current language.
func (t *Translator) GetLanguage() string { return t.language }

// GetLanguages returns a list of identifiers for all available languages. The default
// language (if it has strings available) will be the first in the list, the rest is
// sorted alphabetically.
func (t *Translator) GetLanguages() (languages []string) {
	hasDefault := false
	for lang := range t.langStrings {
		if lang != DefaultLanguage {
			languages = append(languages, lang)
		} else {
			hasDefault = true
		}
	}
	sort.Strings(languages)
	if hasDefault {
		languages = append([]string{DefaultLanguage}, languages...)
	}
	return languages
}

// SetLanguage given a language code string (e.g.: "en"), sets the translator's
// language.
func (t *Translator) SetLanguage(language string) error {
	if _, ok := t.langStrings[language]; !ok {
		return errors.Errorf("no language '%s'", language)
	}
	t.language = language
	return nil
}

// Messages returns the script messages in the current language. Keys missing from every
// language keep their English default.
func (t *Translator) Messages() Messages {
	msg := DefaultMessages()
	for key, field := range map[string]*string{
		keyConfirmTitle: &msg.ConfirmTitle,
		keyConfirmQuit:  &msg.ConfirmQuit,
		keyBlankScreen:  &msg.BlankScreen,
	} {
		if value := t.Get(key); value != "" {
			*field = value
		}
	}
	return msg
}

// getLocale returns the best match among the available languages for the current system
// locale, as a language code string (e.g.: "en").
func (t *Translator) getLocale() string {
	languageTags := []language.Tag{language.Raw.Make(DefaultLanguage)}
	codes := []string{DefaultLanguage}
	for _, code := range t.GetLanguages() {
		if code != DefaultLanguage && code != "" {
			languageTags = append(languageTags, language.Raw.Make(code))
			codes = append(codes, code)
		}
	}
	locale, err := jibber_jabber.DetectIETF()
	if err != nil {
		return DefaultLanguage
	}
	_, index, _ := language.NewMatcher(languageTags).Match(language.Make(locale))
	return codes[index]
}
