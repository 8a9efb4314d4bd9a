package sfx_installer

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	// CodeScreen is the screen type for raw shell code, copied into the script as is.
	CodeScreen = "code"

	installKey   = "install"
	uninstallKey = "uninstall"
)

type (
	// Screen is one step of an installer or uninstaller. Type names a dialog widget
	// (msgbox, yesno, inputbox, ...) or is CodeScreen. All other fields are optional.
	//
	// Condition is a shell test expression guarding the whole screen. Store names the
	// variable that receives the dialog's response, initialized to Default beforehand.
	// After is shell code run right after the screen, still inside the condition.
	Screen struct {
		Type      string   `mapstructure:"type" yaml:"type"`
		Title     string   `mapstructure:"title" yaml:"title,omitempty"`
		Condition string   `mapstructure:"condition" yaml:"condition,omitempty"`
		Text      *string  `mapstructure:"text" yaml:"text,omitempty"`
		Options   []string `mapstructure:"options" yaml:"options,omitempty"`
		Store     string   `mapstructure:"store" yaml:"store,omitempty"`
		Default   string   `mapstructure:"default" yaml:"default,omitempty"`
		After     string   `mapstructure:"after" yaml:"after,omitempty"`
	}
	// InstallSpec is the declarative description of an installer and, optionally, the
	// uninstaller the installer writes out.
	InstallSpec struct {
		Install      []Screen
		Uninstall    []Screen
		HasUninstall bool
	}
)

// LoadSpec reads and parses an install spec file.
func LoadSpec(path string) (*InstallSpec, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read install spec %s", path)
	}
	return ParseSpec(path, content)
}

// ParseSpec parses an install spec document. The document must be a mapping with a
// non-empty "install" list, and every screen needs a type. source is only used in error
// messages.
func ParseSpec(source string, content []byte) (*InstallSpec, error) {
	doc := make(map[string]interface{})
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, configErrorf(source, "must be a mapping containing at least an '%s' key: %s", installKey, err)
	}
	rawInstall, ok := doc[installKey]
	if !ok {
		return nil, configErrorf(source, "must be a mapping containing at least an '%s' key", installKey)
	}
	spec := &InstallSpec{}
	var err error
	if spec.Install, err = decodeScreens(source, installKey, rawInstall); err != nil {
		return nil, err
	}
	if len(spec.Install) == 0 {
		return nil, configErrorf(source, "'%s' has no screens", installKey)
	}
	if rawUninstall, ok := doc[uninstallKey]; ok {
		spec.HasUninstall = true
		if spec.Uninstall, err = decodeScreens(source, uninstallKey, rawUninstall); err != nil {
			return nil, err
		}
	}
	return spec, nil
}

func decodeScreens(source, key string, raw interface{}) ([]Screen, error) {
	if raw == nil {
		return nil, nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, configErrorf(source, "'%s' must be a list of screens", key)
	}
	screens := make([]Screen, 0, len(list))
	for i, item := range list {
		screen, err := decodeScreen(item)
		if err != nil {
			return nil, configErrorf(source, "%s screen %d: %s", key, i+1, err)
		}
		if screen.Type == "" {
			return nil, configErrorf(source, "%s screen %d: must have a 'type' field", key, i+1)
		}
		screens = append(screens, screen)
	}
	return screens, nil
}

func decodeScreen(item interface{}) (screen Screen, err error) {
	if _, ok := item.(map[interface{}]interface{}); !ok {
		return screen, fmt.Errorf("must be a mapping, not %T", item)
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &screen,
	})
	if err != nil {
		return screen, err
	}
	err = decoder.Decode(item)
	return screen, err
}
