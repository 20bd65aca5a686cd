package entities

import "encoding/json"

// Setting is one record of the open-ended settings partition. Value is kept
// as raw JSON so that zero values (0, false, "") round-trip exactly and
// absence stays distinguishable from any stored value.
type Setting struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// Settings keys used by the application. Absence of a key means "use the
// configured default", never an error.
const (
	SettingTheme       = "theme"
	SettingLanguage    = "language"
	SettingCustomIcons = "customIcons"
	SettingShowSources = "showSources"
	SettingUseProducts = "considerProducts"
)
