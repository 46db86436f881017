package models

// Settings keys stored in the settings document.
const (
	SettingDeadlineTime = "deadline_time"
)

// SettingsDocument is the full set of service settings as key/value pairs.
type SettingsDocument map[string]string

// DefaultSettings returns the settings applied when a key has never been
// configured.
func DefaultSettings() SettingsDocument {
	return SettingsDocument{
		SettingDeadlineTime: "11:00",
	}
}

// MergedWithDefaults returns a copy of the document where every missing
// key is filled in from the defaults.
func (d SettingsDocument) MergedWithDefaults() SettingsDocument {
	out := DefaultSettings()
	for k, v := range d {
		out[k] = v
	}
	return out
}
