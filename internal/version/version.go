package version

const (
	AppName        = "Herald"
	AppDescription = "Text command dispatch bot with localized commands and per-guild settings"
	AppVersion     = "0.1.0"
)
