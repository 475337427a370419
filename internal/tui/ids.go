package tui

// Page IDs, also used as registry action targets.
const (
	PageGeneral  = "general"
	PageGithub   = "github_zip"
	PageCapture  = "capture"
	PagePreview  = "preview"
	PageCoding   = "coding"
	PageTimers   = "timers"
	PageHistory  = "history"
	PageSettings = "settings"
	PageFAQ      = "faq"
)
