//go:build darwin

package capture

const frontWindowScript = `tell application "System Events"
	set frontApp to first application process whose frontmost is true
	set appName to name of frontApp
	try
		set winName to name of front window of frontApp
	on error
		set winName to ""
	end try
end tell
return appName & " " & winName`

// NewPlatformProbe returns a foreground probe that asks System Events for the
// frontmost application and window name.
func NewPlatformProbe() ForegroundProbe {
	return commandProbe{
		name: "osascript",
		args: []string{"-e", frontWindowScript},
	}
}
