//go:build windows

package platform

import (
	"os/exec"
	"strings"
)

// Notify shows a toast through PowerShell and the WinRT notification manager.
func Notify(title, body string, opts Options) error {
	return exec.Command("powershell.exe", "-NoProfile", "-NonInteractive", "-Command", toastScript(title, body, opts)).Run()
}

func toastScript(title, body string, opts Options) string {
	kind := "ToastText02"
	icon := strings.TrimSpace(opts.IconPath)
	if icon != "" {
		kind = "ToastImageAndText02"
	}
	lines := []string{
		"[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType=WindowsRuntime] > $null",
		"$xml = [Windows.UI.Notifications.ToastNotificationManager]::GetTemplateContent([Windows.UI.Notifications.ToastTemplateType]::" + kind + ")",
		"$text = $xml.GetElementsByTagName('text')",
		"$text.Item(0).AppendChild($xml.CreateTextNode(" + psString(title) + ")) > $null",
		"$text.Item(1).AppendChild($xml.CreateTextNode(" + psString(body) + ")) > $null",
	}
	if icon != "" {
		lines = append(lines, "$xml.GetElementsByTagName('image').Item(0).SetAttribute('src', "+psString(icon)+")")
	}
	lines = append(lines,
		"$toast = [Windows.UI.Notifications.ToastNotification]::new($xml)",
		"[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier("+psString(AppName)+").Show($toast)",
	)
	return strings.Join(lines, "; ")
}

// psString quotes s as a single-quoted PowerShell literal.
func psString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
