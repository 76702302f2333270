package dialog

import "fmt"

// User-facing texts. Markdown v1 where sent with Reply.Markdown.
const (
	TextUsage         = "Please provide a valid date in YYYY-MM-DD format or use 'today'/'tomorrow'."
	TextNoEvents      = "No events found for that date."
	TextNoMatches     = "No matching events found."
	TextSearchPrompt  = "🔍 Please enter the event name or club:"
	TextSearchCancel  = "Search cancelled."
	textWelcomeFormat = "👋 Welcome! Use /events YYYY-MM-DD to get %[1]s events for a date. Try /events today.\n\n" +
		"/browse opens a day view you can page through, and /search finds an event or club by name."
)

const (
	btnPrev   = "⬅️ Previous Day"
	btnToday  = "📅 Today"
	btnNext   = "➡️ Next Day"
	btnSearch = "🔍 Search"
	btnCancel = "❌ Cancel"
	btnBack   = "↩️ Back to day"
)

func welcomeText(area string) string {
	return fmt.Sprintf(textWelcomeFormat, area)
}

func ackText(day, area string) string {
	return fmt.Sprintf("Searching events for *%s* in %s…", day, area)
}

func headerText(day, area string) string {
	return fmt.Sprintf("🎉 Events for %s in %s:", day, area)
}

func resultsHeader(query, day string) string {
	return fmt.Sprintf("🔎 Results for '%s' on %s:", query, day)
}
