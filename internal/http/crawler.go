package httpx

import "regexp"

// crawlerPattern matches user agents of search engines, link previewers and common HTTP tooling
// whose visits are not counted as calls.
var crawlerPattern = regexp.MustCompile(`(?i)(bot\b|bot/|crawl|spider|slurp|scrape|preview|facebookexternalhit|` +
	`embedly|whatsapp|telegram|discord|skype|bingpreview|yandex|baidu|duckduckgo|headless|` +
	`lighthouse|pingdom|uptime|monitor|curl/|wget/|python-requests|go-http-client|okhttp|java/)`)

// IsCrawler reports whether userAgent belongs to an automated client.
func IsCrawler(userAgent string) bool {
	if userAgent == "" {
		return false
	}
	return crawlerPattern.MatchString(userAgent)
}
