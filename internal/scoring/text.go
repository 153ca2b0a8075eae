package scoring

import (
	"regexp"
	"strings"
)

var (
	numberedBullet = regexp.MustCompile(`^\d+\.`)
	bulletPrefix   = regexp.MustCompile(`^[-•*\d.\s]+`)
)

// ExtractBulletPoints collects the bullet lines that follow the first line
// mentioning keyword, stopping at the first blank line after it. Dash, dot,
// "* " and "N." bullets are recognized; bold headings are not bullets.
func ExtractBulletPoints(text, keyword string) []string {
	keyword = strings.ToLower(keyword)
	bullets := []string{}
	inSection := false

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.Contains(strings.ToLower(line), keyword) {
			inSection = true
			continue
		}
		if !inSection {
			continue
		}
		trimmed := strings.TrimLeft(line, " \t")
		switch {
		case isBullet(trimmed):
			if item := strings.TrimSpace(bulletPrefix.ReplaceAllString(trimmed, "")); item != "" {
				bullets = append(bullets, item)
			}
		case strings.TrimSpace(line) == "":
			return bullets
		}
	}
	return bullets
}

func isBullet(line string) bool {
	return strings.HasPrefix(line, "-") ||
		strings.HasPrefix(line, "•") ||
		strings.HasPrefix(line, "* ") ||
		numberedBullet.MatchString(line)
}

// RelatedTopicKeywords are the knowledge-base topics surfaced with answers.
var RelatedTopicKeywords = []string{
	"clinical trial",
	"FDA",
	"formulary",
	"prior authorization",
	"value-based care",
	"outcomes",
	"efficacy",
	"safety",
}

const maxRelatedTopics = 5

// ExtractRelatedTopics returns up to five topic keywords mentioned in text,
// in keyword order.
func ExtractRelatedTopics(text string) []string {
	lower := strings.ToLower(text)
	topics := []string{}
	for _, kw := range RelatedTopicKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			topics = append(topics, kw)
			if len(topics) == maxRelatedTopics {
				break
			}
		}
	}
	return topics
}
