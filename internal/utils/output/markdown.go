package output

import (
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
)

// TableMarkdown converts a source table excerpt into a GitHub-flavored
// Markdown table, so its column layout can be compared with the configured
// column spec.
func TableMarkdown(tableHTML string) (string, error) {
	cleaned, err := CleanHTML(tableHTML)
	if err != nil {
		return "", err
	}

	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	out, err := converter.ConvertString(cleaned)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
