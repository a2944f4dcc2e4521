package ui

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	markdown "github.com/MichaelMure/go-term-markdown"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"

	"cloudguide/config"
	appmodel "cloudguide/model"
)

// Pre-compiled regex patterns for better performance
var (
	inlineCodeRegex = regexp.MustCompile(`(?s)\x1b\[44;3m(.*?)\x1b\[0m`)
	mdLinkRegex     = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\)]+)\)`)
	urlRegex        = regexp.MustCompile(`(https?://[^\s]+)`)
)

type renderCache struct {
	width    int
	rendered map[int]string
}

func newRenderCache() *renderCache {
	return &renderCache{rendered: make(map[int]string)}
}

// get returns the cached rendering for message idx, dropping the cache when
// the width it was rendered at no longer matches.
func (c *renderCache) get(idx, width int) (string, bool) {
	if c.width != width {
		c.width = width
		c.rendered = make(map[int]string)
		return "", false
	}
	s, ok := c.rendered[idx]
	return s, ok
}

func (c *renderCache) put(idx int, s string) {
	c.rendered[idx] = s
}

func (a *AppView) updateViewportContent(gotoBottom bool) {
	messages := a.dataModel.Conversation.All()
	awaiting := a.dataModel.AwaitingReply()

	a.messageOffsets = a.messageOffsets[:0]

	if len(messages) == 0 && !awaiting {
		a.viewport.SetContent(DimStyle.Render("No messages yet. Ask CloudGuide anything!"))
		return
	}

	var content strings.Builder
	lines := 0

	for i, msg := range messages {
		a.messageOffsets = append(a.messageOffsets, lines)

		block := a.renderMessage(i, msg)
		content.WriteString(block)
		lines += strings.Count(block, "\n")
	}

	if awaiting {
		timestamp := DimStyle.Render(time.Now().Format("[15:04]"))
		role := AssistantStyle.Render("Assistant")
		content.WriteString(fmt.Sprintf("%s %s\n%s %s\n\n", timestamp, role, a.loadingSpinner.View(), DimStyle.Render("Thinking...")))
	}

	a.viewport.SetContent(content.String())
	if gotoBottom {
		a.viewport.GotoBottom()
	}
}

func (a *AppView) renderMessage(idx int, msg appmodel.Message) string {
	timestamp := DimStyle.Render(msg.Timestamp.Format("[15:04]"))

	if msg.Role == appmodel.RoleUser {
		return formatUserMessage(timestamp, UserStyle.Render("You"), msg.Text)
	}

	rendered, ok := a.renderCache.get(idx, a.width)
	if !ok {
		rendered = renderMarkdown(msg.Text, a.width)
		a.renderCache.put(idx, rendered)
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s %s\n%s\n", timestamp, AssistantStyle.Render("Assistant"), strings.TrimRight(rendered, "\n")))
	if caption := formatSourceCaption(msg.Source); caption != "" {
		b.WriteString(caption + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

// formatSourceCaption renders the attribution line shown under an answer
func formatSourceCaption(source string) string {
	if source == "" {
		return ""
	}
	return DimStyle.Render("Source: " + source)
}

func formatUserMessage(timestamp, role, content string) string {
	greenBold := "\x1b[32;1m"
	reset := "\x1b[0m"
	bar := greenBold + "┃" + reset

	lines := strings.Split(content, "\n")

	var result strings.Builder
	result.WriteString(fmt.Sprintf("%s %s %s\n", bar, timestamp, role))

	for _, line := range lines {
		result.WriteString(fmt.Sprintf("%s %s\n", bar, line))
	}

	result.WriteString("\n")

	return result.String()
}

// renderMarkdown turns assistant text into terminal output wrapped to width
func renderMarkdown(content string, width int) string {
	if width < 20 {
		width = 80
	}

	startTime := time.Now()

	// [text](url) becomes a plain url that is colored below
	content = mdLinkRegex.ReplaceAllString(content, "$2")

	// Autolink stays off so the terminal handles URL detection
	customExt := markdown.Extensions() &^ parser.Autolink
	p := parser.NewWithExtensions(customExt)
	r := markdown.NewRenderer(width-4, 0)
	doc := p.Parse([]byte(content))
	rendered := gomarkdown.Render(doc, r)

	processed := postProcessMarkdown(string(rendered), width)

	config.DebugLog.Debugf("[AppView] Markdown rendered (%d chars) in %v", len(content), time.Since(startTime))

	return processed
}

func postProcessMarkdown(rendered string, width int) string {
	// Inline code: blue background becomes red text
	rendered = fixInlineCode(rendered)

	rendered = colorURLs(rendered)

	return frameCodeBlocks(rendered, width)
}

func fixInlineCode(s string) string {
	return inlineCodeRegex.ReplaceAllString(s, "\x1b[31m$1\x1b[0m")
}

func colorURLs(s string) string {
	redColor := "\x1b[31m"
	reset := "\x1b[0m"

	lines := strings.Split(s, "\n")

	for i, line := range lines {
		// Skip code blocks (┃ prefix from the renderer)
		if !strings.Contains(line, "┃") {
			lines[i] = urlRegex.ReplaceAllString(line, redColor+"$1"+reset)
		}
	}

	return strings.Join(lines, "\n")
}

func frameCodeBlocks(s string, width int) string {
	lines := strings.Split(s, "\n")
	var result []string
	var codeBlockLines []string
	inCodeBlock := false

	darkGray := "\x1b[90m"
	reset := "\x1b[0m"

	ruleWidth := width - 4
	if ruleWidth < 8 {
		ruleWidth = 8
	}

	closeBlock := func() {
		result = append(result, codeBlockLines...)
		result = append(result, "")
		result = append(result, darkGray+strings.Repeat("━", ruleWidth)+reset)
		result = append(result, "")
		codeBlockLines = nil
		inCodeBlock = false
	}

	for _, line := range lines {
		if strings.Contains(line, "┃") {
			if !inCodeBlock {
				inCodeBlock = true
				codeBlockLines = []string{}
				result = append(result, "")

				label := "[code]"
				leftLen := (ruleWidth - len(label)) / 2
				rightLen := ruleWidth - len(label) - leftLen
				border := darkGray + strings.Repeat("━", leftLen) + reset + label + darkGray + strings.Repeat("━", rightLen) + reset

				result = append(result, border)
				result = append(result, "")
			}

			codeBlockLines = append(codeBlockLines, stripCodeBlockPrefix(line))
			continue
		}

		if inCodeBlock {
			closeBlock()
		}
		result = append(result, line)
	}

	if inCodeBlock && len(codeBlockLines) > 0 {
		closeBlock()
	}

	return strings.Join(result, "\n")
}

func stripCodeBlockPrefix(line string) string {
	idx := strings.Index(line, "┃")
	if idx < 0 {
		return line
	}
	after := idx + len("┃")
	if after < len(line) && line[after] == ' ' {
		after++
	}
	if after < len(line) {
		return line[after:]
	}
	return ""
}
