package markdown

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Document struct {
	Title    string
	Content  string
	FilePath string
}

func ParseFile(filePath string) (*Document, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return &Document{
		FilePath: filePath,
		Content:  strings.Join(lines, "\n"),
		Title:    extractTitle(lines, filePath),
	}, nil
}

// extractTitle prefers the first level-one heading outside code blocks and
// falls back to the file name, e.g. "getting-started.md" -> "Getting Started".
func extractTitle(lines []string, filePath string) string {
	inCode := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "```") {
			inCode = !inCode
			continue
		}
		if !inCode && strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(line[2:])
		}
	}

	base := filepath.Base(filePath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	name = strings.Join(strings.FieldsFunc(name, func(r rune) bool { return r == '-' || r == '_' }), " ")
	return cases.Title(language.English).String(name)
}

// FindMarkdownFiles lists the .md files under dir, skipping any whose base
// name matches an exclude pattern.
func FindMarkdownFiles(dir string, exclude []string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}
		for _, pattern := range exclude {
			if matched, _ := filepath.Match(pattern, d.Name()); matched {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})

	return files, err
}

var (
	imagePattern = regexp.MustCompile(`!\[([^\]]*)\]\(([^)\s]+)(?:\s+"[^"]*")?\)`)
	linkPattern  = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)\)`)
)

// ConvertToConfluenceFormat renders markdown as Confluence storage format.
// Local images become attachment references by file name, so they resolve
// once the files are attached to the page.
func ConvertToConfluenceFormat(markdown string) string {
	c := &converter{}
	for _, line := range strings.Split(markdown, "\n") {
		c.line(line)
	}
	if c.inCode {
		c.flushCode()
	}
	c.closeLists()
	return strings.Join(c.out, "\n")
}

type converter struct {
	out []string

	inCode   bool
	codeLang string
	code     []string

	inUL, inOL bool
}

func (c *converter) line(line string) {
	trimmed := strings.TrimSpace(line)

	if strings.HasPrefix(trimmed, "```") {
		if c.inCode {
			c.flushCode()
		} else {
			c.closeLists()
			c.inCode = true
			c.codeLang = strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
			c.code = c.code[:0]
		}
		return
	}
	if c.inCode {
		c.code = append(c.code, line)
		return
	}

	if level, text, ok := heading(line); ok {
		c.closeLists()
		c.out = append(c.out, fmt.Sprintf("<h%d>%s</h%d>", level, convertInline(text), level))
		return
	}

	if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
		if c.inOL {
			c.out = append(c.out, "</ol>")
			c.inOL = false
		}
		if !c.inUL {
			c.out = append(c.out, "<ul>")
			c.inUL = true
		}
		c.out = append(c.out, "<li>"+convertInline(strings.TrimSpace(trimmed[2:]))+"</li>")
		return
	}

	if text, ok := orderedItem(trimmed); ok {
		if c.inUL {
			c.out = append(c.out, "</ul>")
			c.inUL = false
		}
		if !c.inOL {
			c.out = append(c.out, "<ol>")
			c.inOL = true
		}
		c.out = append(c.out, "<li>"+convertInline(text)+"</li>")
		return
	}

	c.closeLists()
	if trimmed == "" {
		c.out = append(c.out, "<p/>")
		return
	}
	c.out = append(c.out, "<p>"+convertInline(line)+"</p>")
}

func (c *converter) flushCode() {
	macro := `<ac:structured-macro ac:name="code" ac:schema-version="1">`
	if c.codeLang != "" {
		macro += fmt.Sprintf(`<ac:parameter ac:name="language">%s</ac:parameter>`, escapeHTML(c.codeLang))
	}
	body := strings.ReplaceAll(strings.Join(c.code, "\n"), "]]>", "]]]]><![CDATA[>")
	c.out = append(c.out, macro+"<ac:plain-text-body><![CDATA["+body+"]]></ac:plain-text-body></ac:structured-macro>")
	c.inCode = false
	c.codeLang = ""
}

func (c *converter) closeLists() {
	if c.inUL {
		c.out = append(c.out, "</ul>")
		c.inUL = false
	}
	if c.inOL {
		c.out = append(c.out, "</ol>")
		c.inOL = false
	}
}

func heading(line string) (int, string, bool) {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > 6 || level >= len(line) || line[level] != ' ' {
		return 0, "", false
	}
	return level, strings.TrimSpace(line[level+1:]), true
}

// orderedItem matches "1. text" through "999. text".
func orderedItem(trimmed string) (string, bool) {
	i := 0
	for i < len(trimmed) && i < 3 && trimmed[i] >= '0' && trimmed[i] <= '9' {
		i++
	}
	if i == 0 || !strings.HasPrefix(trimmed[i:], ". ") {
		return "", false
	}
	return strings.TrimSpace(trimmed[i+2:]), true
}

// convertInline escapes text and renders images, links, code spans, bold
// and italics. Code spans are rendered first so their contents stay literal.
func convertInline(text string) string {
	var b strings.Builder
	for {
		start := strings.IndexByte(text, '`')
		if start < 0 {
			break
		}
		end := strings.IndexByte(text[start+1:], '`')
		if end < 0 {
			break
		}
		end += start + 1
		b.WriteString(convertSpans(text[:start]))
		b.WriteString("<code>" + escapeHTML(text[start+1:end]) + "</code>")
		text = text[end+1:]
	}
	b.WriteString(convertSpans(text))
	return b.String()
}

func convertSpans(text string) string {
	var b strings.Builder
	for {
		loc := imagePattern.FindStringSubmatchIndex(text)
		if loc == nil {
			break
		}
		b.WriteString(convertLinks(text[:loc[0]]))
		b.WriteString(imageMacro(text[loc[2]:loc[3]], text[loc[4]:loc[5]]))
		text = text[loc[1]:]
	}
	b.WriteString(convertLinks(text))
	return b.String()
}

func convertLinks(text string) string {
	var b strings.Builder
	for {
		loc := linkPattern.FindStringSubmatchIndex(text)
		if loc == nil {
			break
		}
		b.WriteString(convertEmphasis(escapeHTML(text[:loc[0]])))
		b.WriteString(fmt.Sprintf(`<a href="%s">%s</a>`,
			escapeHTML(text[loc[4]:loc[5]]), convertEmphasis(escapeHTML(text[loc[2]:loc[3]]))))
		text = text[loc[1]:]
	}
	b.WriteString(convertEmphasis(escapeHTML(text)))
	return b.String()
}

func imageMacro(alt, src string) string {
	altAttr := ""
	if alt != "" {
		altAttr = fmt.Sprintf(` ac:alt="%s"`, escapeHTML(alt))
	}
	lower := strings.ToLower(src)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return fmt.Sprintf(`<ac:image%s><ri:url ri:value="%s"/></ac:image>`, altAttr, escapeHTML(src))
	}
	return fmt.Sprintf(`<ac:image%s><ri:attachment ri:filename="%s"/></ac:image>`, altAttr, escapeHTML(filepath.Base(src)))
}

// convertEmphasis works on already escaped text.
func convertEmphasis(text string) string {
	text = wrapPairs(text, "**", "strong")
	text = wrapPairs(text, "__", "strong")
	text = wrapPairs(text, "*", "em")
	return text
}

func wrapPairs(text, marker, tag string) string {
	for {
		first := strings.Index(text, marker)
		if first < 0 {
			return text
		}
		second := strings.Index(text[first+len(marker):], marker)
		if second <= 0 {
			return text
		}
		second += first + len(marker)
		text = text[:first] + "<" + tag + ">" + text[first+len(marker):second] + "</" + tag + ">" + text[second+len(marker):]
	}
}

func escapeHTML(text string) string {
	text = strings.ReplaceAll(text, "&", "&amp;")
	text = strings.ReplaceAll(text, "<", "&lt;")
	text = strings.ReplaceAll(text, ">", "&gt;")
	text = strings.ReplaceAll(text, "\"", "&quot;")
	text = strings.ReplaceAll(text, "'", "&#39;")
	return text
}
