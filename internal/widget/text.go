package widget

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// TruncateAt is the number of characters shown before a long text collapses
// behind a toggle.
const TruncateAt = 100

// Card is one rendered row, independent of the collection it came from.
type Card struct {
	ID       string
	Order    int
	Title    string
	Subtitle string
	Badge    string
	ImageURL string
	LinkURL  string
	LinkText string
	Body     Text
}

// Text is rich content reduced to plain paragraphs. Markup in the source is
// never passed through.
type Text struct {
	Paragraphs []string
	Preview    string
}

func (t Text) Truncated() bool {
	return t.Preview != ""
}

func (t Text) Empty() bool {
	return len(t.Paragraphs) == 0
}

var blankLine = regexp.MustCompile(`\n\s*\n`)

var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "section": true, "article": true, "tr": true,
}

// ParseText splits s into paragraphs. Block-level tags and blank lines start
// a new paragraph; script and style bodies are dropped along with all other
// markup.
func ParseText(s string) Text {
	var (
		paras []string
		cur   strings.Builder
		skip  string
	)

	flush := func() {
		if p := strings.Join(strings.Fields(cur.String()), " "); p != "" {
			paras = append(paras, p)
		}
		cur.Reset()
	}

	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			flush()
			return newText(paras)
		case html.TextToken:
			if skip != "" {
				continue
			}
			for i, part := range blankLine.Split(string(z.Text()), -1) {
				if i > 0 {
					flush()
				}
				cur.WriteString(part)
			}
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			switch {
			case tt == html.StartTagToken && (tag == "script" || tag == "style"):
				skip = tag
			case tt == html.EndTagToken && tag == skip:
				skip = ""
			case blockTags[tag]:
				flush()
			}
		}
	}
}

func newText(paras []string) Text {
	t := Text{Paragraphs: paras}
	full := strings.Join(paras, " ")
	if utf8.RuneCountInString(full) > TruncateAt {
		t.Preview = truncate(full, TruncateAt)
	}
	return t
}

// truncate cuts s to at most n runes, trimming trailing spaces.
func truncate(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return strings.TrimRight(s[:i], " ")
		}
		count++
	}
	return s
}
