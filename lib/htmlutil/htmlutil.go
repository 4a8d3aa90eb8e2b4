package htmlutil

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText strips non printable characters, surrounding whitespace and
// inner runs of whitespace.
func CleanText(s string) string {
	s = removeNonPrintable(s)
	s = strings.Trim(s, " \t\n")
	return innerWhitespace.ReplaceAllString(s, " ")
}

// FirstChildText returns the cleaned text of the first child of the first node in the
// selection, descending into it when that child is an element. Sibling elements such as
// badges or abbreviations that follow the leading text are ignored.
func FirstChildText(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	first := sel.Nodes[0].FirstChild
	for first != nil && first.Type == html.CommentNode {
		first = first.NextSibling
	}
	if first == nil {
		return ""
	}
	return CleanText(GetText(first))
}

// ResolveURL resolves a possibly relative reference found in a page against the page url.
func ResolveURL(page *url.URL, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	link, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	if page == nil {
		return link.String(), nil
	}
	return page.ResolveReference(link).String(), nil
}
