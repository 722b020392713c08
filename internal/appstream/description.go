package appstream

import (
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/microcosm-cc/bluemonday"
)

// descriptionPolicy keeps the subset of markup AppStream allows in
// descriptions. Everything else, including attributes, is stripped.
var descriptionPolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "ul", "ol", "li", "em", "code")
	return p
}()

// DescriptionText renders a <description> element as plain text: one block
// per paragraph, list items prefixed with a bullet.
func DescriptionText(desc *xmlquery.Node) string {
	if desc == nil {
		return ""
	}

	var blocks []string
	for n := desc.FirstChild; n != nil; n = n.NextSibling {
		if n.Type != xmlquery.ElementNode || isLocalized(n) {
			continue
		}
		switch n.Data {
		case "p":
			if t := collapse(n.InnerText()); t != "" {
				blocks = append(blocks, t)
			}
		case "ul", "ol":
			var items []string
			for _, li := range n.SelectElements("li") {
				if isLocalized(li) {
					continue
				}
				marker := "•"
				if n.Data == "ol" {
					marker = strconv.Itoa(len(items)+1) + "."
				}
				items = append(items, marker+" "+collapse(li.InnerText()))
			}
			if len(items) > 0 {
				blocks = append(blocks, strings.Join(items, "\n"))
			}
		}
	}

	if len(blocks) == 0 {
		return collapse(desc.InnerText())
	}
	return strings.Join(blocks, "\n\n")
}

// DescriptionHTML returns the untranslated description markup, sanitized so
// it can be handed to a rich text renderer.
func DescriptionHTML(desc *xmlquery.Node) string {
	if desc == nil {
		return ""
	}

	var b strings.Builder
	for n := desc.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xmlquery.ElementNode && isLocalized(n) {
			continue
		}
		b.WriteString(n.OutputXML(true))
	}
	return strings.TrimSpace(descriptionPolicy.Sanitize(b.String()))
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
