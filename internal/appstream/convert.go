package appstream

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/quantmind-br/appcenter/internal/core"
)

// FromTree converts a parsed markup tree into a Collection. The root must be
// either <components> or a single <component>.
func FromTree(root *xmlquery.Node) (*Collection, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: nil tree", core.ErrMetadataConversionFailed)
	}

	var (
		coll  Collection
		nodes []*xmlquery.Node
	)

	switch root.Data {
	case "components":
		coll.Version = root.SelectAttr("version")
		coll.Origin = root.SelectAttr("origin")
		coll.Architecture = root.SelectAttr("architecture")
		nodes = root.SelectElements("component")
	case "component":
		nodes = []*xmlquery.Node{root}
	default:
		return nil, fmt.Errorf("%w: unexpected root element <%s>", core.ErrMetadataConversionFailed, root.Data)
	}

	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: no components", core.ErrMetadataConversionFailed)
	}

	coll.Components = make([]Component, 0, len(nodes))
	for i, n := range nodes {
		comp, err := convertComponent(n)
		if err != nil {
			return nil, fmt.Errorf("%w: component %d: %w", core.ErrMetadataConversionFailed, i, err)
		}
		coll.Components = append(coll.Components, comp)
	}

	return &coll, nil
}

func convertComponent(n *xmlquery.Node) (Component, error) {
	comp := Component{
		Type:            n.SelectAttr("type"),
		ID:              text(n.SelectElement("id")),
		Name:            untranslated(n, "name"),
		Summary:         untranslated(n, "summary"),
		DeveloperName:   untranslated(n, "developer_name"),
		ProjectLicense:  text(n.SelectElement("project_license")),
		MetadataLicense: text(n.SelectElement("metadata_license")),
	}
	if comp.ID == "" {
		return Component{}, errMissingID
	}
	if comp.Type == "" {
		comp.Type = "generic"
	}
	if comp.DeveloperName == "" {
		if dev := n.SelectElement("developer"); dev != nil {
			comp.DeveloperName = untranslated(dev, "name")
		}
	}

	if desc := untranslatedNode(n, "description"); desc != nil {
		comp.Description = DescriptionText(desc)
		comp.DescriptionHTML = DescriptionHTML(desc)
	}

	for _, icon := range n.SelectElements("icon") {
		comp.Icons = append(comp.Icons, Icon{
			Type:   icon.SelectAttr("type"),
			Value:  text(icon),
			Width:  atoi(icon.SelectAttr("width")),
			Height: atoi(icon.SelectAttr("height")),
		})
	}

	comp.Categories = childTexts(n.SelectElement("categories"), "category")
	comp.Keywords = childTexts(n.SelectElement("keywords"), "keyword")

	for _, u := range n.SelectElements("url") {
		comp.URLs = append(comp.URLs, URL{Type: u.SelectAttr("type"), Value: text(u)})
	}

	if shots := n.SelectElement("screenshots"); shots != nil {
		for _, s := range shots.SelectElements("screenshot") {
			comp.Screenshots = append(comp.Screenshots, convertScreenshot(s))
		}
	}

	if releases := n.SelectElement("releases"); releases != nil {
		for _, r := range releases.SelectElements("release") {
			rel := Release{
				Version: r.SelectAttr("version"),
				Date:    r.SelectAttr("date"),
			}
			if ts := r.SelectAttr("timestamp"); ts != "" {
				rel.Timestamp, _ = strconv.ParseInt(ts, 10, 64)
			}
			if desc := untranslatedNode(r, "description"); desc != nil {
				rel.Description = DescriptionText(desc)
			}
			comp.Releases = append(comp.Releases, rel)
		}
	}

	for _, l := range n.SelectElements("launchable") {
		comp.Launchables = append(comp.Launchables, Launchable{Type: l.SelectAttr("type"), Value: text(l)})
	}

	if rating := n.SelectElement("content_rating"); rating != nil {
		for _, attr := range rating.SelectElements("content_attribute") {
			if comp.ContentRating == nil {
				comp.ContentRating = make(map[string]string)
			}
			comp.ContentRating[attr.SelectAttr("id")] = text(attr)
		}
	}

	return comp, nil
}

var errMissingID = errors.New("missing <id>")

func convertScreenshot(n *xmlquery.Node) Screenshot {
	shot := Screenshot{
		Default: n.SelectAttr("type") == "default",
		Caption: untranslated(n, "caption"),
	}
	for _, img := range n.SelectElements("image") {
		imgType := img.SelectAttr("type")
		if imgType == "" {
			imgType = "source"
		}
		shot.Images = append(shot.Images, Image{
			Type:   imgType,
			URL:    text(img),
			Width:  atoi(img.SelectAttr("width")),
			Height: atoi(img.SelectAttr("height")),
		})
	}
	return shot
}

// isLocalized reports whether n carries an xml:lang attribute
func isLocalized(n *xmlquery.Node) bool {
	for _, a := range n.Attr {
		if a.Name.Local == "lang" {
			return true
		}
	}
	return false
}

func untranslatedNode(n *xmlquery.Node, name string) *xmlquery.Node {
	for _, child := range n.SelectElements(name) {
		if !isLocalized(child) {
			return child
		}
	}
	return nil
}

func untranslated(n *xmlquery.Node, name string) string {
	return text(untranslatedNode(n, name))
}

func childTexts(n *xmlquery.Node, name string) []string {
	if n == nil {
		return nil
	}
	var out []string
	for _, child := range n.SelectElements(name) {
		if isLocalized(child) {
			continue
		}
		if v := text(child); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func text(n *xmlquery.Node) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.InnerText())
}

func atoi(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}
