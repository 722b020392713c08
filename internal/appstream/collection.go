// Package appstream turns AppStream metadata blobs into structured collections.
//
// A Collection is built once by Load and never modified afterwards, so a
// single *Collection can be handed to any number of readers.
package appstream

import "strings"

// Collection is a parsed AppStream document
type Collection struct {
	Version      string      `json:"version,omitempty"`
	Origin       string      `json:"origin,omitempty"`
	Architecture string      `json:"architecture,omitempty"`
	Components   []Component `json:"components"`
}

// Component describes one software component of a collection
type Component struct {
	Type            string            `json:"type"`
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Summary         string            `json:"summary"`
	Description     string            `json:"description,omitempty"`
	DescriptionHTML string            `json:"description_html,omitempty"`
	DeveloperName   string            `json:"developer_name,omitempty"`
	ProjectLicense  string            `json:"project_license,omitempty"`
	MetadataLicense string            `json:"metadata_license,omitempty"`
	Icons           []Icon            `json:"icons,omitempty"`
	Categories      []string          `json:"categories,omitempty"`
	Keywords        []string          `json:"keywords,omitempty"`
	URLs            []URL             `json:"urls,omitempty"`
	Screenshots     []Screenshot      `json:"screenshots,omitempty"`
	Releases        []Release         `json:"releases,omitempty"`
	Launchables     []Launchable      `json:"launchables,omitempty"`
	ContentRating   map[string]string `json:"content_rating,omitempty"`
}

// Icon is an icon reference inside a component
type Icon struct {
	Type   string `json:"type"`
	Value  string `json:"value"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// URL is a typed link such as homepage or bugtracker
type URL struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Screenshot groups the images of one screenshot
type Screenshot struct {
	Default bool    `json:"default,omitempty"`
	Caption string  `json:"caption,omitempty"`
	Images  []Image `json:"images,omitempty"`
}

// Image is one rendition of a screenshot
type Image struct {
	Type   string `json:"type"`
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Release is a version entry from the component release history
type Release struct {
	Version     string `json:"version"`
	Date        string `json:"date,omitempty"`
	Timestamp   int64  `json:"timestamp,omitempty"`
	Description string `json:"description,omitempty"`
}

// Launchable points at the entry used to start the component
type Launchable struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Len returns the number of components
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Components)
}

// Find returns the component with the given id. Legacy ids carrying a
// ".desktop" suffix match as well.
func (c *Collection) Find(id string) *Component {
	if c == nil {
		return nil
	}
	for i := range c.Components {
		cid := c.Components[i].ID
		if cid == id || strings.TrimSuffix(cid, ".desktop") == id {
			return &c.Components[i]
		}
	}
	return nil
}

// URL returns the link of the given type, or ""
func (c *Component) URL(urlType string) string {
	for _, u := range c.URLs {
		if u.Type == urlType {
			return u.Value
		}
	}
	return ""
}

// LatestRelease returns the first release entry. AppStream lists releases
// newest first.
func (c *Component) LatestRelease() *Release {
	if len(c.Releases) == 0 {
		return nil
	}
	return &c.Releases[0]
}

// DefaultScreenshot returns the screenshot flagged as default, falling back
// to the first one
func (c *Component) DefaultScreenshot() *Screenshot {
	for i := range c.Screenshots {
		if c.Screenshots[i].Default {
			return &c.Screenshots[i]
		}
	}
	if len(c.Screenshots) > 0 {
		return &c.Screenshots[0]
	}
	return nil
}
