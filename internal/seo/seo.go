package seo

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-folio/internal/store"
)

const schemaContext = "https://schema.org"

// PageMeta holds the head metadata for a rendered page, including the Open
// Graph projection of the same values.
type PageMeta struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Canonical   string `json:"canonical,omitempty"`
	OGTitle     string `json:"ogTitle,omitempty"`
	OGType      string `json:"ogType,omitempty"`
	OGImage     string `json:"ogImage,omitempty"`
	OGURL       string `json:"ogUrl,omitempty"`
}

// Site carries the site-wide values metadata builders need.
type Site struct {
	Name    string
	BaseURL string
}

// URL joins a path onto the site base.
func (s Site) URL(path string) string {
	base := strings.TrimRight(s.BaseURL, "/")
	if path == "" || path == "/" {
		return base
	}
	return base + "/" + strings.TrimLeft(path, "/")
}

// PageMetaFor builds metadata for a static page.
func (s Site) PageMetaFor(title, description, path string) PageMeta {
	fullTitle := title
	if s.Name != "" && title != s.Name {
		fullTitle = fmt.Sprintf("%s | %s", title, s.Name)
	}
	url := s.URL(path)
	return PageMeta{
		Title:       fullTitle,
		Description: description,
		Canonical:   url,
		OGTitle:     fullTitle,
		OGType:      "website",
		OGURL:       url,
	}
}

// BlogMetaFor builds metadata for a blog post record.
func (s Site) BlogMetaFor(post store.Record) PageMeta {
	title, _ := post["title"].(string)
	excerpt, _ := post["excerpt"].(string)
	slug, _ := post["slug"].(string)
	cover, _ := post["coverImage"].(string)

	meta := s.PageMetaFor(title, excerpt, "/blog/"+slug)
	meta.OGType = "article"
	meta.OGImage = cover
	return meta
}

// Person describes the site owner for profile structured data.
type Person struct {
	Name      string
	JobTitle  string
	Email     string
	SameAs    []string
	ImageURL  string
	Biography string
}

// PersonJSONLD renders schema.org Person structured data.
func (s Site) PersonJSONLD(p Person) ([]byte, error) {
	doc := map[string]any{
		"@context": schemaContext,
		"@type":    "Person",
		"name":     p.Name,
		"url":      s.URL("/"),
	}
	if p.JobTitle != "" {
		doc["jobTitle"] = p.JobTitle
	}
	if p.Email != "" {
		doc["email"] = "mailto:" + p.Email
	}
	if p.ImageURL != "" {
		doc["image"] = p.ImageURL
	}
	if p.Biography != "" {
		doc["description"] = p.Biography
	}
	if len(p.SameAs) > 0 {
		doc["sameAs"] = p.SameAs
	}
	return json.Marshal(doc)
}

// BlogPostingJSONLD renders schema.org BlogPosting structured data from a
// blog record.
func (s Site) BlogPostingJSONLD(post store.Record, author Person) ([]byte, error) {
	title, _ := post["title"].(string)
	excerpt, _ := post["excerpt"].(string)
	slug, _ := post["slug"].(string)
	cover, _ := post["coverImage"].(string)

	doc := map[string]any{
		"@context": schemaContext,
		"@type":    "BlogPosting",
		"headline": title,
		"url":      s.URL("/blog/" + slug),
		"author": map[string]any{
			"@type": "Person",
			"name":  author.Name,
		},
	}
	if excerpt != "" {
		doc["description"] = excerpt
	}
	if cover != "" {
		doc["image"] = cover
	}
	if created, ok := post.CreatedAt(); ok {
		doc["datePublished"] = created.Format("2006-01-02")
	}
	if updated, ok := post.UpdatedAt(); ok {
		doc["dateModified"] = updated.Format("2006-01-02")
	}
	return json.Marshal(doc)
}
