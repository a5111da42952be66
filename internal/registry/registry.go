package registry

import "github.com/goliatone/go-folio/internal/store"

// Collection names understood by the content registry. The store itself is
// schema-less; these constants exist so call sites never scatter string
// literals.
const (
	CollectionProfile      = "profile"
	CollectionEducation    = "education"
	CollectionSkills       = "skills"
	CollectionProjects     = "projects"
	CollectionStartups     = "startups"
	CollectionExperience   = "experience"
	CollectionMedia        = "media"
	CollectionForms        = "forms"
	CollectionBlogs        = "blogs"
	CollectionResume       = "resume"
	CollectionTestimonials = "testimonials"
	CollectionNewsletter   = "newsletter"
	CollectionAdmin        = "admin"
	CollectionAnalytics    = "analytics"
	CollectionSEO          = "seo"
)

// Collections lists every registered collection name.
func Collections() []string {
	return []string{
		CollectionProfile,
		CollectionEducation,
		CollectionSkills,
		CollectionProjects,
		CollectionStartups,
		CollectionExperience,
		CollectionMedia,
		CollectionForms,
		CollectionBlogs,
		CollectionResume,
		CollectionTestimonials,
		CollectionNewsletter,
		CollectionAdmin,
		CollectionAnalytics,
		CollectionSEO,
	}
}

// IsKnown reports whether the collection name is registered.
func IsKnown(collection string) bool {
	_, ok := defaultShapes[collection]
	return ok
}

// DefaultShape returns the template used to pre-populate a new record form
// for the collection: every field present with its empty value. It is
// documentation, not enforcement. Unknown collection names yield an empty
// map, matching the permissiveness of the store itself.
func DefaultShape(collection string) store.Fields {
	shape, ok := defaultShapes[collection]
	if !ok {
		return store.Fields{}
	}
	return store.CloneFields(shape)
}

var defaultShapes = map[string]store.Fields{
	CollectionProfile: {
		"name":     "",
		"headline": "",
		"bio":      "",
		"avatar":   "",
		"location": "",
		"email":    "",
		"socials":  map[string]any{},
	},
	CollectionEducation: {
		"institution": "",
		"degree":      "",
		"field":       "",
		"startYear":   0,
		"endYear":     0,
		"description": "",
		"order":       0,
	},
	CollectionSkills: {
		"name":     "",
		"category": "",
		"level":    0,
		"icon":     "",
		"order":    0,
	},
	CollectionProjects: {
		"title":       "",
		"description": "",
		"coverImage":  "",
		"tags":        []any{},
		"liveUrl":     "",
		"repoUrl":     "",
		"featured":    false,
		"order":       0,
	},
	CollectionStartups: {
		"name":        "",
		"role":        "",
		"description": "",
		"logo":        "",
		"url":         "",
		"status":      "",
		"order":       0,
	},
	CollectionExperience: {
		"company":     "",
		"title":       "",
		"location":    "",
		"startDate":   "",
		"endDate":     "",
		"current":     false,
		"description": "",
		"order":       0,
	},
	CollectionMedia: {
		"name": "",
		"url":  "",
		"path": "",
		"kind": "",
		"size": 0,
	},
	CollectionForms: {
		"name":    "",
		"email":   "",
		"subject": "",
		"message": "",
		"read":    false,
	},
	CollectionBlogs: {
		"title":       "",
		"slug":        "",
		"content":     "",
		"contentRaw":  "",
		"excerpt":     "",
		"coverImage":  "",
		"tags":        []any{},
		"published":   false,
		"readingTime": 0,
		"order":       0,
	},
	CollectionResume: {
		"label":    "",
		"fileUrl":  "",
		"filePath": "",
		"fileSize": 0,
		"isActive": false,
	},
	CollectionTestimonials: {
		"author":  "",
		"role":    "",
		"company": "",
		"quote":   "",
		"avatar":  "",
		"order":   0,
	},
	CollectionNewsletter: {
		"email":      "",
		"subscribed": true,
	},
	CollectionAdmin: {
		"email": "",
		"role":  "",
	},
	CollectionAnalytics: {
		"event": "",
		"path":  "",
		"meta":  map[string]any{},
	},
	CollectionSEO: {
		"path":        "",
		"title":       "",
		"description": "",
		"image":       "",
	},
}
