package leadmagnet

import "sort"

type Resource struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	Description string `json:"description"`
	File        string `json:"-"`
}

// ResourceOptions lists the catalog keys in binding-tag form.
const ResourceOptions = "website-audit-checklist seo-starter-guide saas-launch-playbook"

var catalog = map[string]Resource{
	"website-audit-checklist": {
		Key:         "website-audit-checklist",
		Title:       "Website Audit Checklist",
		Description: "47 checks covering speed, accessibility, SEO and conversion.",
		File:        "website-audit-checklist.pdf",
	},
	"seo-starter-guide": {
		Key:         "seo-starter-guide",
		Title:       "SEO Starter Guide",
		Description: "Keyword research, on-page basics and a 90 day plan.",
		File:        "seo-starter-guide.pdf",
	},
	"saas-launch-playbook": {
		Key:         "saas-launch-playbook",
		Title:       "SaaS Launch Playbook",
		Description: "From MVP scope to pricing and the first 100 customers.",
		File:        "saas-launch-playbook.pdf",
	},
}

func Lookup(key string) (Resource, bool) {
	r, ok := catalog[key]
	return r, ok
}

// Resources returns the catalog sorted by key.
func Resources() []Resource {
	out := make([]Resource, 0, len(catalog))
	for _, r := range catalog {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
