package github

import "github.com/google/go-github/v72/github"

// DefaultLabelColor is used for labels outside the palette
const DefaultLabelColor = "ededed"

// Palette labels are created on first use with these colors
var (
	LabelBug = github.Label{
		Name:  github.Ptr("bug"),
		Color: github.Ptr("d73a4a"),
	}
	LabelFeatureRequest = github.Label{
		Name:  github.Ptr("feature-request"),
		Color: github.Ptr("a2eeef"),
	}
	LabelQuestion = github.Label{
		Name:  github.Ptr("question"),
		Color: github.Ptr("d876e3"),
	}
	LabelDocumentation = github.Label{
		Name:  github.Ptr("documentation"),
		Color: github.Ptr("0075ca"),
	}
	LabelNeedsTriage = github.Label{
		Name:        github.Ptr("needs-triage"),
		Description: github.Ptr("a maintainer needs to categorize this issue"),
		Color:       github.Ptr("e4e669"),
	}
	LabelNeedsInfo = github.Label{
		Name:        github.Ptr("needs-info"),
		Description: github.Ptr("the issue is missing required information"),
		Color:       github.Ptr("f9d0c4"),
	}
)

var palette = map[string]github.Label{}

func init() {
	for _, l := range []github.Label{LabelBug, LabelFeatureRequest, LabelQuestion, LabelDocumentation, LabelNeedsTriage, LabelNeedsInfo} {
		palette[l.GetName()] = l
	}
}

// labelFor returns the definition used when creating name on a repository
func labelFor(name string) *github.Label {
	if l, ok := palette[name]; ok {
		return &l
	}
	return &github.Label{Name: github.Ptr(name), Color: github.Ptr(DefaultLabelColor)}
}
