// Package profile describes a scaffolding template: the interactive menus
// offered for it, the placeholder rules applied to its config files, the
// generated README and help artifacts, and the template-authoring files
// removed from a new project.
//
// Profiles are YAML documents (gopkg.in/yaml.v3). The ts-liveview profile is
// embedded in the binary; another profile can be loaded from disk. Rule
// replacements and text blocks are Go text/templates rendered with Values.
package profile

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/create-liveview/internal/model"
	"github.com/shinji-kodama/create-liveview/internal/selector"
)

//go:embed ts-liveview.yaml
var defaultProfile []byte

// Profile is the parsed template description.
type Profile struct {
	// Name identifies the profile in logs.
	Name string `yaml:"name"`

	// Languages is the guide-message language menu.
	Languages selector.Menu `yaml:"languages"`

	// Branches is the recommended template branch menu.
	Branches selector.Menu `yaml:"branches"`

	// Rewrites lists the files rewritten after cloning, in order.
	Rewrites []RewriteTarget `yaml:"rewrites"`

	// HelpScript is the template script whose stdout becomes HelpOutput.
	HelpScript string `yaml:"help_script"`

	// HelpOutput is the generated help file, relative to the project root.
	HelpOutput string `yaml:"help_output"`

	// Readme is the template for the generated README.md.
	Readme string `yaml:"readme"`

	// Cleanup lists template-authoring files removed when present.
	Cleanup []string `yaml:"cleanup"`

	// LocaleReadmes maps a language code to its readme variant. Only the
	// variant of the chosen language is kept.
	LocaleReadmes map[string]string `yaml:"locale_readmes"`

	// CommitMessage is the template for the initial commit message.
	CommitMessage string `yaml:"commit_message"`

	// NextSteps is the template for the final report.
	NextSteps string `yaml:"next_steps"`
}

// RewriteTarget is one file and the ordered rules applied to it.
type RewriteTarget struct {
	File  string       `yaml:"file"`
	Rules []model.Rule `yaml:"rules"`
}

// Values is the data available to every profile template.
type Values struct {
	model.Identity

	Username  string
	RepoName  string
	RepoURL   string
	ReadmeURL string
	Branch    string
	Dest      string
	Lang      string
}

// Default returns the embedded ts-liveview profile.
func Default() (*Profile, error) {
	return Parse(defaultProfile)
}

// Load reads and parses the profile at path. An empty path returns the
// embedded default.
func Load(path string) (*Profile, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML profile and validates it. Unknown keys are rejected
// so typos in hand-written profiles surface early.
func Parse(data []byte) (*Profile, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var p Profile
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}

	if verrs := Validate(&p); len(verrs) > 0 {
		errs := make([]error, 0, len(verrs))
		for i := range verrs {
			errs = append(errs, &verrs[i])
		}
		return nil, errors.Join(errs...)
	}
	return &p, nil
}

// RenderMenu returns m with its pre and post lines rendered. Options are
// left untouched because their first token is the selectable value.
func RenderMenu(m selector.Menu, v Values) (selector.Menu, error) {
	out := m
	out.PreLines = make([]string, len(m.PreLines))
	out.PostLines = make([]string, len(m.PostLines))

	for i, line := range m.PreLines {
		s, err := RenderText(m.Name, line, v)
		if err != nil {
			return selector.Menu{}, err
		}
		out.PreLines[i] = s
	}
	for i, line := range m.PostLines {
		s, err := RenderText(m.Name, line, v)
		if err != nil {
			return selector.Menu{}, err
		}
		out.PostLines[i] = s
	}
	return out, nil
}

// RenderRules renders the replacement side of each rule. Literals are
// matched verbatim and never rendered.
func RenderRules(t RewriteTarget, v Values) ([]model.Rule, error) {
	rules := make([]model.Rule, 0, len(t.Rules))
	for i, r := range t.Rules {
		replace, err := RenderText(fmt.Sprintf("%s#%d", t.File, i), r.Replace, v)
		if err != nil {
			return nil, err
		}
		rules = append(rules, model.Rule{Find: r.Find, Replace: replace})
	}
	return rules, nil
}

// RenderText executes tmpl as a text/template with v.
func RenderText(name, tmpl string, v Values) (string, error) {
	t, err := template.New(name).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return buf.String(), nil
}

// NonIdempotent returns the rules whose literal reappears in their own
// replacement. Applying such a rule set twice rewrites the text again.
func NonIdempotent(rules []model.Rule) []model.Rule {
	var out []model.Rule
	for _, r := range rules {
		if r.Find != "" && strings.Contains(r.Replace, r.Find) {
			out = append(out, r)
		}
	}
	return out
}

// LocaleReadmesFor returns the locale readme variants to keep and to remove
// for lang. Unknown languages keep none. Both lists are sorted.
func (p *Profile) LocaleReadmesFor(lang model.Language) (keep, remove []string) {
	for code, file := range p.LocaleReadmes {
		if model.Language(code) == lang {
			keep = append(keep, file)
		} else {
			remove = append(remove, file)
		}
	}
	sort.Strings(keep)
	sort.Strings(remove)
	return keep, remove
}
