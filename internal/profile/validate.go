// validate.go checks a parsed profile before any template is cloned, so a
// broken profile fails fast instead of halfway through a scaffolding run.
package profile

import (
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
)

// ValidationError represents a specific validation failure in a profile.
type ValidationError struct {
	// Field is the YAML path that failed validation (e.g., "rewrites[0].file").
	Field string

	// Message describes what's wrong with the field value.
	Message string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("profile validation error: %s: %s", e.Field, e.Message)
}

// Validate returns every problem found in p (empty list = valid profile).
//
// Checks performed:
//   - Menus: a name and at least one option whose first token is non-empty
//   - Paths: rewrite files, help script/output, cleanup and locale readmes
//     must be relative and stay inside the project directory
//   - Rules: literals must be non-empty
//   - Templates: every templated field must parse
func Validate(p *Profile) []ValidationError {
	var errs []ValidationError

	errs = append(errs, validateMenu("languages", p.Languages.Name, p.Languages.Options)...)
	errs = append(errs, validateMenu("branches", p.Branches.Name, p.Branches.Options)...)

	for i, rw := range p.Rewrites {
		field := fmt.Sprintf("rewrites[%d]", i)
		if err := validatePath(field+".file", rw.File); err != nil {
			errs = append(errs, *err)
		}
		if len(rw.Rules) == 0 {
			errs = append(errs, ValidationError{Field: field + ".rules", Message: "at least one rule is required"})
		}
		for j, r := range rw.Rules {
			rf := fmt.Sprintf("%s.rules[%d]", field, j)
			if r.Find == "" {
				errs = append(errs, ValidationError{Field: rf + ".find", Message: "literal must not be empty"})
			}
			if err := validateTemplate(rf+".replace", r.Replace); err != nil {
				errs = append(errs, *err)
			}
		}
	}

	if p.HelpScript != "" {
		if err := validatePath("help_script", p.HelpScript); err != nil {
			errs = append(errs, *err)
		}
		if err := validatePath("help_output", p.HelpOutput); err != nil {
			errs = append(errs, *err)
		}
	}

	for i, f := range p.Cleanup {
		if err := validatePath(fmt.Sprintf("cleanup[%d]", i), f); err != nil {
			errs = append(errs, *err)
		}
	}
	for code, f := range p.LocaleReadmes {
		if err := validatePath("locale_readmes."+code, f); err != nil {
			errs = append(errs, *err)
		}
	}

	for field, tmpl := range map[string]string{
		"readme":         p.Readme,
		"commit_message": p.CommitMessage,
		"next_steps":     p.NextSteps,
	} {
		if strings.TrimSpace(tmpl) == "" {
			errs = append(errs, ValidationError{Field: field, Message: "must not be empty"})
			continue
		}
		if err := validateTemplate(field, tmpl); err != nil {
			errs = append(errs, *err)
		}
	}

	return errs
}

func validateMenu(field, name string, options []string) []ValidationError {
	var errs []ValidationError
	if name == "" {
		errs = append(errs, ValidationError{Field: field + ".name", Message: "must not be empty"})
	}
	if len(options) == 0 {
		errs = append(errs, ValidationError{Field: field + ".options", Message: "at least one option is required"})
	}
	for i, o := range options {
		if o == "" || strings.HasPrefix(o, " ") {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.options[%d]", field, i),
				Message: "option must start with a selectable token",
			})
		}
	}
	return errs
}

// validatePath rejects empty, absolute and parent-escaping paths.
func validatePath(field, path string) *ValidationError {
	if path == "" {
		return &ValidationError{Field: field, Message: "must not be empty"}
	}
	if filepath.IsAbs(path) {
		return &ValidationError{Field: field, Message: fmt.Sprintf("path %q must be relative", path)}
	}
	clean := filepath.Clean(path)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return &ValidationError{Field: field, Message: fmt.Sprintf("path %q escapes the project directory", path)}
	}
	return nil
}

func validateTemplate(field, tmpl string) *ValidationError {
	if _, err := template.New(field).Parse(tmpl); err != nil {
		return &ValidationError{Field: field, Message: err.Error()}
	}
	return nil
}
