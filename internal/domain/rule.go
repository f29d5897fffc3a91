package domain

// AppliesTo constrains a rule to a subset of files by path glob.
type AppliesTo struct {
	FilePatterns    []string `yaml:"file_patterns,omitempty" json:"file_patterns,omitempty"`
	ExcludePatterns []string `yaml:"exclude_patterns,omitempty" json:"exclude_patterns,omitempty"`
}

// Grep constrains a rule to diff content matching regular expressions.
type Grep struct {
	All []string `yaml:"all,omitempty" json:"all,omitempty"`
	Any []string `yaml:"any,omitempty" json:"any,omitempty"`
}

// Rule is one reviewable guideline, sourced from a markdown+frontmatter or
// JSON file under the rule corpus directory.
type Rule struct {
	Name              string     `yaml:"-" json:"name"`
	Category          string     `yaml:"category,omitempty" json:"category,omitempty"`
	Description       string     `yaml:"description,omitempty" json:"description,omitempty"`
	Content           string     `yaml:"-" json:"content"`
	FocusType         FocusType  `yaml:"focus_type,omitempty" json:"focus_type,omitempty"`
	Model             string     `yaml:"model,omitempty" json:"model,omitempty"`
	DocumentationLink string     `yaml:"documentation_link,omitempty" json:"documentation_link,omitempty"`
	RuleURL           string     `yaml:"rule_url,omitempty" json:"rule_url,omitempty"`
	Skill             string     `yaml:"skill,omitempty" json:"skill,omitempty"`
	AppliesTo         *AppliesTo `yaml:"applies_to,omitempty" json:"applies_to,omitempty"`
	GrepConfig        *Grep      `yaml:"grep,omitempty" json:"grep,omitempty"`
	Skipped           bool       `yaml:"-" json:"-"`
}

// TaskRule is the subset of Rule carried on an EvaluationTask — everything
// the model needs to evaluate a focus area against this rule, without the
// filtering-only fields.
type TaskRule struct {
	Name              string `json:"name"`
	Category          string `json:"category,omitempty"`
	Description       string `json:"description,omitempty"`
	Content           string `json:"content"`
	Model             string `json:"model,omitempty"`
	DocumentationLink string `json:"documentation_link,omitempty"`
	RuleURL           string `json:"rule_url,omitempty"`
	Skill             string `json:"skill,omitempty"`
}

// ToTaskRule projects a Rule down to its evaluation-relevant fields.
func (r Rule) ToTaskRule() TaskRule {
	return TaskRule{
		Name:              r.Name,
		Category:          r.Category,
		Description:       r.Description,
		Content:           r.Content,
		Model:             r.Model,
		DocumentationLink: r.DocumentationLink,
		RuleURL:           r.RuleURL,
		Skill:             r.Skill,
	}
}
