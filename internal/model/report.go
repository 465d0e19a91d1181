package model

// Finding is the persisted form of a Diagnostic, minus the source identity
// which lives on the enclosing Report.
type Finding struct {
	Rule     RuleID    `yaml:"rule"`
	Severity Severity  `yaml:"severity"`
	Line     int       `yaml:"line"`
	Column   int       `yaml:"column"`
	Scope    ScopeType `yaml:"scope"`
	Message  string    `yaml:"message"`
	Excerpt  string    `yaml:"excerpt,omitempty"`
	Fix      *FixIt    `yaml:"fix,omitempty"`
}

// Report holds the findings for a single source file at a specific content
// hash. A report with no findings records that the file was scanned clean.
type Report struct {
	Path     Path      `yaml:"path"`
	Hash     string    `yaml:"hash"`
	Findings []Finding `yaml:"findings"`
}

// Clean reports whether the scanned file had no findings.
func (r Report) Clean() bool {
	return len(r.Findings) == 0
}

// NewReport folds a set of diagnostics for one source into a Report.
func NewReport(source Source, diagnostics []Diagnostic) Report {
	report := Report{}
	if source.Origin != nil {
		report.Path = source.Origin.ShortPath
		report.Hash = source.Origin.Hash
	}

	for _, d := range diagnostics {
		report.Findings = append(report.Findings, Finding{
			Rule:     d.Rule,
			Severity: d.Severity,
			Line:     d.Line,
			Column:   d.Column,
			Scope:    d.Scope,
			Message:  d.Message,
			Excerpt:  d.Excerpt,
			Fix:      d.Fix,
		})
	}

	return report
}
