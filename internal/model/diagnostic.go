package model

// RuleID identifies one smell in the registry.
type RuleID string

// The registry of recognized smells.
const (
	// RuleConstructAssign flags default construction immediately followed by
	// assignment where direct initialization would do.
	RuleConstructAssign RuleID = "construct-assign"
	// RuleOutParam flags non-const reference out-parameters on void functions.
	RuleOutParam RuleID = "out-param"
	// RuleRawLoop flags index/iterator loops replaceable by range-for or an
	// algorithm.
	RuleRawLoop RuleID = "raw-loop"
	// RuleRawNew flags owning raw new expressions.
	RuleRawNew RuleID = "raw-new"
	// RuleManualDelete flags explicit delete expressions.
	RuleManualDelete RuleID = "manual-delete"
	// RuleNonCanonOp flags non-canonical operator signatures.
	RuleNonCanonOp RuleID = "noncanon-op"
	// RuleValueCopy flags heavy types passed by value.
	RuleValueCopy RuleID = "value-copy"
	// RuleImplicitConv flags single-argument constructors missing explicit.
	RuleImplicitConv RuleID = "implicit-conv"
	// RuleConstCast flags const_cast expressions.
	RuleConstCast RuleID = "const-cast"
	// RuleStaticInit flags function-local statics with dynamic initializers.
	RuleStaticInit RuleID = "static-init"
	// RuleExternConst flags extern const globals that should be constexpr.
	RuleExternConst RuleID = "extern-const"
)

// AllRules returns every registered rule ID in catalog order.
func AllRules() []RuleID {
	return []RuleID{
		RuleConstructAssign,
		RuleOutParam,
		RuleRawLoop,
		RuleRawNew,
		RuleManualDelete,
		RuleNonCanonOp,
		RuleValueCopy,
		RuleImplicitConv,
		RuleConstCast,
		RuleStaticInit,
		RuleExternConst,
	}
}

// Severity ranks a finding.
type Severity string

// Available severities.
const (
	SeverityNote    Severity = "note"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Span is a half-open byte range [StartByte, EndByte) into the file content.
type Span struct {
	StartByte uint32 `yaml:"start"`
	EndByte   uint32 `yaml:"end"`
}

// FixIt is a mechanical rewrite for a finding. Before holds the exact text
// currently occupying Span so stale fixes can be detected before applying.
type FixIt struct {
	Span   Span   `yaml:"span"`
	Before string `yaml:"before"`
	After  string `yaml:"after"`
}

// Diagnostic is a single finding produced by a rule matcher.
type Diagnostic struct {
	ID       uint
	Rule     RuleID
	Severity Severity
	Source   Source
	Line     int
	Column   int
	Scope    ScopeType
	Message  string
	Excerpt  string
	Fix      *FixIt
}
