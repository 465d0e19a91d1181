package rules

import (
	"fmt"
	"strings"

	m "sniff.dev/pkg/sniff/internal/model"
)

// Doc is the teaching material for one rule: a short rationale and a
// before/after snippet pair showing the smell and its repair.
type Doc struct {
	ID        m.RuleID
	Title     string
	Rationale string
	Before    string
	After     string
}

var catalog = map[m.RuleID]Doc{
	m.RuleConstructAssign: {
		ID:    m.RuleConstructAssign,
		Title: "Construct, then assign",
		Rationale: "Default-constructing an object and assigning it on the next line " +
			"runs two operations where one suffices, and leaves a window where the " +
			"object exists in a meaningless state. Direct initialization is shorter, " +
			"faster for types with expensive default constructors, and lets the " +
			"variable be const.",
		Before: `std::string name;
name = make_name();`,
		After: `const std::string name = make_name();`,
	},
	m.RuleOutParam: {
		ID:    m.RuleOutParam,
		Title: "Reference out-parameters",
		Rationale: "A void function filling a non-const reference hides its output in " +
			"the argument list. Callers must pre-declare the variable and cannot use " +
			"const. Return the value; return a struct when there are several. RVO " +
			"makes this free.",
		Before: `void split(const std::string& s, std::vector<std::string>& out);`,
		After: `std::vector<std::string> split(const std::string& s);`,
	},
	m.RuleRawLoop: {
		ID:    m.RuleRawLoop,
		Title: "Raw loops over containers",
		Rationale: "Index and iterator loops restate machinery the language already " +
			"provides and leave room for off-by-one and invalidation bugs. A " +
			"range-for states the traversal; a std::ranges algorithm states the " +
			"intent.",
		Before: `for (size_t i = 0; i < prices.size(); ++i) {
    total += prices[i];
}`,
		After: `total = std::ranges::fold_left(prices, 0.0, std::plus{});`,
	},
	m.RuleRawNew: {
		ID:    m.RuleRawNew,
		Title: "Owning raw new",
		Rationale: "A raw pointer produced by new has no owner the type system can " +
			"see; every early return is a leak. std::make_unique ties the lifetime " +
			"to a scope and documents the transfer points.",
		Before: `Widget* w = new Widget(42);`,
		After: `auto w = std::make_unique<Widget>(42);`,
	},
	m.RuleManualDelete: {
		ID:    m.RuleManualDelete,
		Title: "Manual delete",
		Rationale: "An explicit delete means some pointer was an owner all along. " +
			"Express that ownership in the pointer's type and the delete disappears, " +
			"along with the double-free and leak-on-throw hazards.",
		Before: `Widget* w = factory();
use(*w);
delete w;`,
		After: `std::unique_ptr<Widget> w = factory();
use(*w);`,
	},
	m.RuleNonCanonOp: {
		ID:    m.RuleNonCanonOp,
		Title: "Non-canonical operator signatures",
		Rationale: "A member operator== converts its right operand but not its left, " +
			"so a == b and b == a can differ. A hidden friend (or = default) treats " +
			"both sides alike. operator= returns a reference to *this so assignment " +
			"chains and matches the built-in meaning.",
		Before: `struct Money {
    bool operator==(const Money& rhs) const;
};`,
		After: `struct Money {
    friend bool operator==(const Money&, const Money&) = default;
};`,
	},
	m.RuleValueCopy: {
		ID:    m.RuleValueCopy,
		Title: "Heavy parameters by value",
		Rationale: "Passing a string or container by value copies its allocation on " +
			"every call. When the function only reads the argument, a const " +
			"reference passes a pointer instead.",
		Before: `size_t count_words(std::string text);`,
		After: `size_t count_words(const std::string& text);`,
	},
	m.RuleImplicitConv: {
		ID:    m.RuleImplicitConv,
		Title: "Implicit converting constructors",
		Rationale: "A single-argument constructor without explicit lets the compiler " +
			"manufacture the type from any convertible value, typically at exactly " +
			"the call site where it is least expected. Mark it explicit and keep " +
			"conversions visible.",
		Before: `class Buffer {
public:
    Buffer(size_t initial_size);
};
consume(1024);  // silently builds a Buffer`,
		After: `class Buffer {
public:
    explicit Buffer(size_t initial_size);
};
consume(Buffer(1024));`,
	},
	m.RuleConstCast: {
		ID:    m.RuleConstCast,
		Title: "const_cast",
		Rationale: "const_cast removes a promise made elsewhere. If the object was " +
			"created const, writing through the cast is undefined behavior; if it " +
			"was not, the declaration upstream should lose its const instead of " +
			"every call site gaining a cast.",
		Before: `void legacy_api(char* s);
legacy_api(const_cast<char*>(config.name().c_str()));`,
		After: `void legacy_api(const char* s);  // fix the declaration
legacy_api(config.name().c_str());`,
	},
	m.RuleStaticInit: {
		ID:    m.RuleStaticInit,
		Title: "Function-static dynamic initialization",
		Rationale: "A function-local static with a dynamic initializer runs its " +
			"constructor on first call, behind an implicit guard. Concurrent first " +
			"calls serialize there, destruction order at exit is unspecified, and " +
			"pre-C++11 compilers raced outright. Hoist the value, or make it " +
			"constinit when it can be computed at compile time.",
		Before: `const Config& config() {
    static Config instance = load_config();
    return instance;
}`,
		After: `constinit Config config_instance{};  // initialized before main`,
	},
	m.RuleExternConst: {
		ID:    m.RuleExternConst,
		Title: "extern const globals",
		Rationale: "An extern const object is initialized at runtime in exactly one " +
			"translation unit, so other units reading it during startup race the " +
			"initializer. Since C++17, inline constexpr in a header gives every " +
			"unit the value at compile time.",
		Before: `// header
extern const int kMaxRetries;
// one .cc file
extern const int kMaxRetries = 5;`,
		After: `// header
inline constexpr int kMaxRetries = 5;`,
	},
}

// DocFor returns the teaching material for a rule.
func DocFor(rule m.RuleID) (Doc, bool) {
	doc, ok := catalog[rule]
	return doc, ok
}

// Docs returns the full catalog in registry order.
func Docs() []Doc {
	docs := make([]Doc, 0, len(catalog))
	for _, rule := range m.AllRules() {
		docs = append(docs, catalog[rule])
	}

	return docs
}

// Markdown renders a doc as a markdown section with the before/after pair.
func (d Doc) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "## %s (`%s`)\n\n%s\n\n", d.Title, d.ID, d.Rationale)
	fmt.Fprintf(&b, "**Before**\n\n```cpp\n%s\n```\n\n", d.Before)
	fmt.Fprintf(&b, "**After**\n\n```cpp\n%s\n```\n", d.After)

	return b.String()
}
