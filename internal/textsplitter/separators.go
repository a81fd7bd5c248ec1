package textsplitter

// defaultSeparators is used for any doc_type not present in the table
// below.
var defaultSeparators = []string{"\n\n", "\n", " "}

// separatorTable maps a doc_type to its fixed, ordered candidate separator
// list. These lists are part of the external contract (§6): they must be
// reproduced verbatim so chunking is deterministic across implementations,
// not redesigned or "improved".
var separatorTable = map[string][]string{
	"cpp": {
		"\nclass ",
		"\nvoid ", "\nint ", "\nfloat ", "\ndouble ",
		"\nif ", "\nfor ", "\nwhile ", "\nswitch ", "\ncase ",
		"\n\n", "\n", " ",
	},
	"go": {
		"\nfunc ", "\nvar ", "\nconst ", "\ntype ",
		"\nif ", "\nfor ", "\nswitch ", "\ncase ",
		"\n\n", "\n", " ",
	},
	"java": {
		"\nclass ",
		"\npublic ", "\nprotected ", "\nprivate ", "\nstatic ",
		"\nif ", "\nfor ", "\nwhile ", "\nswitch ", "\ncase ",
		"\n\n", "\n", " ",
	},
	"csharp": {
		"\nclass ",
		"\npublic ", "\nprotected ", "\nprivate ", "\nstatic ",
		"\nif ", "\nfor ", "\nwhile ", "\nswitch ", "\ncase ",
		"\n\n", "\n", " ",
	},
	"ts": {
		"\nclass ",
		"\npublic ", "\nprotected ", "\nprivate ", "\nstatic ",
		"\nif ", "\nfor ", "\nwhile ", "\nswitch ", "\ncase ",
		"\n\n", "\n", " ",
	},
	"php": {
		"\nfunction ",
		"\nclass ",
		"\nif ", "\nforeach ", "\nwhile ", "\ndo ", "\nswitch ", "\ncase ",
		"\n\n", "\n", " ",
	},
	"proto": {
		"\nmessage ", "\nservice ", "\nenum ", "\noption ", "\nimport ", "\nsyntax ",
		"\n\n", "\n", " ",
	},
	"python": {
		"\nclass ", "\ndef ", "\n\tdef ",
		"\n\n", "\n", " ",
	},
	"rst": {
		"\n===\n", "\n---\n", "\n***\n",
		"\n.. ",
		"\n\n", "\n", " ",
	},
	"ruby": {
		"\ndef ", "\nclass ",
		"\nif ", "\nunless ", "\nwhile ", "\nfor ", "\ndo ", "\nbegin ", "\nrescue ",
		"\n\n", "\n", " ",
	},
	"rust": {
		"\nfn ", "\nconst ", "\nlet ",
		"\nif ", "\nwhile ", "\nfor ", "\nloop ", "\nmatch ", "\nconst ",
		"\n\n", "\n", " ",
	},
	"scala": {
		"\nclass ", "\nobject ",
		"\ndef ", "\nval ", "\nvar ",
		"\nif ", "\nfor ", "\nwhile ", "\nmatch ", "\ncase ",
		"\n\n", "\n", " ",
	},
	"swift": {
		"\nfunc ",
		"\nclass ", "\nstruct ", "\nenum ",
		"\nif ", "\nfor ", "\nwhile ", "\ndo ", "\nswitch ", "\ncase ",
		"\n\n", "\n", " ",
	},
	"md": {
		"\n## ", "\n### ", "\n#### ", "\n##### ", "\n###### ",
		"```\n\n",
		"\n\n***\n\n", "\n\n---\n\n", "\n\n___\n\n",
		"<table>",
		"\n\n", "\n", " ",
	},
	"latex": {
		"\n\\chapter{", "\n\\section{", "\n\\subsection{", "\n\\subsubsection{",
		"\n\\begin{enumerate}", "\n\\begin{itemize}", "\n\\begin{description}",
		"\n\\begin{list}", "\n\\begin{quote}", "\n\\begin{quotation}",
		"\n\\begin{verse}", "\n\\begin{verbatim}",
		"\n\\begin{align}", "$$", "$",
		"\n\n", "\n", " ",
	},
	"html": {
		"<body>", "<div>", "<p>", "<br>", "<li>",
		"<h1>", "<h2>", "<h3>", "<h4>", "<h5>", "<h6>",
		"<span>", "<table>", "<tr>", "<td>", "<th>",
		"<ul>", "<ol>", "<header>", "<footer>", "<nav>",
		"<head>", "<style>", "<script>", "<meta>", "<title>",
		" ",
	},
	"sol": {
		"\npragma ", "\nusing ",
		"\ncontract ", "\ninterface ", "\nlibrary ",
		"\nconstructor ", "\ntype ", "\nfunction ", "\nevent ", "\nmodifier ", "\nerror ", "\nstruct ", "\nenum ",
		"\nif ", "\nfor ", "\nwhile ", "\ndo while ", "\nassembly ",
		"\n\n", "\n", " ",
	},
}

// aliases maps alternate doc_type spellings onto a canonical key in
// separatorTable.
var aliases = map[string]string{
	"c#":         "csharp",
	"cs":         "csharp",
	"tsx":        "ts",
	"typescript": "ts",
	"js":         "javascript",
	"jsx":        "javascript",
	"py":         "python",
}

func init() {
	javascript := []string{
		"\nclass ",
		"\nfunction ", "\nconst ", "\nlet ", "\nvar ", "\nclass ",
		"\nif ", "\nfor ", "\nwhile ", "\nswitch ", "\ncase ", "\ndefault ",
		"\n\n", "\n", " ",
	}
	separatorTable["javascript"] = javascript
}

// GetSeparators returns the fixed candidate separator list for docType,
// resolving known aliases, and falling back to defaultSeparators for any
// unrecognized or empty doc_type.
func GetSeparators(docType string) []string {
	if canonical, ok := aliases[docType]; ok {
		docType = canonical
	}
	if seps, ok := separatorTable[docType]; ok {
		return seps
	}
	return defaultSeparators
}
