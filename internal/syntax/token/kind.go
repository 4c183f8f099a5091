// Package token defines the fixed set of syntax kinds shared by the lexer,
// parser, and CST. WDL's grammar is fixed, so SyntaxKind is a closed enum
// rather than a runtime-registered, per-grammar token class table.
package token

// SyntaxKind identifies the kind of a CST token or node. Both leaf (token)
// and interior (node) kinds share one enum so a single green tree can hold
// both uniformly.
type SyntaxKind uint8

const (
	// Special
	Unknown SyntaxKind = iota
	EOF
	Unparsed // remainder of the document after an unsupported version header

	// Trivia
	Whitespace
	Comment

	// Literals and identifiers
	IntLiteral
	FloatLiteral
	Ident
	StringStart   // opening quote or <<<
	StringText    // literal text run inside a string/command/heredoc
	StringEscape  // a single escape sequence token (\n, \xHH, ...)
	PlaceholderOpen  // ~{ or ${
	PlaceholderClose // }
	StringEnd // closing quote or >>>

	// Punctuation
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Comma
	Dot
	Colon
	Equals
	Question
	Plus
	Minus
	Star
	Slash
	Percent
	LogicalNot
	LogicalAnd
	LogicalOr
	Equality
	Inequality
	LessThan
	LessEqual
	GreaterThan
	GreaterEqual

	// Keywords
	KwVersion
	KwImport
	KwAs
	KwAlias
	KwStruct
	KwTask
	KwWorkflow
	KwInput
	KwOutput
	KwCommand
	KwRuntime
	KwMeta
	KwParameterMeta
	KwCall
	KwScatter
	KwIf
	KwThen
	KwElse
	KwIn
	KwAfter
	KwObject
	KwTrue
	KwFalse

	// Type keywords
	KwBoolean
	KwInt
	KwFloat
	KwString
	KwFile
	KwDirectory
	KwArray
	KwMap
	KwPair
	KwNone

	// Nodes (interior)
	NodeRoot
	NodeVersionStatement
	NodeImportStatement
	NodeImportAlias
	NodeStructDefinition
	NodeTaskDefinition
	NodeWorkflowDefinition
	NodeInputSection
	NodeOutputSection
	NodeCommandSection
	NodeRuntimeSection
	NodeMetaSection
	NodeParameterMetaSection
	NodeBoundDecl
	NodeUnboundDecl
	NodeCallStatement
	NodeCallAfter
	NodeCallInput
	NodeScatterStatement
	NodeConditionalStatement
	NodeType
	NodeTypeArray
	NodeTypeMap
	NodeTypePair
	NodeTypeObject
	NodeLiteralExpr
	NodeNameRefExpr
	NodeAccessExpr
	NodeIndexExpr
	NodeCallExpr
	NodeIfExpr
	NodeBinaryExpr
	NodeUnaryExpr
	NodeParenExpr
	NodeArrayLiteral
	NodeMapLiteral
	NodeMapItem
	NodePairLiteral
	NodeObjectLiteral
	NodeObjectItem
	NodeStringLiteral
	NodePlaceholder

	numKinds
)

// IsTrivia reports whether k is whitespace or a comment: lexically
// insignificant but preserved in the lossless tree.
func (k SyntaxKind) IsTrivia() bool {
	return k == Whitespace || k == Comment
}

// IsToken reports whether k is a leaf kind (as opposed to an interior node
// kind). Node kinds are all >= NodeRoot.
func (k SyntaxKind) IsToken() bool {
	return k < NodeRoot
}

//go:generate stringer -type=SyntaxKind
func (k SyntaxKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "SyntaxKind(?)"
}

var kindNames = map[SyntaxKind]string{
	Unknown:                  "Unknown",
	EOF:                      "EOF",
	Unparsed:                 "Unparsed",
	Whitespace:               "Whitespace",
	Comment:                  "Comment",
	IntLiteral:               "IntLiteral",
	FloatLiteral:             "FloatLiteral",
	Ident:                    "Ident",
	StringStart:              "StringStart",
	StringText:               "StringText",
	StringEscape:             "StringEscape",
	PlaceholderOpen:          "PlaceholderOpen",
	PlaceholderClose:         "PlaceholderClose",
	StringEnd:                "StringEnd",
	LParen:                   "LParen",
	RParen:                   "RParen",
	LBrace:                   "LBrace",
	RBrace:                   "RBrace",
	LBracket:                 "LBracket",
	RBracket:                 "RBracket",
	Comma:                    "Comma",
	Dot:                      "Dot",
	Colon:                    "Colon",
	Equals:                   "Equals",
	Question:                 "Question",
	Plus:                     "Plus",
	Minus:                    "Minus",
	Star:                     "Star",
	Slash:                    "Slash",
	Percent:                  "Percent",
	LogicalNot:               "LogicalNot",
	LogicalAnd:               "LogicalAnd",
	LogicalOr:                "LogicalOr",
	Equality:                 "Equality",
	Inequality:               "Inequality",
	LessThan:                 "LessThan",
	LessEqual:                "LessEqual",
	GreaterThan:              "GreaterThan",
	GreaterEqual:             "GreaterEqual",
	KwVersion:                "KwVersion",
	KwImport:                 "KwImport",
	KwAs:                     "KwAs",
	KwAlias:                  "KwAlias",
	KwStruct:                 "KwStruct",
	KwTask:                   "KwTask",
	KwWorkflow:               "KwWorkflow",
	KwInput:                  "KwInput",
	KwOutput:                 "KwOutput",
	KwCommand:                "KwCommand",
	KwRuntime:                "KwRuntime",
	KwMeta:                   "KwMeta",
	KwParameterMeta:          "KwParameterMeta",
	KwCall:                   "KwCall",
	KwScatter:                "KwScatter",
	KwIf:                     "KwIf",
	KwThen:                   "KwThen",
	KwElse:                   "KwElse",
	KwIn:                     "KwIn",
	KwAfter:                  "KwAfter",
	KwObject:                 "KwObject",
	KwTrue:                   "KwTrue",
	KwFalse:                  "KwFalse",
	KwBoolean:                "KwBoolean",
	KwInt:                    "KwInt",
	KwFloat:                  "KwFloat",
	KwString:                 "KwString",
	KwFile:                   "KwFile",
	KwDirectory:              "KwDirectory",
	KwArray:                  "KwArray",
	KwMap:                    "KwMap",
	KwPair:                   "KwPair",
	KwNone:                   "KwNone",
	NodeRoot:                 "Root",
	NodeVersionStatement:     "VersionStatement",
	NodeImportStatement:      "ImportStatement",
	NodeImportAlias:          "ImportAlias",
	NodeStructDefinition:     "StructDefinition",
	NodeTaskDefinition:       "TaskDefinition",
	NodeWorkflowDefinition:   "WorkflowDefinition",
	NodeInputSection:         "InputSection",
	NodeOutputSection:        "OutputSection",
	NodeCommandSection:       "CommandSection",
	NodeRuntimeSection:       "RuntimeSection",
	NodeMetaSection:          "MetaSection",
	NodeParameterMetaSection: "ParameterMetaSection",
	NodeBoundDecl:            "BoundDecl",
	NodeUnboundDecl:          "UnboundDecl",
	NodeCallStatement:        "CallStatement",
	NodeCallAfter:            "CallAfter",
	NodeCallInput:            "CallInput",
	NodeScatterStatement:     "ScatterStatement",
	NodeConditionalStatement: "ConditionalStatement",
	NodeType:                 "Type",
	NodeTypeArray:            "TypeArray",
	NodeTypeMap:              "TypeMap",
	NodeTypePair:             "TypePair",
	NodeTypeObject:           "TypeObject",
	NodeLiteralExpr:          "LiteralExpr",
	NodeNameRefExpr:          "NameRefExpr",
	NodeAccessExpr:           "AccessExpr",
	NodeIndexExpr:            "IndexExpr",
	NodeCallExpr:             "CallExpr",
	NodeIfExpr:               "IfExpr",
	NodeBinaryExpr:           "BinaryExpr",
	NodeUnaryExpr:            "UnaryExpr",
	NodeParenExpr:            "ParenExpr",
	NodeArrayLiteral:         "ArrayLiteral",
	NodeMapLiteral:           "MapLiteral",
	NodeMapItem:              "MapItem",
	NodePairLiteral:          "PairLiteral",
	NodeObjectLiteral:        "ObjectLiteral",
	NodeObjectItem:           "ObjectItem",
	NodeStringLiteral:        "StringLiteral",
	NodePlaceholder:          "Placeholder",
}

// Keywords maps the reserved-word spelling to its SyntaxKind.
var Keywords = map[string]SyntaxKind{
	"version":         KwVersion,
	"import":          KwImport,
	"as":              KwAs,
	"alias":           KwAlias,
	"struct":          KwStruct,
	"task":            KwTask,
	"workflow":        KwWorkflow,
	"input":           KwInput,
	"output":          KwOutput,
	"command":         KwCommand,
	"runtime":         KwRuntime,
	"meta":            KwMeta,
	"parameter_meta":  KwParameterMeta,
	"call":            KwCall,
	"scatter":         KwScatter,
	"if":              KwIf,
	"then":            KwThen,
	"else":            KwElse,
	"in":              KwIn,
	"after":           KwAfter,
	"object":          KwObject,
	"true":            KwTrue,
	"false":           KwFalse,
	"Boolean":         KwBoolean,
	"Int":             KwInt,
	"Float":           KwFloat,
	"String":          KwString,
	"File":            KwFile,
	"Directory":       KwDirectory,
	"Array":           KwArray,
	"Map":             KwMap,
	"Pair":            KwPair,
	"None":            KwNone,
}
