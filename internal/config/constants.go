package config

const Version = "1.0.0"

const SourceFileExt = ".asc"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".asc"}

// Reserved identifier conventions shared by the compiler and its consumers.
const (
	// GlobalPrefix marks a name bound outside the program. Such names are
	// never renamed and never looked up in scopes.
	GlobalPrefix = "@"

	// ResultName is the entry holding a function body's result. The lexer
	// never produces it as an identifier.
	ResultName = "="

	// TempPrefix starts every synthetic identifier: _0, _1, _2x ...
	TempPrefix = "_"
)

// BuiltinNames are pre-registered in the root scope. User programs may
// reference them but not redeclare them at top level.
var BuiltinNames = []string{
	// arithmetic
	"+", "-", "*", "/", "^", "mod",
	"floor", "ceil", "round", "trunc", "sign", "abs",
	// comparison
	"==", "!=", ">", "<", ">=", "<=",
	// boolean
	"and", "or", "not", "xor",
	// lists and aggregates
	"++", "map", "flat_map", "fold", "fold1", "index", "length", "contains",
	"head", "tail", "sum", "min", "max", "avg", "med", "sort",
	// dates, times and locale formatting
	"date_sub", "date_add", "date_today", "date_fmt", "time_now", "datetime_fmt",
	"currency_fmt", "country_fmt", "phone_fmt",
	"id",
}

// IsBuiltin reports whether name is in BuiltinNames.
func IsBuiltin(name string) bool {
	for _, b := range BuiltinNames {
		if b == name {
			return true
		}
	}
	return false
}

// IsSourceFile reports whether path has a recognized source extension.
func IsSourceFile(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) > len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}
