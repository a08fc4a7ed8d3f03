// Copyright © 2024 The rsresolve authors

package analysis

// crateRoots are path roots that always name code outside the file.
var crateRoots = []string{"std", "core", "alloc"}

// preludeNames are names in scope in every Rust file without an import:
// the standard prelude, the primitive types usable as path roots, the
// exported std macros and Self.
var preludeNames = map[string]bool{}

func init() {
	for _, name := range []string{
		// types and traits
		"Option", "Some", "None", "Result", "Ok", "Err",
		"Vec", "String", "Box", "ToString", "ToOwned",
		"Clone", "Copy", "Send", "Sync", "Sized", "Unpin",
		"Drop", "Fn", "FnMut", "FnOnce", "Iterator", "IntoIterator",
		"DoubleEndedIterator", "ExactSizeIterator", "Extend",
		"Default", "Debug", "Eq", "PartialEq", "Ord", "PartialOrd", "Hash",
		"AsRef", "AsMut", "Into", "From", "TryFrom", "TryInto", "FromIterator",
		"Self",
		// primitives
		"bool", "char", "str", "f32", "f64",
		"i8", "i16", "i32", "i64", "i128", "isize",
		"u8", "u16", "u32", "u64", "u128", "usize",
		// macros
		"assert", "assert_eq", "assert_ne", "debug_assert", "debug_assert_eq",
		"debug_assert_ne", "cfg", "column", "compile_error", "concat", "dbg",
		"env", "eprint", "eprintln", "file", "format", "format_args",
		"include", "include_bytes", "include_str", "line", "matches",
		"module_path", "option_env", "panic", "print", "println", "stringify",
		"todo", "unimplemented", "unreachable", "vec", "write", "writeln",
		// functions
		"drop",
	} {
		preludeNames[name] = true
	}
}

// IsPrelude reports whether name is in scope in every file.
func IsPrelude(name string) bool {
	return preludeNames[name]
}

func externalRoots(extra []string) map[string]bool {
	roots := make(map[string]bool, len(crateRoots)+len(extra))
	for _, r := range crateRoots {
		roots[r] = true
	}
	for _, r := range extra {
		roots[r] = true
	}
	return roots
}
