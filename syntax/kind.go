// Copyright © 2024 The rsresolve authors

package syntax

// Language tags the source language a tree was parsed from.
type Language int

const (
	LangUnknown Language = iota
	LangRust
)

func (l Language) String() string {
	switch l {
	case LangRust:
		return "rust"
	default:
		return "unknown"
	}
}

// Kind classifies a node. Kinds mirror the grammar node types that name
// resolution cares about; every other grammar type maps to KindOther and
// keeps its raw name in Node.Type.
type Kind int

const (
	KindOther Kind = iota
	KindError

	// items
	KindSourceFile
	KindModItem
	KindDeclarationList
	KindFunctionItem
	KindFunctionSignatureItem
	KindConstItem
	KindStaticItem
	KindStructItem
	KindEnumItem
	KindEnumVariantList
	KindEnumVariant
	KindUnionItem
	KindTypeItem
	KindTraitItem
	KindImplItem
	KindMacroDefinition
	KindUseDeclaration
	KindUseAsClause
	KindUseList
	KindScopedUseList
	KindUseWildcard
	KindExternCrateDeclaration
	KindForeignModItem

	// parameters
	KindParameters
	KindParameter
	KindSelfParameter
	KindVariadicParameter
	KindTypeParameters
	KindTypeParameter
	KindConstrainedTypeParameter
	KindOptionalTypeParameter
	KindConstParameter
	KindClosureParameters

	// statements and expressions
	KindBlock
	KindLetDeclaration
	KindLetCondition
	KindLetChain
	KindExpressionStatement
	KindClosureExpression
	KindForExpression
	KindIfExpression
	KindWhileExpression
	KindIfLetExpression
	KindWhileLetExpression
	KindMatchExpression
	KindMatchBlock
	KindMatchArm
	KindMatchPattern
	KindCallExpression
	KindArguments
	KindParenthesizedExpression
	KindFieldExpression
	KindMacroInvocation

	// names and paths
	KindIdentifier
	KindTypeIdentifier
	KindFieldIdentifier
	KindShorthandFieldIdentifier
	KindScopedIdentifier
	KindScopedTypeIdentifier
	KindGenericFunction
	KindGenericType
	KindSelf
	KindCrate
	KindSuper
	KindMetavariable

	// patterns
	KindTupleStructPattern
	KindStructPattern
	KindFieldPattern
	KindTuplePattern
	KindSlicePattern
	KindMutPattern
	KindRefPattern
	KindReferencePattern
	KindCapturedPattern
	KindOrPattern

	// trivia
	KindLineComment
	KindBlockComment

	kindCount
)

// kindTypes holds the grammar type name of each kind.
var kindTypes = [kindCount]string{
	KindOther: "",
	KindError: "ERROR",

	KindSourceFile:             "source_file",
	KindModItem:                "mod_item",
	KindDeclarationList:        "declaration_list",
	KindFunctionItem:           "function_item",
	KindFunctionSignatureItem:  "function_signature_item",
	KindConstItem:              "const_item",
	KindStaticItem:             "static_item",
	KindStructItem:             "struct_item",
	KindEnumItem:               "enum_item",
	KindEnumVariantList:        "enum_variant_list",
	KindEnumVariant:            "enum_variant",
	KindUnionItem:              "union_item",
	KindTypeItem:               "type_item",
	KindTraitItem:              "trait_item",
	KindImplItem:               "impl_item",
	KindMacroDefinition:        "macro_definition",
	KindUseDeclaration:         "use_declaration",
	KindUseAsClause:            "use_as_clause",
	KindUseList:                "use_list",
	KindScopedUseList:          "scoped_use_list",
	KindUseWildcard:            "use_wildcard",
	KindExternCrateDeclaration: "extern_crate_declaration",
	KindForeignModItem:         "foreign_mod_item",

	KindParameters:               "parameters",
	KindParameter:                "parameter",
	KindSelfParameter:            "self_parameter",
	KindVariadicParameter:        "variadic_parameter",
	KindTypeParameters:           "type_parameters",
	KindTypeParameter:            "type_parameter",
	KindConstrainedTypeParameter: "constrained_type_parameter",
	KindOptionalTypeParameter:    "optional_type_parameter",
	KindConstParameter:           "const_parameter",
	KindClosureParameters:        "closure_parameters",

	KindBlock:                   "block",
	KindLetDeclaration:          "let_declaration",
	KindLetCondition:            "let_condition",
	KindLetChain:                "let_chain",
	KindExpressionStatement:     "expression_statement",
	KindClosureExpression:       "closure_expression",
	KindForExpression:           "for_expression",
	KindIfExpression:            "if_expression",
	KindWhileExpression:         "while_expression",
	KindIfLetExpression:         "if_let_expression",
	KindWhileLetExpression:      "while_let_expression",
	KindMatchExpression:         "match_expression",
	KindMatchBlock:              "match_block",
	KindMatchArm:                "match_arm",
	KindMatchPattern:            "match_pattern",
	KindCallExpression:          "call_expression",
	KindArguments:               "arguments",
	KindParenthesizedExpression: "parenthesized_expression",
	KindFieldExpression:         "field_expression",
	KindMacroInvocation:         "macro_invocation",

	KindIdentifier:               "identifier",
	KindTypeIdentifier:           "type_identifier",
	KindFieldIdentifier:          "field_identifier",
	KindShorthandFieldIdentifier: "shorthand_field_identifier",
	KindScopedIdentifier:         "scoped_identifier",
	KindScopedTypeIdentifier:     "scoped_type_identifier",
	KindGenericFunction:          "generic_function",
	KindGenericType:              "generic_type",
	KindSelf:                     "self",
	KindCrate:                    "crate",
	KindSuper:                    "super",
	KindMetavariable:             "metavariable",

	KindTupleStructPattern: "tuple_struct_pattern",
	KindStructPattern:      "struct_pattern",
	KindFieldPattern:       "field_pattern",
	KindTuplePattern:       "tuple_pattern",
	KindSlicePattern:       "slice_pattern",
	KindMutPattern:         "mut_pattern",
	KindRefPattern:         "ref_pattern",
	KindReferencePattern:   "reference_pattern",
	KindCapturedPattern:    "captured_pattern",
	KindOrPattern:          "or_pattern",

	KindLineComment:  "line_comment",
	KindBlockComment: "block_comment",
}

var kindByType = func() map[string]Kind {
	m := make(map[string]Kind, kindCount)
	for k, typ := range kindTypes {
		if typ != "" {
			m[typ] = Kind(k)
		}
	}
	return m
}()

// KindOf maps a grammar type name to its Kind.
func KindOf(typ string) Kind {
	if k, ok := kindByType[typ]; ok {
		return k
	}
	return KindOther
}

func (k Kind) String() string {
	if k <= KindOther || k >= kindCount {
		return "other"
	}
	return kindTypes[k]
}

// IsComment reports whether the kind is a comment.
func (k Kind) IsComment() bool {
	return k == KindLineComment || k == KindBlockComment
}

// IsPathSegment reports whether the kind can appear as a single segment of
// a path (`foo`, `Foo`, `self`, `crate`, `super`).
func (k Kind) IsPathSegment() bool {
	switch k {
	case KindIdentifier, KindTypeIdentifier, KindSelf, KindCrate, KindSuper:
		return true
	}
	return false
}
