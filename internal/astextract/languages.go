package astextract

import (
	"fmt"
	"unsafe"

	tree_sitter_zig "github.com/tree-sitter-grammars/tree-sitter-zig/bindings/go"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/codelensdev/codelens/internal/types"
)

// grammarFor returns the raw grammar pointer and tag query source for a
// language. Query capture names are restricted to captureKindMapping's
// keys plus a bare "@name" companion capture, per spec.md §4.2.
func grammarFor(lang types.Language) (unsafe.Pointer, string, error) {
	switch lang {
	case types.LangGo:
		return tree_sitter_go.Language(), goQuery, nil
	case types.LangJavaScript:
		return tree_sitter_javascript.Language(), javascriptQuery, nil
	case types.LangTypeScript:
		return tree_sitter_typescript.LanguageTypescript(), typescriptQuery, nil
	case types.LangPython:
		return tree_sitter_python.Language(), pythonQuery, nil
	case types.LangJava:
		return tree_sitter_java.Language(), javaQuery, nil
	case types.LangCSharp:
		return tree_sitter_csharp.Language(), csharpQuery, nil
	case types.LangRust:
		return tree_sitter_rust.Language(), rustQuery, nil
	case types.LangCPP:
		return tree_sitter_cpp.Language(), cppQuery, nil
	case types.LangPHP:
		return tree_sitter_php.LanguagePHP(), phpQuery, nil
	case types.LangZig:
		return tree_sitter_zig.Language(), zigQuery, nil
	default:
		return nil, "", fmt.Errorf("no grammar registered for %s", lang)
	}
}

const goQuery = `
(function_declaration name: (identifier) @name) @definition.function
(method_declaration name: (field_identifier) @name) @definition.method
(type_spec name: (type_identifier) @name) @definition.class
(var_declaration (var_spec name: (identifier) @name)) @definition.variable
(const_declaration (const_spec name: (identifier) @name)) @definition.variable
(import_spec path: (interpreted_string_literal) @name) @import.module
(call_expression function: (identifier) @name) @reference.call
(call_expression function: (selector_expression field: (field_identifier) @name)) @reference.call
`

const javascriptQuery = `
(function_declaration name: (identifier) @name) @definition.function
(generator_function_declaration name: (identifier) @name) @definition.function
(method_definition name: (property_identifier) @name) @definition.method
(variable_declarator name: (identifier) @name value: [(arrow_function) (function_expression) (generator_function)]) @definition.function
(variable_declarator name: (identifier) @name) @definition.variable
(class_declaration name: (identifier) @name) @definition.class
(import_statement source: (string) @name) @import.module
(call_expression function: (identifier) @name) @reference.call
(call_expression function: (member_expression property: (property_identifier) @name)) @reference.call
`

const typescriptQuery = `
(function_declaration name: (identifier) @name) @definition.function
(method_definition name: (property_identifier) @name) @definition.method
(variable_declarator name: (identifier) @name value: [(arrow_function) (function_expression)]) @definition.function
(variable_declarator name: (identifier) @name) @definition.variable
(class_declaration name: (type_identifier) @name) @definition.class
(interface_declaration name: (type_identifier) @name) @definition.class
(import_statement source: (string) @name) @import.module
(call_expression function: (identifier) @name) @reference.call
(call_expression function: (member_expression property: (property_identifier) @name)) @reference.call
`

const pythonQuery = `
(function_definition name: (identifier) @name) @definition.function
(class_definition name: (identifier) @name) @definition.class
(assignment left: (identifier) @name) @definition.variable
(import_statement name: (dotted_name) @name) @import.module
(import_from_statement module_name: (dotted_name) @name) @import.module
(call function: (identifier) @name) @reference.call
(call function: (attribute attribute: (identifier) @name)) @reference.call
`

const javaQuery = `
(method_declaration name: (identifier) @name) @definition.method
(class_declaration name: (identifier) @name) @definition.class
(interface_declaration name: (identifier) @name) @definition.class
(field_declaration declarator: (variable_declarator name: (identifier) @name)) @definition.variable
(import_declaration (scoped_identifier) @name) @import.module
(method_invocation name: (identifier) @name) @reference.call
`

const csharpQuery = `
(method_declaration name: (identifier) @name) @definition.method
(class_declaration name: (identifier) @name) @definition.class
(interface_declaration name: (identifier) @name) @definition.class
(field_declaration (variable_declaration (variable_declarator (identifier) @name))) @definition.variable
(using_directive (qualified_name) @name) @import.module
(invocation_expression function: (identifier) @name) @reference.call
(invocation_expression function: (member_access_expression name: (identifier) @name)) @reference.call
`

const rustQuery = `
(function_item name: (identifier) @name) @definition.function
(struct_item name: (type_identifier) @name) @definition.class
(enum_item name: (type_identifier) @name) @definition.class
(trait_item name: (type_identifier) @name) @definition.class
(let_declaration pattern: (identifier) @name) @definition.variable
(use_declaration argument: (_) @name) @import.module
(call_expression function: (identifier) @name) @reference.call
(call_expression function: (field_expression field: (field_identifier) @name)) @reference.call
`

const cppQuery = `
(function_definition declarator: (function_declarator declarator: (identifier) @name)) @definition.function
(class_specifier name: (type_identifier) @name) @definition.class
(struct_specifier name: (type_identifier) @name) @definition.class
(declaration declarator: (init_declarator declarator: (identifier) @name)) @definition.variable
(preproc_include path: (_) @name) @import.module
(call_expression function: (identifier) @name) @reference.call
(call_expression function: (field_expression field: (field_identifier) @name)) @reference.call
`

const phpQuery = `
(function_definition name: (name) @name) @definition.function
(method_declaration name: (name) @name) @definition.method
(class_declaration name: (name) @name) @definition.class
(interface_declaration name: (name) @name) @definition.class
(namespace_use_clause (qualified_name) @name) @import.module
(function_call_expression function: (name) @name) @reference.call
(member_call_expression name: (name) @name) @reference.call
`

const zigQuery = `
(FnProto name: (IDENTIFIER) @name) @definition.function
(VarDecl (IDENTIFIER) @name) @definition.variable
(ContainerDecl) @definition.class
(SuffixExpr (IDENTIFIER) @name) @reference.call
`
