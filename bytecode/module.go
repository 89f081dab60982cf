// Package bytecode implements the wire format of §6 (module structure,
// function tables, constants, source maps) and the operand-encoding
// grammar of §4.5, plus the streaming decoder and disassembler shared by
// execution and printing (C6, C8).
package bytecode

import (
	"github.com/monkeyking/iree/hal/types"
	"github.com/monkeyking/iree/internal/status"
)

// ConstantEncoding distinguishes a fully materialized constant from a
// single splatted value.
type ConstantEncoding uint8

const (
	Dense ConstantEncoding = 0
	Splat ConstantEncoding = 1
)

// LinkType distinguishes an import resolved to a native host function
// from one resolved to another module's function.
type LinkType uint8

const (
	NativeFunction LinkType = iota
	ModuleFunction
)

// TypeRef is either a MemRefType (buffer-valued argument/result) or a
// bare ElementType (scalar argument/result).
type TypeRef struct {
	IsMemRef bool
	Element  types.Type
	// Opaque carries a type tag when Element == types.Opaque and the
	// value is not a builtin scalar (e.g. a host-defined resource type).
	Opaque uint32
	// Shape and MemorySpace are only meaningful when IsMemRef is true.
	Shape       types.Shape
	MemorySpace uint32
}

// TypeSignature is a function's argument/result type list.
type TypeSignature struct {
	Args    []TypeRef
	Results []TypeRef
}

// BytecodeDef is an opaque byte array following the §4.5 grammar plus
// an optional source map.
type BytecodeDef struct {
	Contents  []byte
	SourceMap *SourceMap
}

// FunctionDef is (ordinal, name, signature, optional bytecode, optional
// source map) per the data model.
type FunctionDef struct {
	Ordinal   uint32
	Name      string
	Signature TypeSignature
	Bytecode  *BytecodeDef // nil for imports
}

// ImportFunction is an unresolved call target: (ordinal, name, link
// type, linked function if LinkType == ModuleFunction).
type ImportFunction struct {
	Ordinal         uint32
	Name            string
	LinkType        LinkType
	LinkedModule    string // only set for ModuleFunction
	LinkedFunction  uint32 // ordinal in LinkedModule, only set for ModuleFunction
}

// FunctionTable stores functions by ordinal, the separate import table
// addressed by OpCallImport's ImportOrdinal operand (position in this
// slice, not a FunctionDef ordinal), and the export ordinal list.
type FunctionTable struct {
	Functions []FunctionDef
	Imports   []ImportFunction
	Exports   []uint32
}

// Function looks up a function by ordinal.
func (ft *FunctionTable) Function(ordinal uint32) (*FunctionDef, error) {
	for i := range ft.Functions {
		if ft.Functions[i].Ordinal == ordinal {
			return &ft.Functions[i], nil
		}
	}
	return nil, status.New(status.OutOfRange, "no function with ordinal %d", ordinal)
}

// Import looks up an import by its position in the import table, the
// same index OpCallImport's ImportOrdinal operand names.
func (ft *FunctionTable) Import(ordinal uint32) (*ImportFunction, error) {
	if int(ordinal) >= len(ft.Imports) {
		return nil, status.New(status.OutOfRange, "no import with ordinal %d", ordinal)
	}
	return &ft.Imports[ordinal], nil
}

// Validate checks invariant 4: export ordinals name a declared function
// with a defined BytecodeDef, module-function imports resolve to a
// named target, and no two declared functions share an ordinal. This
// also implements the final-pass uniqueness check the spec's open
// questions call for.
func (ft *FunctionTable) Validate() error {
	seen := make(map[uint32]bool, len(ft.Functions))
	for _, fn := range ft.Functions {
		if seen[fn.Ordinal] {
			return status.New(status.AlreadyExists, "duplicate function ordinal %d (%s)", fn.Ordinal, fn.Name)
		}
		seen[fn.Ordinal] = true
	}
	for _, imp := range ft.Imports {
		if imp.LinkType == ModuleFunction && imp.LinkedModule == "" {
			return status.New(status.InvalidArgument, "import %q declares ModuleFunction linkage with no linked module", imp.Name)
		}
	}
	for _, ord := range ft.Exports {
		if !seen[ord] {
			return status.New(status.OutOfRange, "export ordinal %d not declared", ord)
		}
		fn, _ := ft.Function(ord)
		if fn.Bytecode == nil {
			return status.New(status.InvalidArgument, "exported function %d (%s) has no bytecode and is not a resolved import", ord, fn.Name)
		}
	}
	return nil
}

// ExecutableTable maps an executable format tag to the prepared spec
// payload embedded in the module, e.g. the bytecode blob itself when
// format names "bytecode_v0".
type ExecutableTable struct {
	Format  uint32
	Payload []byte
}

// Module is the top-level wire structure: { FunctionTable,
// ExecutableTable, SourceMap? }.
type Module struct {
	Version         uint8
	FunctionTable   FunctionTable
	ExecutableTable ExecutableTable
	SourceMap       *SourceMap
}

// BytecodeFormatV0 is the sole supported module/bytecode version tag.
const BytecodeFormatV0 uint8 = 0

// Validate runs the module-level invariants (delegates to FunctionTable).
func (m *Module) Validate() error {
	if m.Version != BytecodeFormatV0 {
		return status.New(status.InvalidArgument, "unsupported bytecode version %d", m.Version)
	}
	return m.FunctionTable.Validate()
}
