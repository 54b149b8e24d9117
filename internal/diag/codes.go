package diag

import (
	"fmt"
)

// Code identifies one diagnostic condition. Ranges are allocated per phase.
type Code uint16

const (
	UnknownCode Code = 0

	// Lexical (1xxx)
	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedTemplate     Code = 1003
	LexUnterminatedBlockComment Code = 1004
	LexBadNumber                Code = 1005

	// Module parsing (2xxx)
	SynInfo               Code = 2000
	SynUnexpectedToken    Code = 2001
	SynUnclosedDelimiter  Code = 2002
	SynExpectIdentifier   Code = 2003
	SynExpectExpression   Code = 2004
	SynBadExportSpecifier Code = 2005
	SynBadImport          Code = 2006

	// Resource resolution (3xxx)
	ResNoManifest  Code = 3001
	ResBadManifest Code = 3002
	ResBadConfig   Code = 3003

	// Rewriting (4xxx)
	RwInfo           Code = 4000
	RwAlreadyWrapped Code = 4001
	RwSkippedExport  Code = 4002
	RwInternal       Code = 4003

	// Registry / composition (5xxx)
	RegDuplicateName Code = 5001
	RegKindMismatch  Code = 5002
	RegFrozen        Code = 5003

	// Discovery / aggregation (6xxx)
	DiscBadDescriptor  Code = 6001
	DiscMissingField   Code = 6002
	DiscWriteAggregate Code = 6003

	// I/O (9xxx)
	IOLoadFileError  Code = 9001
	IOWriteFileError Code = 9002
)

// ID renders the code in the GRxxxx form used in user-facing output.
func (c Code) ID() string {
	return fmt.Sprintf("GR%04d", uint16(c))
}

func (c Code) String() string {
	switch c {
	case LexUnknownChar:
		return "unknown character"
	case LexUnterminatedString:
		return "unterminated string"
	case LexUnterminatedTemplate:
		return "unterminated template literal"
	case LexUnterminatedBlockComment:
		return "unterminated block comment"
	case LexBadNumber:
		return "malformed number"
	case SynUnexpectedToken:
		return "unexpected token"
	case SynUnclosedDelimiter:
		return "unclosed delimiter"
	case SynExpectIdentifier:
		return "identifier expected"
	case SynExpectExpression:
		return "expression expected"
	case SynBadExportSpecifier:
		return "malformed export specifier"
	case SynBadImport:
		return "malformed import"
	case ResNoManifest:
		return "no package manifest found"
	case ResBadManifest:
		return "malformed package manifest"
	case ResBadConfig:
		return "malformed project config"
	case RwAlreadyWrapped:
		return "export already wrapped"
	case RwSkippedExport:
		return "export skipped"
	case RwInternal:
		return "internal rewrite failure"
	case RegDuplicateName:
		return "duplicate extension name"
	case RegKindMismatch:
		return "extension kind mismatch"
	case RegFrozen:
		return "registry is frozen"
	case DiscBadDescriptor:
		return "malformed extension descriptor"
	case DiscMissingField:
		return "missing descriptor field"
	case DiscWriteAggregate:
		return "cannot write aggregator module"
	case IOLoadFileError:
		return "cannot read file"
	case IOWriteFileError:
		return "cannot write file"
	}
	return "unknown diagnostic"
}
