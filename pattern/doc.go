/*
Package pattern compiles syntax patterns into trees of pattern nodes.

# Overview

A pattern describes the accepted spellings of one syntax element of the
scripting language. It mixes literal text with a handful of structural
tokens. The compiler scans the pattern once, left to right, and produces an
immutable tree that the match package walks against input text.

# Pattern Syntax

  - Literal text: anything that is not a structural token.
    Example: "broadcast"

  - Escape: "\" makes the next character literal.
    Example: "100\%"

  - Optional group: "[...]" may be skipped entirely.
    Example: "[the] player"

  - Choice group: "(...|...)" tries its branches in order. A branch may start
    with a parse mark, "<digits>¦", whose value is XORed into
    the parse mark when that branch is taken.
    Example: "(1¦add|2¦remove)"

  - Marked optional group: "[<digits>¦...]" applies the mark only when the
    group is taken.
    Example: "[1¦unix] timestamp"

  - Regex group: "<...>" is matched as a regular expression anchored at the
    current position.
    Example: "<[a-z]+>"

  - Slot: "%...%" is filled by a value of one of the listed types.
    Grammar: [-][~|*|@]type[/type...][@1|@-1]
    "-" allows the slot to stay empty, "~" accepts expressions only, "*" (or
    "@") literals only. "@1" reads the value in its future state, "@-1" in
    its past state.
    Example: "%-*number/strings@1%"

# Node Types

  - Text: literal content, matched verbatim
  - Sequence: children matched one after another
  - Optional: a child that may be skipped
  - Choice: ordered branches, each with a parse mark
  - Regex: an embedded regular expression
  - Slot: a typed placeholder

A Sequence never has exactly one child, and an empty pattern compiles to an
empty Text.

# Usage Example

	registry := types.NewRegistry()
	_ = types.RegisterDefaults(registry)

	compiler := pattern.NewCompiler(registry)
	node, err := compiler.Compile("say %number% [!]")

Every node renders back into pattern syntax through String, and compiling
that rendering yields a tree Equal to the original.
*/
package pattern
