// Package filter implements the expression language used to select
// activities, e.g.
//
//	distance > 10km and pace < 05:30
//	type = "Run" or type ~ "ride"
//	date >= 2024-01-01 and heartrate < 150
//
// Grammar:
//
//	expr      := comparand (("and" | "or") comparand)*
//	comparand := value (op value)?
//	op        := ">" | ">=" | "<" | "<=" | "=" | "!=" | "~" | "!~"
//	value     := number [unit] | number ":" number [":" number]
//	           | string | date | name | "true" | "false"
//
// Comparisons bind tighter than "and"/"or", which share a precedence and
// associate to the left. Keywords are case-insensitive. Strings may use
// single or double quotes. Dates are YYYY-MM-DD and evaluate to the same
// string form, so they order chronologically.
//
// Unit suffixes rescale a number into meters (distances) or meters per
// hour (speeds): k, km, kmh, kph and kmph multiply by 1000; mi and mph by
// 1609.344. Clock literals such as 05:30 or 1:02:03 are read as seconds.
//
// Values are strings, numbers or bools. Ordering operators require both
// sides to have the same kind. "and"/"or" coerce their operands: empty
// strings, "0" and zero are false. "~" is a case-insensitive fuzzy match
// for strings (the right side must appear in order within the left) and
// a 10% tolerance for numbers.
//
// A Lexer, Parser or evaluation holds no shared state; a compiled Filter
// may be matched from many goroutines at once.
package filter
