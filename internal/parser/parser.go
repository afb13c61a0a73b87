// Package parser turns the listero shorthand notation into bet instructions.
//
// Each input line is independent: "<numbers> con <amounts>". The left side
// names the numbers (directly, or through a centena pattern command) and the
// right side prices them with optional play suffixes (f, c, p, can).
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/labanca/listero/internal/play"
)

// Instruction is one prospective bet produced by a parsed line. It is
// transient — it only lives through a single parse/validate/submit cycle.
type Instruction struct {
	PlayType    play.Type
	Numbers     []string // zero-padded, PlayType.DigitLen() digits each
	AmountEach  int
	TotalAmount int
	SourceLine  int // 1-based

	// DuplicateNumbers lists numbers whose canonical form appears more
	// than once across the whole parse. Informational only.
	DuplicateNumbers []string
}

// LineError is a parse failure scoped to a single input line.
type LineError struct {
	Line    int
	Message string
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Result carries everything a parse produced. A line that fails contributes
// one LineError and never blocks the remaining lines.
type Result struct {
	Instructions []Instruction
	Errors       []LineError
}

var (
	conRe        = regexp.MustCompile(`(?i)con`)
	nonDigitRe   = regexp.MustCompile(`\D+`)
	centenaCmdRe = regexp.MustCompile(`(?i)^c\s*(\d)\s*[x*]\s*(.+)$`)
	amountTokRe  = regexp.MustCompile(`(?i)^(\d+)([a-z]+)?$`)
	tensPatRe    = regexp.MustCompile(`(?i)^d(\d)$`)
	unitsPatRe   = regexp.MustCompile(`(?i)^t(\d)$`)
)

// Parse consumes the raw multi-line shorthand text. Blank lines are skipped;
// every other line yields instructions or exactly one LineError.
func Parse(text string) Result {
	var res Result

	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		insts, lerr := parseLine(i+1, line)
		if lerr != nil {
			res.Errors = append(res.Errors, *lerr)
			continue
		}
		res.Instructions = append(res.Instructions, insts...)
	}

	annotateDuplicates(res.Instructions)
	return res
}

func parseLine(lineNo int, line string) ([]Instruction, *LineError) {
	fail := func(format string, args ...any) ([]Instruction, *LineError) {
		return nil, &LineError{Line: lineNo, Message: fmt.Sprintf(format, args...)}
	}

	// Split on the first "con"; later occurrences belong to the right side.
	parts := conRe.Split(line, 2)
	if len(parts) < 2 {
		return fail("missing 'con' separator")
	}

	lhs, msg := parseLeft(strings.TrimSpace(parts[0]))
	if msg != "" {
		return fail("%s", msg)
	}

	amts, msg := parseAmounts(strings.TrimSpace(parts[1]))
	if msg != "" {
		return fail("%s", msg)
	}

	insts, msg := emit(lineNo, lhs, amts)
	if msg != "" {
		return fail("%s", msg)
	}
	return insts, nil
}

// leftSide is the resolved left-hand side of a line. typ is empty for plain
// 2-digit numbers, whose play type is decided by the amount suffixes.
type leftSide struct {
	typ     play.Type
	numbers []string
}

func parseLeft(left string) (leftSide, string) {
	if m := centenaCmdRe.FindStringSubmatch(left); m != nil {
		nums, msg := expandCentena(m[1], strings.TrimSpace(m[2]))
		if msg != "" {
			return leftSide{}, msg
		}
		return leftSide{typ: play.Centena, numbers: nums}, ""
	}

	tokens := splitNumbers(left)
	if len(tokens) == 0 {
		return leftSide{}, "no numbers found"
	}

	width := len(tokens[0])
	for _, tok := range tokens[1:] {
		if len(tok) != width {
			return leftSide{}, "numbers must all have the same length"
		}
	}
	switch width {
	case 2, 3, 4, 6:
	default:
		return leftSide{}, fmt.Sprintf("numbers must have 2, 3, 4 or 6 digits, got %d", width)
	}

	nums := make([]string, len(tokens))
	for i, tok := range tokens {
		nums[i] = play.Pad(tok, width)
	}

	switch width {
	case 3:
		return leftSide{typ: play.Centena, numbers: nums}, ""
	case 4:
		return leftSide{typ: play.Parle, numbers: nums}, ""
	case 6:
		return leftSide{typ: play.Tripleta, numbers: nums}, ""
	}
	// Two-digit numbers stay ambiguous until the amounts are known.
	return leftSide{numbers: nums}, ""
}

// expandCentena resolves a "c<digit> x <pattern>" command into its 3-digit
// numbers. hundred is the fixed hundreds digit.
func expandCentena(hundred, pattern string) ([]string, string) {
	if m := tensPatRe.FindStringSubmatch(pattern); m != nil {
		nums := make([]string, 0, 10)
		for u := 0; u <= 9; u++ {
			nums = append(nums, fmt.Sprintf("%s%s%d", hundred, m[1], u))
		}
		return nums, ""
	}
	if m := unitsPatRe.FindStringSubmatch(pattern); m != nil {
		nums := make([]string, 0, 10)
		for d := 0; d <= 9; d++ {
			nums = append(nums, fmt.Sprintf("%s%d%s", hundred, d, m[1]))
		}
		return nums, ""
	}
	if strings.EqualFold(pattern, "p") {
		nums := make([]string, 0, 10)
		for d := 0; d <= 9; d++ {
			nums = append(nums, fmt.Sprintf("%s%d%d", hundred, d, d))
		}
		return nums, ""
	}

	tokens := splitNumbers(pattern)
	if len(tokens) == 0 {
		return nil, fmt.Sprintf("invalid centena pattern %q", pattern)
	}
	nums := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if len(tok) > 2 {
			return nil, fmt.Sprintf("centena list number %q must have at most 2 digits", tok)
		}
		nums = append(nums, hundred+play.Pad(tok, 2))
	}
	return nums, ""
}

func splitNumbers(s string) []string {
	var tokens []string
	for _, tok := range nonDigitRe.Split(s, -1) {
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// amounts collects the right-hand-side amount tokens by suffix. Nil means
// the suffix was absent; a repeated suffix overwrites the earlier value.
type amounts struct {
	fijo      *int
	corrido   *int
	parle     *int
	pool      *int // "can": pooled amount split across generated parles
	bare      *int
	bareCount int
}

func parseAmounts(right string) (amounts, string) {
	var a amounts

	fields := strings.Fields(right)
	if len(fields) == 0 {
		return a, "missing amount"
	}

	for _, f := range fields {
		m := amountTokRe.FindStringSubmatch(f)
		if m == nil {
			return a, fmt.Sprintf("invalid amount token %q", f)
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			return a, fmt.Sprintf("amount in %q must be greater than 0", f)
		}
		v := n
		switch strings.ToLower(m[2]) {
		case "":
			a.bare = &v
			a.bareCount++
		case "f":
			a.fijo = &v
		case "c":
			a.corrido = &v
		case "p":
			a.parle = &v
		case "can":
			a.pool = &v
		default:
			return a, fmt.Sprintf("unknown amount suffix %q", m[2])
		}
	}
	return a, ""
}

func emit(lineNo int, lhs leftSide, a amounts) ([]Instruction, string) {
	switch lhs.typ {
	case play.Centena, play.Tripleta:
		return emitSingleAmount(lineNo, lhs.typ, lhs.numbers, a)
	case play.Parle:
		return emitDirectParle(lineNo, lhs.numbers, a)
	}
	return emitTwoDigit(lineNo, lhs.numbers, a)
}

// emitTwoDigit prices ambiguous 2-digit numbers: f and c amounts bet the
// numbers as-is, p and can bet every unordered pair of distinct numbers
// concatenated into a parle.
func emitTwoDigit(lineNo int, nums []string, a amounts) ([]Instruction, string) {
	if a.bare != nil {
		return nil, "amount needs a play suffix (f, c, p or can) for 2-digit numbers"
	}

	var out []Instruction
	if a.fijo != nil {
		out = append(out, newInstruction(lineNo, play.Fijo, nums, *a.fijo, *a.fijo*len(nums)))
	}
	if a.corrido != nil {
		out = append(out, newInstruction(lineNo, play.Corrido, nums, *a.corrido, *a.corrido*len(nums)))
	}

	if a.parle != nil || a.pool != nil {
		distinct := distinctNumbers(nums)
		if len(distinct) < 2 {
			return nil, "parle needs at least two distinct numbers"
		}
		pairs := pairCombos(distinct)
		if a.parle != nil {
			out = append(out, newInstruction(lineNo, play.Parle, pairs, *a.parle, *a.parle*len(pairs)))
		}
		if a.pool != nil {
			per := *a.pool / len(pairs)
			if per == 0 {
				return nil, fmt.Sprintf("pooled amount %d is too small for %d parles", *a.pool, len(pairs))
			}
			out = append(out, Instruction{
				PlayType:    play.Parle,
				Numbers:     pairs,
				AmountEach:  per,
				TotalAmount: *a.pool,
				SourceLine:  lineNo,
			})
		}
	}

	if len(out) == 0 {
		return nil, "missing play-type amount"
	}
	return out, ""
}

// emitDirectParle prices literal 4-digit parle numbers. Unlike the 2-digit
// case no pairs are generated; p, can and a bare amount all apply to the
// numbers as written.
func emitDirectParle(lineNo int, nums []string, a amounts) ([]Instruction, string) {
	if a.fijo != nil || a.corrido != nil {
		return nil, "suffixes f and c are not allowed on parle numbers"
	}
	if a.bareCount > 1 {
		return nil, "more than one plain amount"
	}

	var out []Instruction
	if a.bare != nil {
		out = append(out, newInstruction(lineNo, play.Parle, nums, *a.bare, *a.bare*len(nums)))
	}
	if a.parle != nil {
		out = append(out, newInstruction(lineNo, play.Parle, nums, *a.parle, *a.parle*len(nums)))
	}
	if a.pool != nil {
		per := *a.pool / len(nums)
		if per == 0 {
			return nil, fmt.Sprintf("pooled amount %d is too small for %d parles", *a.pool, len(nums))
		}
		out = append(out, Instruction{
			PlayType:    play.Parle,
			Numbers:     nums,
			AmountEach:  per,
			TotalAmount: *a.pool,
			SourceLine:  lineNo,
		})
	}

	if len(out) == 0 {
		return nil, "missing parle amount"
	}
	return out, ""
}

// emitSingleAmount handles centena and tripleta lines, which take exactly
// one plain amount and no suffixes.
func emitSingleAmount(lineNo int, typ play.Type, nums []string, a amounts) ([]Instruction, string) {
	if a.fijo != nil || a.corrido != nil || a.parle != nil || a.pool != nil {
		return nil, fmt.Sprintf("%s takes a single plain amount", typ)
	}
	if a.bare == nil {
		return nil, fmt.Sprintf("missing %s amount", typ)
	}
	if a.bareCount > 1 {
		return nil, "more than one plain amount"
	}
	return []Instruction{newInstruction(lineNo, typ, nums, *a.bare, *a.bare*len(nums))}, ""
}

func newInstruction(lineNo int, typ play.Type, nums []string, each, total int) Instruction {
	return Instruction{
		PlayType:    typ,
		Numbers:     nums,
		AmountEach:  each,
		TotalAmount: total,
		SourceLine:  lineNo,
	}
}

func distinctNumbers(nums []string) []string {
	seen := make(map[string]bool, len(nums))
	var out []string
	for _, n := range nums {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// pairCombos concatenates every unordered pair of the given 2-digit numbers
// into a 4-digit parle, preserving input order for determinism.
func pairCombos(nums []string) []string {
	out := make([]string, 0, len(nums)*(len(nums)-1)/2)
	for i := 0; i < len(nums); i++ {
		for j := i + 1; j < len(nums); j++ {
			out = append(out, nums[i]+nums[j])
		}
	}
	return out
}

// annotateDuplicates tallies the canonical form of every number across all
// instructions and flags those seen more than once per play type. The flags
// are informational and never block the parse.
func annotateDuplicates(insts []Instruction) {
	counts := make(map[play.Type]map[string]int)
	for _, in := range insts {
		m := counts[in.PlayType]
		if m == nil {
			m = make(map[string]int)
			counts[in.PlayType] = m
		}
		for _, n := range in.Numbers {
			m[play.Canonical(in.PlayType, n)]++
		}
	}

	for i := range insts {
		in := &insts[i]
		seen := make(map[string]bool)
		for _, n := range in.Numbers {
			if counts[in.PlayType][play.Canonical(in.PlayType, n)] > 1 && !seen[n] {
				in.DuplicateNumbers = append(in.DuplicateNumbers, n)
				seen[n] = true
			}
		}
	}
}
