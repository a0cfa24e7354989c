package evaluator

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cwbudde/sasgo/internal/pdv"
	"golang.org/x/text/unicode/norm"
)

// sasEpoch is day zero of the SAS date system (spec.md §3: "dates and
// times are represented as numbers ... from a fixed epoch").
var sasEpoch = time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC)

func dateFromDays(days float64) time.Time {
	return sasEpoch.AddDate(0, 0, int(days))
}

func daysFromDate(t time.Time) float64 {
	return t.Sub(sasEpoch).Hours() / 24
}

// DefaultRegistry builds the spec.md §4.4 minimum viable function catalog.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	reg := func(name string, arity int, fn func([]pdv.Cell) (pdv.Cell, error)) {
		r.Register(BuiltinFunc{Name: name, Arity: arity, Call: fn})
	}

	reg("SUBSTR", -1, biSubstr)
	reg("TRIM", 1, biTrim)
	reg("LEFT", 1, biLeft)
	reg("RIGHT", 1, biRight)
	reg("UPCASE", 1, biUpcase)
	reg("LOWCASE", 1, biLowcase)
	reg("INDEX", 2, biIndex)
	reg("SCAN", -1, biScan)
	reg("LENGTH", 1, biLength)
	reg("CATX", -1, biCatx)
	reg("ABS", 1, biAbs)
	reg("CEIL", 1, biCeil)
	reg("FLOOR", 1, biFloor)
	reg("ROUND", -1, biRound)
	reg("EXP", 1, biExp)
	reg("LOG", 1, biLog)
	reg("LOG10", 1, biLog10)
	reg("SQRT", 1, biSqrt)
	reg("SUM", -1, biSum)
	reg("MEAN", -1, biMean)
	reg("TODAY", 0, biToday)
	reg("DATEPART", 1, biDatepart)
	reg("TIMEPART", 1, biTimepart)
	reg("INTCK", 3, biIntck)
	reg("INTNX", -1, biIntnx)

	return r
}

func wantStr(args []pdv.Cell, i int, fn string) (string, error) {
	if i >= len(args) {
		return "", fmt.Errorf("%s(): missing argument %d", fn, i+1)
	}
	return asString(args[i]), nil
}

func wantNum(args []pdv.Cell, i int, fn string) (float64, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("%s(): missing argument %d", fn, i+1)
	}
	n, ok := asNumber(args[i])
	if !ok {
		return 0, fmt.Errorf("%s(): argument %d is not numeric", fn, i+1)
	}
	return n, nil
}

func biSubstr(args []pdv.Cell) (pdv.Cell, error) {
	if len(args) < 2 || len(args) > 3 {
		return pdv.MissingCell, arityError("SUBSTR", -1, len(args))
	}
	s, err := wantStr(args, 0, "SUBSTR")
	if err != nil {
		return pdv.MissingCell, err
	}
	start, err := wantNum(args, 1, "SUBSTR")
	if err != nil {
		return pdv.MissingCell, err
	}
	i := int(start) - 1
	if i < 0 || i > len(s) {
		return pdv.StrCell(""), nil
	}
	length := len(s) - i
	if len(args) == 3 {
		n, err := wantNum(args, 2, "SUBSTR")
		if err != nil {
			return pdv.MissingCell, err
		}
		length = int(n)
	}
	end := i + length
	if end > len(s) {
		end = len(s)
	}
	if end < i {
		end = i
	}
	return pdv.StrCell(s[i:end]), nil
}

// normForTrim canonicalizes a character value to NFC before blank-padding
// is stripped, so a trailing combining mark sequence (e.g. a base letter
// plus a combining accent read in from a DBCS-agnostic source file) isn't
// mistaken for trailing content by TRIM/LEFT/RIGHT's byte-oriented scan.
func normForTrim(s string) string {
	return norm.NFC.String(s)
}

func biTrim(args []pdv.Cell) (pdv.Cell, error) {
	return pdv.StrCell(strings.TrimRight(normForTrim(asString(args[0])), " ")), nil
}

func biLeft(args []pdv.Cell) (pdv.Cell, error) {
	return pdv.StrCell(strings.TrimLeft(normForTrim(asString(args[0])), " ")), nil
}

func biRight(args []pdv.Cell) (pdv.Cell, error) {
	return pdv.StrCell(strings.TrimRight(normForTrim(asString(args[0])), " ")), nil
}

func biUpcase(args []pdv.Cell) (pdv.Cell, error) {
	return pdv.StrCell(strings.ToUpper(asString(args[0]))), nil
}

func biLowcase(args []pdv.Cell) (pdv.Cell, error) {
	return pdv.StrCell(strings.ToLower(asString(args[0]))), nil
}

func biIndex(args []pdv.Cell) (pdv.Cell, error) {
	s := asString(args[0])
	sub := asString(args[1])
	return pdv.NumCell(float64(strings.Index(s, sub) + 1)), nil
}

func biScan(args []pdv.Cell) (pdv.Cell, error) {
	if len(args) < 2 {
		return pdv.MissingCell, arityError("SCAN", -1, len(args))
	}
	s := normForTrim(asString(args[0]))
	n, err := wantNum(args, 1, "SCAN")
	if err != nil {
		return pdv.MissingCell, err
	}
	delims := " "
	if len(args) == 3 {
		delims = asString(args[2])
	}
	fields := strings.FieldsFunc(s, func(r rune) bool { return strings.ContainsRune(delims, r) })
	idx := int(n)
	if idx < 1 || idx > len(fields) {
		return pdv.StrCell(""), nil
	}
	return pdv.StrCell(fields[idx-1]), nil
}

func biLength(args []pdv.Cell) (pdv.Cell, error) {
	c := args[0]
	if c.IsMissing() {
		return pdv.NumCell(0), nil
	}
	return pdv.NumCell(float64(len(asString(c)))), nil
}

func biCatx(args []pdv.Cell) (pdv.Cell, error) {
	if len(args) < 1 {
		return pdv.MissingCell, arityError("CATX", -1, len(args))
	}
	sep := asString(args[0])
	parts := make([]string, 0, len(args)-1)
	for _, a := range args[1:] {
		if a.IsMissing() {
			continue
		}
		parts = append(parts, asString(a))
	}
	return pdv.StrCell(strings.Join(parts, sep)), nil
}

func biAbs(args []pdv.Cell) (pdv.Cell, error) {
	n, err := wantNum(args, 0, "ABS")
	if err != nil {
		return pdv.MissingCell, err
	}
	return pdv.NumCell(math.Abs(n)), nil
}

func biCeil(args []pdv.Cell) (pdv.Cell, error) {
	n, err := wantNum(args, 0, "CEIL")
	if err != nil {
		return pdv.MissingCell, err
	}
	return pdv.NumCell(math.Ceil(n)), nil
}

func biFloor(args []pdv.Cell) (pdv.Cell, error) {
	n, err := wantNum(args, 0, "FLOOR")
	if err != nil {
		return pdv.MissingCell, err
	}
	return pdv.NumCell(math.Floor(n)), nil
}

func biRound(args []pdv.Cell) (pdv.Cell, error) {
	if len(args) < 1 || len(args) > 2 {
		return pdv.MissingCell, arityError("ROUND", -1, len(args))
	}
	n, err := wantNum(args, 0, "ROUND")
	if err != nil {
		return pdv.MissingCell, err
	}
	unit := 1.0
	if len(args) == 2 {
		unit, err = wantNum(args, 1, "ROUND")
		if err != nil {
			return pdv.MissingCell, err
		}
	}
	if unit == 0 {
		return pdv.NumCell(n), nil
	}
	return pdv.NumCell(math.Round(n/unit) * unit), nil
}

func biExp(args []pdv.Cell) (pdv.Cell, error) {
	n, err := wantNum(args, 0, "EXP")
	if err != nil {
		return pdv.MissingCell, err
	}
	return pdv.NumCell(math.Exp(n)), nil
}

func biLog(args []pdv.Cell) (pdv.Cell, error) {
	n, err := wantNum(args, 0, "LOG")
	if err != nil {
		return pdv.MissingCell, err
	}
	return pdv.NumCell(math.Log(n)), nil
}

func biLog10(args []pdv.Cell) (pdv.Cell, error) {
	n, err := wantNum(args, 0, "LOG10")
	if err != nil {
		return pdv.MissingCell, err
	}
	return pdv.NumCell(math.Log10(n)), nil
}

func biSqrt(args []pdv.Cell) (pdv.Cell, error) {
	n, err := wantNum(args, 0, "SQRT")
	if err != nil {
		return pdv.MissingCell, err
	}
	if n < 0 {
		return pdv.MissingCell, fmt.Errorf("SQRT(): negative argument")
	}
	return pdv.NumCell(math.Sqrt(n)), nil
}

func biSum(args []pdv.Cell) (pdv.Cell, error) {
	var total float64
	any := false
	for _, a := range args {
		if a.IsMissing() {
			continue
		}
		n, ok := asNumber(a)
		if !ok {
			return pdv.MissingCell, fmt.Errorf("SUM(): non-numeric argument")
		}
		total += n
		any = true
	}
	if !any {
		return pdv.MissingCell, nil
	}
	return pdv.NumCell(total), nil
}

func biMean(args []pdv.Cell) (pdv.Cell, error) {
	var total float64
	var count int
	for _, a := range args {
		if a.IsMissing() {
			continue
		}
		n, ok := asNumber(a)
		if !ok {
			return pdv.MissingCell, fmt.Errorf("MEAN(): non-numeric argument")
		}
		total += n
		count++
	}
	if count == 0 {
		return pdv.MissingCell, nil
	}
	return pdv.NumCell(total / float64(count)), nil
}

func biToday(args []pdv.Cell) (pdv.Cell, error) {
	return pdv.NumCell(daysFromDate(time.Now().UTC().Truncate(24 * time.Hour))), nil
}

func biDatepart(args []pdv.Cell) (pdv.Cell, error) {
	n, err := wantNum(args, 0, "DATEPART")
	if err != nil {
		return pdv.MissingCell, err
	}
	return pdv.NumCell(math.Floor(n)), nil
}

func biTimepart(args []pdv.Cell) (pdv.Cell, error) {
	n, err := wantNum(args, 0, "TIMEPART")
	if err != nil {
		return pdv.MissingCell, err
	}
	return pdv.NumCell(n - math.Floor(n)), nil
}

func biIntck(args []pdv.Cell) (pdv.Cell, error) {
	interval, err := wantStr(args, 0, "INTCK")
	if err != nil {
		return pdv.MissingCell, err
	}
	from, err := wantNum(args, 1, "INTCK")
	if err != nil {
		return pdv.MissingCell, err
	}
	to, err := wantNum(args, 2, "INTCK")
	if err != nil {
		return pdv.MissingCell, err
	}
	t1, t2 := dateFromDays(from), dateFromDays(to)
	switch strings.ToUpper(interval) {
	case "DAY":
		return pdv.NumCell(math.Trunc(to - from)), nil
	case "MONTH":
		months := (t2.Year()-t1.Year())*12 + int(t2.Month()) - int(t1.Month())
		return pdv.NumCell(float64(months)), nil
	case "YEAR":
		return pdv.NumCell(float64(t2.Year() - t1.Year())), nil
	case "WEEK":
		return pdv.NumCell(math.Trunc((to - from) / 7)), nil
	default:
		return pdv.MissingCell, fmt.Errorf("INTCK(): unsupported interval %q", interval)
	}
}

func biIntnx(args []pdv.Cell) (pdv.Cell, error) {
	if len(args) < 3 {
		return pdv.MissingCell, arityError("INTNX", -1, len(args))
	}
	interval, err := wantStr(args, 0, "INTNX")
	if err != nil {
		return pdv.MissingCell, err
	}
	start, err := wantNum(args, 1, "INTNX")
	if err != nil {
		return pdv.MissingCell, err
	}
	n, err := wantNum(args, 2, "INTNX")
	if err != nil {
		return pdv.MissingCell, err
	}
	t := dateFromDays(start)
	switch strings.ToUpper(interval) {
	case "DAY":
		return pdv.NumCell(start + n), nil
	case "WEEK":
		return pdv.NumCell(start + n*7), nil
	case "MONTH":
		return pdv.NumCell(daysFromDate(t.AddDate(0, int(n), 0))), nil
	case "YEAR":
		return pdv.NumCell(daysFromDate(t.AddDate(int(n), 0, 0))), nil
	default:
		return pdv.MissingCell, fmt.Errorf("INTNX(): unsupported interval %q", interval)
	}
}
